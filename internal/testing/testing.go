// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"

	"github.com/jrvgr/record-scanner-discogs-uploader/internal/models"
)

// MockCollection is a scriptable test double for [services.CollectionService].
//
// Add statuses are scripted per release id; once a script runs out its last status repeats.
// Ids without a script answer DefaultAddStatus, or 201 when that is zero.
type MockCollection struct {
	Releases         []models.RemoteRelease
	ListErr          error
	AddStatuses      map[string][]int
	AddErrs          map[string]error
	DefaultAddStatus int
	DeleteStatuses   map[int]int // by instance id, 204 when missing
	DeleteErrs       map[int]error

	mu          sync.Mutex
	addCalls    map[string]int
	deleteCalls []int
	events      []string
}

func (m *MockCollection) Name() string { return "mock" }

func (m *MockCollection) ListReleases(ctx context.Context) ([]models.RemoteRelease, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, "list")
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	return append([]models.RemoteRelease{}, m.Releases...), nil
}

func (m *MockCollection) AddRelease(ctx context.Context, releaseID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.addCalls == nil {
		m.addCalls = make(map[string]int)
	}
	n := m.addCalls[releaseID]
	m.addCalls[releaseID] = n + 1
	m.events = append(m.events, "add:"+releaseID)

	if err, ok := m.AddErrs[releaseID]; ok {
		return 0, err
	}
	if script, ok := m.AddStatuses[releaseID]; ok && len(script) > 0 {
		if n >= len(script) {
			n = len(script) - 1
		}
		return script[n], nil
	}
	if m.DefaultAddStatus != 0 {
		return m.DefaultAddStatus, nil
	}
	return http.StatusCreated, nil
}

func (m *MockCollection) DeleteInstance(ctx context.Context, releaseID, instanceID int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteCalls = append(m.deleteCalls, instanceID)
	m.events = append(m.events, "delete:"+strconv.Itoa(instanceID))

	if err, ok := m.DeleteErrs[instanceID]; ok {
		return 0, err
	}
	if status, ok := m.DeleteStatuses[instanceID]; ok {
		return status, nil
	}
	return http.StatusNoContent, nil
}

// AddCalls returns how many times releaseID was posted.
func (m *MockCollection) AddCalls(releaseID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.addCalls[releaseID]
}

// TotalAddCalls returns the number of add requests across all ids.
func (m *MockCollection) TotalAddCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, n := range m.addCalls {
		total += n
	}
	return total
}

// DeleteCalls returns the instance ids deleted, in call order.
func (m *MockCollection) DeleteCalls() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int{}, m.deleteCalls...)
}

// Events returns every call as "list", "add:<id>" or "delete:<instance>", in call order.
func (m *MockCollection) Events() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string{}, m.events...)
}

// Release builds a [models.RemoteRelease] for tests.
func Release(id, instanceID int, title string, artists ...string) models.RemoteRelease {
	r := models.RemoteRelease{
		ID:         id,
		InstanceID: instanceID,
		FolderID:   1,
		BasicInformation: models.BasicInformation{
			ID:    id,
			Title: title,
		},
	}
	for i, a := range artists {
		r.BasicInformation.Artists = append(r.BasicInformation.Artists, models.Artist{ID: i + 1, Name: a})
	}
	return r
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

// MustWriteFile writes content to name inside a fresh temp dir and returns the path.
func MustWriteFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write file %s: %v", path, err)
	}
	return path
}
