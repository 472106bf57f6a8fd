package testing

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"

	"github.com/jrvgr/record-scanner-discogs-uploader/internal/models"
)

// RecordedRequest is one request received by [DiscogsFake].
type RecordedRequest struct {
	Method        string
	Path          string
	Query         string
	Authorization string
	UserAgent     string
	Accept        string
}

// DiscogsFake is an in-memory Discogs collection API served by [httptest.Server].
//
// Listing pages through Releases honouring per_page and page. Adding answers AddStatus,
// which defaults to 201 and appends nothing. Deleting answers DeleteStatus, default 204.
type DiscogsFake struct {
	*httptest.Server

	mu           sync.Mutex
	releases     []models.RemoteRelease
	listStatus   int
	deleteStatus int
	addStatus    func(releaseID string, attempt int) int
	addCounts    map[string]int
	requests     []RecordedRequest
}

// NewDiscogsFake starts a fake serving releases. Call Close when done.
func NewDiscogsFake(releases ...models.RemoteRelease) *DiscogsFake {
	f := &DiscogsFake{
		releases:     releases,
		listStatus:   http.StatusOK,
		deleteStatus: http.StatusNoContent,
		addCounts:    make(map[string]int),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /users/{username}/collection/folders/{folder}/releases", f.list)
	mux.HandleFunc("POST /users/{username}/collection/folders/{folder}/releases/{release}", f.add)
	mux.HandleFunc("DELETE /users/{username}/collection/folders/{folder}/releases/{release}/instances/{instance}", f.remove)

	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.requests = append(f.requests, RecordedRequest{
			Method:        r.Method,
			Path:          r.URL.Path,
			Query:         r.URL.RawQuery,
			Authorization: r.Header.Get("Authorization"),
			UserAgent:     r.Header.Get("User-Agent"),
			Accept:        r.Header.Get("Accept"),
		})
		f.mu.Unlock()
		mux.ServeHTTP(w, r)
	}))
	return f
}

// SetListStatus makes listing answer status with an error body.
func (f *DiscogsFake) SetListStatus(status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listStatus = status
}

// SetDeleteStatus sets the status every delete answers.
func (f *DiscogsFake) SetDeleteStatus(status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteStatus = status
}

// SetAddStatus scripts the add status by release id and zero-based attempt number.
func (f *DiscogsFake) SetAddStatus(fn func(releaseID string, attempt int) int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.addStatus = fn
}

// Requests returns every request received so far.
func (f *DiscogsFake) Requests() []RecordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]RecordedRequest{}, f.requests...)
}

// Count returns the number of requests with the given method.
func (f *DiscogsFake) Count(method string) int {
	n := 0
	for _, r := range f.Requests() {
		if r.Method == method {
			n++
		}
	}
	return n
}

// Paths returns the paths of requests with the given method, in arrival order.
func (f *DiscogsFake) Paths(method string) []string {
	var paths []string
	for _, r := range f.Requests() {
		if r.Method == method {
			paths = append(paths, r.Path)
		}
	}
	return paths
}

func (f *DiscogsFake) list(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.listStatus != http.StatusOK {
		writeJSON(w, f.listStatus, map[string]string{"message": "list failed"})
		return
	}

	perPage := atoiDefault(r.URL.Query().Get("per_page"), 50)
	page := atoiDefault(r.URL.Query().Get("page"), 1)

	pages := (len(f.releases) + perPage - 1) / perPage
	if pages == 0 {
		pages = 1
	}

	start := min((page-1)*perPage, len(f.releases))
	end := min(start+perPage, len(f.releases))

	writeJSON(w, http.StatusOK, models.CollectionPage{
		Pagination: models.Pagination{Page: page, Pages: pages, PerPage: perPage, Items: len(f.releases)},
		Releases:   f.releases[start:end],
	})
}

func (f *DiscogsFake) add(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := r.PathValue("release")
	attempt := f.addCounts[id]
	f.addCounts[id] = attempt + 1

	status := http.StatusCreated
	if f.addStatus != nil {
		status = f.addStatus(id, attempt)
	}

	if status == http.StatusCreated {
		writeJSON(w, status, map[string]any{"instance_id": len(f.requests), "resource_url": r.URL.Path})
		return
	}
	writeJSON(w, status, map[string]string{"message": http.StatusText(status)})
}

func (f *DiscogsFake) remove(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w.WriteHeader(f.deleteStatus)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return def
	}
	return n
}
