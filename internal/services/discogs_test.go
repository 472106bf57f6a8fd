package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/jrvgr/record-scanner-discogs-uploader/internal/shared"
	tu "github.com/jrvgr/record-scanner-discogs-uploader/internal/testing"
)

func newTestDiscogs(t *testing.T, fake *tu.DiscogsFake, opts DiscogsOpts) *DiscogsService {
	t.Helper()
	if opts.Username == "" {
		opts.Username = "collector"
	}
	svc, err := NewDiscogsService(NewAPIService(APIOpts{BaseURL: fake.URL, Token: "secret"}), opts)
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	return svc
}

func TestDiscogsService(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		t.Run("Requires Username", func(t *testing.T) {
			_, err := NewDiscogsService(NewAPIService(APIOpts{}), DiscogsOpts{})
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})

		t.Run("Applies Defaults", func(t *testing.T) {
			svc, err := NewDiscogsService(NewAPIService(APIOpts{}), DiscogsOpts{Username: "collector"})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if svc.perPage != 500 || svc.maxPages != 1 {
				t.Errorf("expected per_page 500 and max_pages 1, got %d and %d", svc.perPage, svc.maxPages)
			}
			if svc.Name() != "Discogs" {
				t.Errorf("expected name 'Discogs', got %s", svc.Name())
			}
		})

		t.Run("From Config Requires Token", func(t *testing.T) {
			_, err := NewDiscogsServiceFromConfig(shared.DefaultConfig(), &shared.RunConfig{Username: "collector"}, APIOpts{})
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})

		t.Run("From Config", func(t *testing.T) {
			fake := tu.NewDiscogsFake()
			defer fake.Close()

			cfg := shared.DefaultConfig()
			cfg.Discogs.BaseURL = fake.URL
			cfg.Sync.RequestsPerMinute = 0

			svc, err := NewDiscogsServiceFromConfig(cfg, &shared.RunConfig{Token: "tok", Username: "collector"}, APIOpts{})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if _, err := svc.ListReleases(context.Background()); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			reqs := fake.Requests()
			if len(reqs) != 1 {
				t.Fatalf("expected 1 request, got %d", len(reqs))
			}
			if reqs[0].Authorization != "Discogs token=tok" {
				t.Errorf("expected token header, got %q", reqs[0].Authorization)
			}
			if reqs[0].UserAgent != DefaultUserAgent {
				t.Errorf("expected configured user agent, got %q", reqs[0].UserAgent)
			}
		})
	})

	t.Run("ListReleases", func(t *testing.T) {
		t.Run("Single Page", func(t *testing.T) {
			fake := tu.NewDiscogsFake(
				tu.Release(111, 1, "Blue Train", "John Coltrane"),
				tu.Release(222, 2, "Kind of Blue", "Miles Davis"),
			)
			defer fake.Close()

			svc := newTestDiscogs(t, fake, DiscogsOpts{})
			releases, err := svc.ListReleases(context.Background())

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(releases) != 2 {
				t.Fatalf("expected 2 releases, got %d", len(releases))
			}
			if releases[0].ReleaseID() != "111" || releases[1].InstanceID != 2 {
				t.Errorf("unexpected releases: %+v", releases)
			}

			req := fake.Requests()[0]
			if req.Path != "/users/collector/collection/folders/1/releases" {
				t.Errorf("unexpected path %s", req.Path)
			}
			if req.Query != "per_page=500&page=1" {
				t.Errorf("unexpected query %s", req.Query)
			}
			if req.Accept != "application/json" {
				t.Errorf("expected Accept 'application/json', got %q", req.Accept)
			}
		})

		t.Run("Empty Collection", func(t *testing.T) {
			fake := tu.NewDiscogsFake()
			defer fake.Close()

			svc := newTestDiscogs(t, fake, DiscogsOpts{})
			releases, err := svc.ListReleases(context.Background())

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if releases == nil || len(releases) != 0 {
				t.Errorf("expected empty non-nil slice, got %v", releases)
			}
		})

		t.Run("Stops At Max Pages", func(t *testing.T) {
			fake := tu.NewDiscogsFake(
				tu.Release(1, 1, "A"), tu.Release(2, 2, "B"), tu.Release(3, 3, "C"),
			)
			defer fake.Close()

			svc := newTestDiscogs(t, fake, DiscogsOpts{PerPage: 1, MaxPages: 1})
			releases, err := svc.ListReleases(context.Background())

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(releases) != 1 {
				t.Errorf("expected only the first page, got %d releases", len(releases))
			}
			if n := fake.Count(http.MethodGet); n != 1 {
				t.Errorf("expected 1 list request, got %d", n)
			}
		})

		t.Run("Follows Pagination", func(t *testing.T) {
			fake := tu.NewDiscogsFake(
				tu.Release(1, 1, "A"), tu.Release(2, 2, "B"), tu.Release(3, 3, "C"),
			)
			defer fake.Close()

			svc := newTestDiscogs(t, fake, DiscogsOpts{PerPage: 2, MaxPages: 10})
			releases, err := svc.ListReleases(context.Background())

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(releases) != 3 {
				t.Errorf("expected 3 releases, got %d", len(releases))
			}
			if n := fake.Count(http.MethodGet); n != 2 {
				t.Errorf("expected 2 list requests, got %d", n)
			}
		})

		t.Run("Error Status", func(t *testing.T) {
			fake := tu.NewDiscogsFake()
			defer fake.Close()
			fake.SetListStatus(http.StatusUnauthorized)

			svc := newTestDiscogs(t, fake, DiscogsOpts{})
			_, err := svc.ListReleases(context.Background())

			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Fatalf("expected ErrAPIRequest, got %v", err)
			}
			if !strings.Contains(err.Error(), "401") {
				t.Errorf("expected status in error, got %v", err)
			}
		})

		t.Run("Transport Error", func(t *testing.T) {
			api := NewAPIService(APIOpts{
				BaseURL:   "http://example.com",
				Transport: tu.NewMockRoundTripper(nil, errors.New("connection refused")),
			})
			svc, _ := NewDiscogsService(api, DiscogsOpts{Username: "collector"})

			_, err := svc.ListReleases(context.Background())
			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Errorf("expected ErrAPIRequest, got %v", err)
			}
		})
	})

	t.Run("AddRelease", func(t *testing.T) {
		t.Run("Created", func(t *testing.T) {
			fake := tu.NewDiscogsFake()
			defer fake.Close()

			svc := newTestDiscogs(t, fake, DiscogsOpts{})
			status, err := svc.AddRelease(context.Background(), " 249504 ")

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if status != http.StatusCreated {
				t.Errorf("expected 201, got %d", status)
			}

			paths := fake.Paths(http.MethodPost)
			if len(paths) != 1 || paths[0] != "/users/collector/collection/folders/1/releases/249504" {
				t.Errorf("unexpected post paths %v", paths)
			}
		})

		t.Run("Returns Rate Limit Status", func(t *testing.T) {
			fake := tu.NewDiscogsFake()
			defer fake.Close()
			fake.SetAddStatus(func(string, int) int { return http.StatusTooManyRequests })

			svc := newTestDiscogs(t, fake, DiscogsOpts{})
			status, err := svc.AddRelease(context.Background(), "1")

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if status != http.StatusTooManyRequests {
				t.Errorf("expected 429, got %d", status)
			}
		})

		t.Run("Rejects Empty Id", func(t *testing.T) {
			fake := tu.NewDiscogsFake()
			defer fake.Close()

			svc := newTestDiscogs(t, fake, DiscogsOpts{})
			_, err := svc.AddRelease(context.Background(), "  ")

			if !errors.Is(err, shared.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
			if len(fake.Requests()) != 0 {
				t.Error("expected no request for an empty id")
			}
		})
	})

	t.Run("DeleteInstance", func(t *testing.T) {
		fake := tu.NewDiscogsFake()
		defer fake.Close()

		svc := newTestDiscogs(t, fake, DiscogsOpts{FolderID: 1})
		status, err := svc.DeleteInstance(context.Background(), 111, 9)

		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if status != http.StatusNoContent {
			t.Errorf("expected 204, got %d", status)
		}

		paths := fake.Paths(http.MethodDelete)
		if len(paths) != 1 || paths[0] != "/users/collector/collection/folders/1/releases/111/instances/9" {
			t.Errorf("unexpected delete paths %v", paths)
		}
	})
}

var _ CollectionService = (*DiscogsService)(nil)
var _ CollectionService = (*tu.MockCollection)(nil)
