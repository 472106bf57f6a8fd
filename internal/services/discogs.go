package services

import (
	"context"
	"fmt"
	"net/url"

	"github.com/jrvgr/record-scanner-discogs-uploader/internal/models"
	"github.com/jrvgr/record-scanner-discogs-uploader/internal/shared"
)

// DiscogsOpts configures a [DiscogsService].
type DiscogsOpts struct {
	Username string
	FolderID int // collection folder, defaults to 1 ("Uncategorized")
	PerPage  int // page size, Discogs caps it at 500
	MaxPages int // pages fetched when listing, at least 1
}

// DiscogsService implements [CollectionService] for one user's Discogs collection folder.
type DiscogsService struct {
	api      *APIService
	username string
	folderID int
	perPage  int
	maxPages int
}

// NewDiscogsService creates a Discogs collection client on top of api.
func NewDiscogsService(api *APIService, opts DiscogsOpts) (*DiscogsService, error) {
	if opts.Username == "" {
		return nil, fmt.Errorf("%w: username is required", shared.ErrMissingCredentials)
	}
	if opts.FolderID <= 0 {
		opts.FolderID = 1
	}
	if opts.PerPage <= 0 {
		opts.PerPage = 500
	}
	if opts.MaxPages <= 0 {
		opts.MaxPages = 1
	}

	return &DiscogsService{
		api:      api,
		username: opts.Username,
		folderID: opts.FolderID,
		perPage:  opts.PerPage,
		maxPages: opts.MaxPages,
	}, nil
}

// NewDiscogsServiceFromConfig wires the API layer and collection client from application config
// and the run's credentials.
func NewDiscogsServiceFromConfig(cfg *shared.Config, rc *shared.RunConfig, opts APIOpts) (*DiscogsService, error) {
	if rc == nil || rc.Token == "" {
		return nil, fmt.Errorf("%w: %s not set", shared.ErrMissingCredentials, shared.EnvToken)
	}

	opts.BaseURL = cfg.Discogs.BaseURL
	opts.UserAgent = cfg.Discogs.UserAgent
	opts.Token = rc.Token
	opts.Timeout = cfg.Discogs.Timeout.Duration
	opts.RequestsPerMinute = cfg.Sync.RequestsPerMinute

	return NewDiscogsService(NewAPIService(opts), DiscogsOpts{
		Username: rc.Username,
		FolderID: cfg.Discogs.FolderID,
		PerPage:  cfg.Discogs.PerPage,
		MaxPages: cfg.Discogs.MaxPages,
	})
}

func (s *DiscogsService) Name() string { return "Discogs" }

// Username returns the collection owner.
func (s *DiscogsService) Username() string { return s.username }

func (s *DiscogsService) releasesPath() string {
	return fmt.Sprintf("/users/%s/collection/folders/%d/releases", url.PathEscape(s.username), s.folderID)
}

// ListReleases fetches the folder page by page until the last page or the configured page cap.
func (s *DiscogsService) ListReleases(ctx context.Context) ([]models.RemoteRelease, error) {
	releases := []models.RemoteRelease{}

	for page := 1; page <= s.maxPages; page++ {
		path := fmt.Sprintf("%s?per_page=%d&page=%d", s.releasesPath(), s.perPage, page)

		resp, err := s.api.Get(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("%w: list collection: %v", shared.ErrAPIRequest, err)
		}
		if !resp.OK() {
			return nil, fmt.Errorf("%w: list collection: status %d: %s", shared.ErrAPIRequest, resp.StatusCode, resp.Snippet())
		}

		var result models.CollectionPage
		if err := resp.Decode(&result); err != nil {
			return nil, fmt.Errorf("%w: list collection: %v", shared.ErrAPIRequest, err)
		}

		releases = append(releases, result.Releases...)

		if result.Pagination.Pages <= page {
			break
		}
	}

	return releases, nil
}

// AddRelease posts a release id to the folder. An empty id is rejected without a request.
func (s *DiscogsService) AddRelease(ctx context.Context, releaseID string) (int, error) {
	id := shared.NormalizeReleaseID(releaseID)
	if id == "" {
		return 0, fmt.Errorf("%w: empty release id", shared.ErrInvalidInput)
	}

	resp, err := s.api.Post(ctx, s.releasesPath()+"/"+url.PathEscape(id), nil)
	if err != nil {
		return 0, err
	}
	return resp.StatusCode, nil
}

// DeleteInstance removes a single instance of a release from the folder.
func (s *DiscogsService) DeleteInstance(ctx context.Context, releaseID, instanceID int) (int, error) {
	path := fmt.Sprintf("%s/%d/instances/%d", s.releasesPath(), releaseID, instanceID)

	resp, err := s.api.Delete(ctx, path)
	if err != nil {
		return 0, err
	}
	return resp.StatusCode, nil
}
