// package services defines the CollectionService interface for a remote record collection
package services

import (
	"context"

	"github.com/jrvgr/record-scanner-discogs-uploader/internal/models"
)

// CollectionService is a remote record collection that releases can be listed, added to and removed from.
type CollectionService interface {
	// ListReleases returns every release currently in the collection folder.
	ListReleases(ctx context.Context) ([]models.RemoteRelease, error)

	// AddRelease adds a release by id and returns the HTTP status the API answered with.
	// The error is non-nil only when no response was received.
	AddRelease(ctx context.Context, releaseID string) (int, error)

	// DeleteInstance removes one collection instance of a release and returns the HTTP status.
	DeleteInstance(ctx context.Context, releaseID, instanceID int) (int, error)

	// Name returns the name of the service (e.g., "Discogs")
	Name() string
}
