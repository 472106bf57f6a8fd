package models

import (
	"strconv"
	"strings"
)

// LocalRecord is one row of the inventory file.
type LocalRecord struct {
	Title            string `json:"title"`
	Artist           string `json:"artist"`
	DiscogsReleaseID string `json:"discogs_release_id"`
	Line             int    `json:"line,omitempty"` // CSV line the record came from
}

// Artist is a credited artist on a release.
type Artist struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// BasicInformation carries the descriptive metadata Discogs embeds in collection items.
type BasicInformation struct {
	ID      int      `json:"id"`
	Title   string   `json:"title"`
	Year    int      `json:"year"`
	Artists []Artist `json:"artists"`
}

// RemoteRelease is one instance of a release in a collection folder.
type RemoteRelease struct {
	ID               int              `json:"id"`
	InstanceID       int              `json:"instance_id"`
	FolderID         int              `json:"folder_id"`
	DateAdded        string           `json:"date_added"`
	BasicInformation BasicInformation `json:"basic_information"`
}

// ReleaseID returns the release id as it appears in inventory files.
func (r RemoteRelease) ReleaseID() string {
	return strconv.Itoa(r.ID)
}

// ArtistNames joins the credited artists with ", ".
func (r RemoteRelease) ArtistNames() string {
	names := make([]string, 0, len(r.BasicInformation.Artists))
	for _, a := range r.BasicInformation.Artists {
		names = append(names, a.Name)
	}
	return strings.Join(names, ", ")
}

// Label renders the release as "Artist - Title".
func (r RemoteRelease) Label() string {
	return r.ArtistNames() + " - " + r.BasicInformation.Title
}

// Pagination is the paging envelope of Discogs list endpoints.
type Pagination struct {
	Page    int `json:"page"`
	Pages   int `json:"pages"`
	PerPage int `json:"per_page"`
	Items   int `json:"items"`
}

// CollectionPage is the body of GET /users/{username}/collection/folders/{folder}/releases.
type CollectionPage struct {
	Pagination Pagination      `json:"pagination"`
	Releases   []RemoteRelease `json:"releases"`
}
