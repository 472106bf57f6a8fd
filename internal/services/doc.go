// Package services implements the [CollectionService] interface for the Discogs collection API.
//
// # Request Layer
//
// [APIService] sends every request with the configured User-Agent and "Accept: application/json".
// Authentication uses a Discogs personal access token, attached by an [oauth2.Transport] as
// "Authorization: Discogs token=<token>". An optional [rate.Limiter] spaces requests out on the
// client side before Discogs has to answer 429.
//
// # Discogs Implementation
//
// [DiscogsService] maps the collection endpoints:
//   - GET    /users/{username}/collection/folders/{folder}/releases?per_page=N&page=P
//   - POST   /users/{username}/collection/folders/{folder}/releases/{release_id}
//   - DELETE /users/{username}/collection/folders/{folder}/releases/{release_id}/instances/{instance_id}
//
// # Error Handling
//
// Listing returns [shared.ErrAPIRequest] for transport errors, non-2xx answers and undecodable bodies.
// Add and delete return the raw status code instead, so callers decide what 201, 204 and 429 mean.
// Missing credentials are reported as [shared.ErrMissingCredentials].
package services
