// Raw HTTP layer shared by the Discogs client
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL   = "https://api.discogs.com"
	DefaultUserAgent = "RecordCollectionUploader/1.0 +http://github.com/jrvgr/record-scanner-discogs-uploader"
)

// APIOpts configures an [APIService].
type APIOpts struct {
	BaseURL           string            // defaults to [DefaultBaseURL]
	UserAgent         string            // defaults to [DefaultUserAgent]
	Token             string            // personal access token; empty sends no Authorization header
	Timeout           time.Duration     // per-request timeout, zero for none
	Transport         http.RoundTripper // base transport, defaults to [http.DefaultTransport]
	RequestsPerMinute int               // client-side throttle, zero disables it
}

// APIService performs authenticated, throttled HTTP requests against the Discogs API.
type APIService struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewAPIService creates a new API service from opts.
func NewAPIService(opts APIOpts) *APIService {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}

	transport := opts.Transport
	if opts.Token != "" {
		transport = NewTokenTransport(opts.Token, transport)
	}

	var limiter *rate.Limiter
	if opts.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(opts.RequestsPerMinute)), 1)
	}

	return &APIService{
		baseURL:    opts.BaseURL,
		userAgent:  opts.UserAgent,
		httpClient: &http.Client{Transport: transport, Timeout: opts.Timeout},
		limiter:    limiter,
	}
}

// NewTokenTransport wraps base so every request carries "Authorization: Discogs token=<token>".
//
// Discogs personal tokens are a fixed credential, so a static [oauth2.TokenSource] with a
// custom token type produces exactly the header the API expects.
func NewTokenTransport(token string, base http.RoundTripper) http.RoundTripper {
	return &oauth2.Transport{
		Source: oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: "token=" + token,
			TokenType:   "Discogs",
		}),
		Base: base,
	}
}

// APIResponse represents a raw API response with status and body.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	IsJSON     bool
}

// OK reports a 2xx status.
func (r *APIResponse) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Decode unmarshals the JSON body into v.
func (r *APIResponse) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Snippet returns the start of the body for error messages.
func (r *APIResponse) Snippet() string {
	const limit = 200
	if len(r.Body) > limit {
		return string(r.Body[:limit]) + "..."
	}
	return string(r.Body)
}

// Get performs a GET request to the specified path and returns the raw response.
func (a *APIService) Get(ctx context.Context, path string) (*APIResponse, error) {
	return a.Do(ctx, http.MethodGet, path, nil)
}

// Post performs a POST request with an optional JSON body.
func (a *APIService) Post(ctx context.Context, path string, data []byte) (*APIResponse, error) {
	return a.Do(ctx, http.MethodPost, path, data)
}

// Delete performs a DELETE request to the specified path.
func (a *APIService) Delete(ctx context.Context, path string) (*APIResponse, error) {
	return a.Do(ctx, http.MethodDelete, path, nil)
}

// Do waits for the throttle, sends the request and reads the whole body.
//
// Only transport failures are errors; any HTTP status is returned to the caller.
func (a *APIService) Do(ctx context.Context, method, path string, data []byte) (*APIResponse, error) {
	if a.limiter != nil {
		if err := a.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("request throttle: %w", err)
		}
	}

	var body io.Reader
	if data != nil {
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", a.userAgent)
	req.Header.Set("Accept", "application/json")
	if data != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return &APIResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       respBody,
		IsJSON:     json.Valid(respBody),
	}, nil
}
