package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Defaults for the public TMDB API
const (
	DefaultBaseURL      = "https://api.themoviedb.org/3"
	DefaultImageBaseURL = "https://image.tmdb.org/t/p/w500"
)

var (
	// ErrMissingAPIKey is returned when no TMDB key is configured.
	ErrMissingAPIKey = errors.New("TMDB_API_KEY missing")
	// ErrEmptyQuery is returned by Search for a blank query.
	ErrEmptyQuery = errors.New("missing query")
	// ErrInvalidID is returned by Movie for a non-positive id.
	ErrInvalidID = errors.New("invalid movie id")
)

// RequestError is a non-2xx TMDB response.
type RequestError struct {
	StatusCode int
	Details    string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("TMDB request failed: status %d: %s", e.StatusCode, e.Details)
}

// Client queries TMDB search and detail endpoints.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a TMDB client. An empty baseURL uses DefaultBaseURL.
func NewClient(baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout:   15 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// Search returns the first page of movies matching query
func (c *Client) Search(ctx context.Context, query string) (*SearchPage, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("include_adult", "false")
	params.Set("language", "en-US")
	params.Set("page", "1")

	var page SearchPage
	if err := c.get(ctx, "/search/movie", params, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Movie returns the details of one movie
func (c *Client) Movie(ctx context.Context, id int64) (*Movie, error) {
	if id <= 0 {
		return nil, ErrInvalidID
	}

	params := url.Values{}
	params.Set("language", "en-US")

	var movie Movie
	if err := c.get(ctx, "/movie/"+strconv.FormatInt(id, 10), params, &movie); err != nil {
		return nil, err
	}
	return &movie, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	if c.apiKey == "" {
		return ErrMissingAPIKey
	}
	params.Set("api_key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("network error while contacting TMDB: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		details, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &RequestError{StatusCode: resp.StatusCode, Details: strings.TrimSpace(string(details))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode TMDB response: %w", err)
	}
	return nil
}

// PosterURL returns the full image URL for a poster path, or "" when the
// movie has none.
func PosterURL(imageBase string, path *string) string {
	if path == nil || *path == "" {
		return ""
	}
	if imageBase == "" {
		imageBase = DefaultImageBaseURL
	}
	return strings.TrimRight(imageBase, "/") + *path
}
