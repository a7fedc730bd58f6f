// Package remote is the client adapter for the favorites HTTP API.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/tair/movie-favorites/internal/favorite/domain"
	"github.com/tair/movie-favorites/pkg/logger"
)

// Client talks to the favorites API. It implements engine.RemoteStore.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *CircuitBreaker
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default traced client
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.httpClient = c }
}

// WithCircuitBreaker guards every call with cb
func WithCircuitBreaker(cb *CircuitBreaker) Option {
	return func(cl *Client) { cl.breaker = cb }
}

// NewClient creates a client for the API rooted at baseURL, e.g.
// "http://localhost:8080". The default client has no timeout.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type createRequest struct {
	UserID string `json:"userId"`
	domain.Fields
}

type patchRequest struct {
	UserID  string `json:"userId"`
	MovieID int64  `json:"movieId"`
	domain.Patch
}

type deleteRequest struct {
	UserID  string `json:"userId"`
	MovieID int64  `json:"movieId"`
}

// List fetches the user's favorites
func (c *Client) List(ctx context.Context, userID string) ([]domain.Favorite, error) {
	var resp domain.ListResponse
	target := "/favorites?userId=" + url.QueryEscape(userID)
	if err := c.call(ctx, http.MethodGet, target, nil, &resp); err != nil {
		return nil, err
	}

	favorites := make([]domain.Favorite, 0, len(resp.Items))
	for _, item := range resp.Items {
		favorites = append(favorites, domain.FromRemote(item))
	}
	return favorites, nil
}

// CreateOrUpdate upserts one favorite
func (c *Client) CreateOrUpdate(ctx context.Context, userID string, fields domain.Fields) error {
	return c.call(ctx, http.MethodPost, "/favorites", createRequest{UserID: userID, Fields: fields}, nil)
}

// Patch updates rating and/or note
func (c *Client) Patch(ctx context.Context, userID string, movieID int64, patch domain.Patch) error {
	return c.call(ctx, http.MethodPatch, "/favorites", patchRequest{UserID: userID, MovieID: movieID, Patch: patch}, nil)
}

// Delete removes one favorite
func (c *Client) Delete(ctx context.Context, userID string, movieID int64) error {
	return c.call(ctx, http.MethodDelete, "/favorites", deleteRequest{UserID: userID, MovieID: movieID}, nil)
}

func (c *Client) call(ctx context.Context, method, target string, in, out interface{}) error {
	if c.breaker == nil {
		return c.do(ctx, method, target, in, out)
	}
	return c.breaker.Call(func() error {
		return c.do(ctx, method, target, in, out)
	})
}

func (c *Client) do(ctx context.Context, method, target string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+target, body)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %v", domain.ErrUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err := statusError(resp.StatusCode, data)
		logger.Debug(ctx).
			Err(err).
			Str("method", method).
			Int("status", resp.StatusCode).
			Msg("Favorites API request failed")
		return err
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: decode response: %v", domain.ErrUnavailable, err)
	}
	return nil
}

// statusError classifies a non-2xx response
func statusError(code int, body []byte) error {
	var payload domain.ErrorResponse
	_ = json.Unmarshal(body, &payload)
	message := payload.Error
	if message == "" {
		message = http.StatusText(code)
	}

	switch code {
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %s", domain.ErrValidation, message)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", domain.ErrNotFound, message)
	default:
		return fmt.Errorf("%w: status %d: %s", domain.ErrUnavailable, code, message)
	}
}

func isUnavailable(err error) bool {
	return err != nil && errors.Is(err, domain.ErrUnavailable)
}
