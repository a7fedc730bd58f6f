package http

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tair/movie-favorites/pkg/logger"
)

// windowStore keeps the request timestamps of each client's sliding window.
type windowStore interface {
	// count drops entries older than windowStart and returns how many remain.
	count(ctx context.Context, key string, windowStart time.Time) (int64, error)
	record(ctx context.Context, key string, at time.Time, ttl time.Duration) error
}

type redisWindowStore struct {
	client *redis.Client
}

func (s redisWindowStore) count(ctx context.Context, key string, windowStart time.Time) (int64, error) {
	pipe := s.client.Pipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", fmt.Sprintf("%d", windowStart.UnixNano()))
	countCmd := pipe.ZCard(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return countCmd.Val(), nil
}

func (s redisWindowStore) record(ctx context.Context, key string, at time.Time, ttl time.Duration) error {
	pipe := s.client.Pipeline()
	pipe.ZAdd(ctx, key, redis.Z{
		Score:  float64(at.UnixNano()),
		Member: at.UnixNano(),
	})
	pipe.Expire(ctx, key, ttl)
	_, err := pipe.Exec(ctx)
	return err
}

// RateLimiter implements per-client rate limiting using a Redis sliding window
type RateLimiter struct {
	store       windowStore
	maxRequests int
	window      time.Duration
	now         func() time.Time
}

// NewRateLimiter creates a new rate limiter. It returns nil when
// redisClient is nil or maxRequests is not positive, disabling the limit.
func NewRateLimiter(redisClient *redis.Client, maxRequests int, window time.Duration) *RateLimiter {
	if redisClient == nil || maxRequests <= 0 {
		return nil
	}
	return &RateLimiter{
		store:       redisWindowStore{client: redisClient},
		maxRequests: maxRequests,
		window:      window,
		now:         time.Now,
	}
}

// Middleware limits requests per user id, falling back to the client IP.
// The user id is read from the query string or, for writes, the JSON body.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identifier := clientIdentifier(r)

		allowed, remaining, resetTime, err := rl.checkLimit(r.Context(), identifier)
		if err != nil {
			logger.Error(r.Context()).
				Err(err).
				Str("identifier", identifier).
				Msg("Rate limiter error")
			// Fail open
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", rl.maxRequests))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", resetTime.Unix()))

		if !allowed {
			logger.Warn(r.Context()).
				Str("identifier", identifier).
				Int("limit", rl.maxRequests).
				Msg("Rate limit exceeded")
			w.Header().Set("Retry-After", fmt.Sprintf("%d", int(rl.window.Seconds())))
			respondError(w, http.StatusTooManyRequests, "Rate limit exceeded")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// maxPeekBytes bounds how much of a request body is read to find the user id.
const maxPeekBytes = 64 << 10

func clientIdentifier(r *http.Request) string {
	if userID := strings.TrimSpace(r.URL.Query().Get("userId")); userID != "" {
		return "user:" + userID
	}
	if userID := peekBodyUserID(r); userID != "" {
		return "user:" + userID
	}
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return "ip:" + strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}

// peekBodyUserID reads the userId field of a JSON body and restores the body
// for the next handler.
func peekBodyUserID(r *http.Request) string {
	if r.Body == nil || r.Body == http.NoBody || r.Method == http.MethodGet {
		return ""
	}
	peeked, err := io.ReadAll(io.LimitReader(r.Body, maxPeekBytes))
	r.Body = struct {
		io.Reader
		io.Closer
	}{io.MultiReader(bytes.NewReader(peeked), r.Body), r.Body}
	if err != nil {
		return ""
	}
	return decodeBody(bytes.NewReader(peeked)).str("userId")
}

// checkLimit checks if request is within rate limit using sliding window.
// Rejected requests are not recorded.
func (rl *RateLimiter) checkLimit(ctx context.Context, identifier string) (bool, int, time.Time, error) {
	key := fmt.Sprintf("ratelimit:favorites:%s", identifier)
	now := rl.now()
	resetTime := now.Add(rl.window)

	count, err := rl.store.count(ctx, key, now.Add(-rl.window))
	if err != nil {
		return false, 0, time.Time{}, err
	}
	if count >= int64(rl.maxRequests) {
		return false, 0, resetTime, nil
	}

	if err := rl.store.record(ctx, key, now, rl.window+time.Minute); err != nil {
		return false, 0, time.Time{}, err
	}
	return true, rl.maxRequests - int(count) - 1, resetTime, nil
}
