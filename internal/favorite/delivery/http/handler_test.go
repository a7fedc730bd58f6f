package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/tair/movie-favorites/internal/favorite/domain"
	"github.com/tair/movie-favorites/internal/favorite/repository"
	"github.com/tair/movie-favorites/internal/favorite/usecase/command"
	"github.com/tair/movie-favorites/internal/favorite/usecase/query"
)

type testServer struct {
	router  *mux.Router
	metrics *Metrics
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	gormRepo := repository.NewGormFavoriteRepository(db)
	require.NoError(t, gormRepo.AutoMigrate())

	var repo domain.FavoriteRepository = gormRepo
	metrics := NewMetrics(prometheus.NewRegistry())
	h := NewFavoriteHandlerWithDI(
		command.NewSaveFavoriteHandler(repo, nil),
		command.NewUpdateFavoriteHandler(repo, nil),
		command.NewDeleteFavoriteHandler(repo, nil),
		query.NewListFavoritesHandler(repo),
		metrics,
	)

	router := mux.NewRouter()
	RegisterMiddlewares(router, MiddlewareConfig{EnableLogging: true})
	h.RegisterRoutes(router)
	h.RegisterHealthCheck(router, sqlDB, nil)
	return &testServer{router: router, metrics: metrics}
}

func (s *testServer) do(t *testing.T, method, target, payload string) (*httptest.ResponseRecorder, map[string]json.RawMessage) {
	t.Helper()
	var body *bytes.Reader
	if payload == "" {
		body = bytes.NewReader(nil)
	} else {
		body = bytes.NewReader([]byte(payload))
	}
	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var out map[string]json.RawMessage
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec, out
}

func errorOf(t *testing.T, out map[string]json.RawMessage) string {
	t.Helper()
	var msg string
	require.NoError(t, json.Unmarshal(out["error"], &msg))
	return msg
}

func itemOf(t *testing.T, out map[string]json.RawMessage) domain.Item {
	t.Helper()
	var item domain.Item
	require.NoError(t, json.Unmarshal(out["item"], &item))
	return item
}

func itemsOf(t *testing.T, out map[string]json.RawMessage) []domain.Item {
	t.Helper()
	var items []domain.Item
	require.NoError(t, json.Unmarshal(out["items"], &items))
	return items
}

func TestFavoritesAPI_Lifecycle(t *testing.T) {
	s := newTestServer(t)

	rec, out := s.do(t, http.MethodPost, "/favorites",
		`{"userId":" guest_1 ","movieId":42,"title":" Alien ","posterPath":"/a.jpg","releaseDate":"","rating":5}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	item := itemOf(t, out)
	assert.Equal(t, int64(42), item.ID)
	assert.Equal(t, int64(42), item.MovieID)
	assert.Equal(t, "Alien", item.Title)
	assert.Equal(t, "/a.jpg", *item.PosterPath)
	assert.Nil(t, item.ReleaseDate)
	assert.Equal(t, 5, item.Rating)
	require.NotNil(t, item.Note)
	assert.Equal(t, "", *item.Note)
	assert.NotNil(t, item.UpdatedAt)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec, out = s.do(t, http.MethodPatch, "/favorites", `{"userId":"guest_1","movieId":42,"rating":7,"note":"  classic "}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	item = itemOf(t, out)
	assert.Equal(t, 5, item.Rating)
	assert.Equal(t, "classic", *item.Note)

	rec, out = s.do(t, http.MethodGet, "/favorites?userId=guest_1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	items := itemsOf(t, out)
	require.Len(t, items, 1)
	assert.Equal(t, "classic", *items[0].Note)

	rec, out = s.do(t, http.MethodDelete, "/favorites", `{"userId":"guest_1","movieId":42}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `true`, string(out["ok"]))

	rec, out = s.do(t, http.MethodDelete, "/favorites", `{"userId":"guest_1","movieId":42}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, MsgNotFound, errorOf(t, out))

	rec, out = s.do(t, http.MethodGet, "/favorites?userId=guest_1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", string(out["items"]))

	assert.Equal(t, float64(1), testutil.ToFloat64(s.metrics.mutations.WithLabelValues("save")))
	assert.Equal(t, float64(1), testutil.ToFloat64(s.metrics.mutations.WithLabelValues("delete")))
}

func TestFavoritesAPI_PostIsUpsert(t *testing.T) {
	s := newTestServer(t)

	rec, _ := s.do(t, http.MethodPost, "/favorites", `{"userId":"u","movieId":1,"title":"One"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	rec, out := s.do(t, http.MethodPost, "/favorites", `{"userId":"u","movieId":1,"title":"One again","rating":"2"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, itemOf(t, out).Rating)

	_, out = s.do(t, http.MethodGet, "/favorites?userId=u", "")
	items := itemsOf(t, out)
	require.Len(t, items, 1)
	assert.Equal(t, "One again", items[0].Title)
}

func TestFavoritesAPI_DefaultRatingOnCreate(t *testing.T) {
	s := newTestServer(t)

	rec, out := s.do(t, http.MethodPost, "/favorites", `{"userId":"u","movieId":1,"title":"One","rating":null}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.DefaultRating, itemOf(t, out).Rating)
}

func TestFavoritesAPI_Validation(t *testing.T) {
	s := newTestServer(t)

	cases := []struct {
		name    string
		method  string
		target  string
		payload string
		message string
	}{
		{"list without user", http.MethodGet, "/favorites?userId=%20", "", "Missing userId"},
		{"post without title", http.MethodPost, "/favorites", `{"userId":"u","movieId":1}`, command.MsgMissingFields},
		{"post with non-string title", http.MethodPost, "/favorites", `{"userId":"u","movieId":1,"title":5}`, command.MsgMissingFields},
		{"post with fractional movie id", http.MethodPost, "/favorites", `{"userId":"u","movieId":1.5,"title":"t"}`, command.MsgMissingFields},
		{"post with string movie id", http.MethodPost, "/favorites", `{"userId":"u","movieId":"1","title":"t"}`, command.MsgMissingFields},
		{"post with bad rating", http.MethodPost, "/favorites", `{"userId":"u","movieId":1,"title":"t","rating":"lots"}`, command.MsgInvalidRating},
		{"post with malformed body", http.MethodPost, "/favorites", `{"userId":`, command.MsgMissingFields},
		{"patch without fields", http.MethodPatch, "/favorites", `{"userId":"u","movieId":1}`, command.MsgNothingToDo},
		{"patch with bad rating", http.MethodPatch, "/favorites", `{"userId":"u","movieId":1,"rating":"NaN"}`, command.MsgInvalidRating},
		{"patch without user", http.MethodPatch, "/favorites", `{"movieId":1,"rating":3}`, command.MsgMissingFields},
		{"delete without movie", http.MethodDelete, "/favorites", `{"userId":"u"}`, command.MsgMissingFields},
		{"delete without user", http.MethodDelete, "/favorites", `{"movieId":1}`, command.MsgMissingFields},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, out := s.do(t, tc.method, tc.target, tc.payload)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			assert.Equal(t, tc.message, errorOf(t, out))
		})
	}
}

func TestFavoritesAPI_PatchMissingRow(t *testing.T) {
	s := newTestServer(t)

	rec, out := s.do(t, http.MethodPatch, "/favorites", `{"userId":"u","movieId":9,"rating":2}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, MsgNotFound, errorOf(t, out))
}

func TestFavoritesAPI_ListOrder(t *testing.T) {
	s := newTestServer(t)

	for _, id := range []string{"1", "2", "3"} {
		rec, _ := s.do(t, http.MethodPost, "/favorites", `{"userId":"u","movieId":`+id+`,"title":"m"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		time.Sleep(5 * time.Millisecond)
	}

	_, out := s.do(t, http.MethodGet, "/favorites?userId=u", "")
	items := itemsOf(t, out)
	require.Len(t, items, 3)
	for i := 1; i < len(items); i++ {
		assert.False(t, items[i].UpdatedAt.After(*items[i-1].UpdatedAt), "items must be newest first")
	}
}

func TestFavoritesAPI_NotConfigured(t *testing.T) {
	router := mux.NewRouter()
	NewUnconfiguredHandler(nil).RegisterRoutes(router)

	for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete} {
		req := httptest.NewRequest(method, "/favorites?userId=u", strings.NewReader(`{}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, method)
		assert.JSONEq(t, `{"error":"Server persistence is not configured."}`, rec.Body.String())
	}
}

func TestHealthCheck(t *testing.T) {
	s := newTestServer(t)

	rec, out := s.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `"up"`, string(out["database"]))
	assert.JSONEq(t, `"disabled"`, string(out["cache"]))
}

func TestRecoveryMiddleware(t *testing.T) {
	h := RecoveryMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRequestIDMiddleware_PropagatesHeader(t *testing.T) {
	var seen string
	h := RequestIDMiddleware(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "abc", seen)
	assert.Equal(t, "abc", rec.Header().Get("X-Request-ID"))
}

func TestRateLimiter(t *testing.T) {
	assert.Nil(t, NewRateLimiter(nil, 10, time.Minute))

	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	assert.Nil(t, NewRateLimiter(client, 0, time.Minute))

	limiter := NewRateLimiter(client, 10, time.Minute)
	require.NotNil(t, limiter)

	called := false
	h := limiter.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusNoContent)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/favorites?userId=u", nil))

	assert.True(t, called, "an unreachable Redis must not block requests")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestClientIdentifier(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/favorites?userId=guest_1", nil)
	assert.Equal(t, "user:guest_1", clientIdentifier(req))

	req = httptest.NewRequest(http.MethodDelete, "/favorites", nil)
	req.Header.Set("X-Forwarded-For", "10.0.0.1, 10.0.0.2")
	assert.Equal(t, "ip:10.0.0.1", clientIdentifier(req))

	req = httptest.NewRequest(http.MethodDelete, "/favorites", nil)
	req.RemoteAddr = "192.0.2.1:1234"
	assert.Equal(t, "ip:192.0.2.1", clientIdentifier(req))
}

func TestSwaggerDocs(t *testing.T) {
	router := mux.NewRouter()
	RegisterSwaggerDocs(router)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var doc struct {
		Paths map[string]json.RawMessage `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Contains(t, doc.Paths, "/favorites")
	assert.Contains(t, doc.Paths, "/health")

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
