package http

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"

	"github.com/tair/movie-favorites/internal/favorite/domain"
	"github.com/tair/movie-favorites/internal/favorite/usecase/command"
	"github.com/tair/movie-favorites/internal/favorite/usecase/query"
	"github.com/tair/movie-favorites/pkg/logger"
)

// Response messages
const (
	MsgNotConfigured = "Server persistence is not configured."
	MsgNotFound      = "Favorite not found."
	MsgLoadFailed    = "Could not load favorites from server."
	MsgSaveFailed    = "Could not save favorite on server."
	MsgUpdateFailed  = "Could not update favorite on server."
	MsgDeleteFailed  = "Could not delete favorite on server."
)

// FavoriteHandler serves the favorites wire contract using CQRS handlers
type FavoriteHandler struct {
	// Command handlers
	saveHandler   *command.SaveFavoriteHandler
	updateHandler *command.UpdateFavoriteHandler
	deleteHandler *command.DeleteFavoriteHandler

	// Query handlers
	listHandler *query.ListFavoritesHandler

	metrics *Metrics
}

// NewFavoriteHandlerWithDI creates a new favorite handler using dependency injection
func NewFavoriteHandlerWithDI(
	saveHandler *command.SaveFavoriteHandler,
	updateHandler *command.UpdateFavoriteHandler,
	deleteHandler *command.DeleteFavoriteHandler,
	listHandler *query.ListFavoritesHandler,
	metrics *Metrics,
) *FavoriteHandler {
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &FavoriteHandler{
		saveHandler:   saveHandler,
		updateHandler: updateHandler,
		deleteHandler: deleteHandler,
		listHandler:   listHandler,
		metrics:       metrics,
	}
}

// NewUnconfiguredHandler returns a handler answering 503 on every favorites
// route. Used when no database is configured.
func NewUnconfiguredHandler(metrics *Metrics) *FavoriteHandler {
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &FavoriteHandler{metrics: metrics}
}

func (h *FavoriteHandler) configured() bool {
	return h.listHandler != nil
}

// ListFavorites handles GET /favorites?userId=<id>
func (h *FavoriteHandler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rows, err := h.listHandler.Handle(ctx, query.ListFavoritesQuery{UserID: r.URL.Query().Get("userId")})
	if err != nil {
		h.respondFailure(ctx, w, err, MsgLoadFailed)
		return
	}

	items := make([]domain.Item, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.Item())
	}
	respondJSON(w, http.StatusOK, domain.ListResponse{Items: items})
}

// SaveFavorite handles POST /favorites
func (h *FavoriteHandler) SaveFavorite(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	b := decodeBody(r.Body)

	movieID, ok := b.movieID()
	if !ok {
		respondError(w, http.StatusBadRequest, command.MsgMissingFields)
		return
	}
	rating, err := b.rating()
	if err != nil {
		respondError(w, http.StatusBadRequest, command.MsgInvalidRating)
		return
	}

	row, err := h.saveHandler.Handle(ctx, command.SaveFavoriteCommand{
		UserID:      b.str("userId"),
		MovieID:     movieID,
		Title:       b.str("title"),
		PosterPath:  b.optionalStr("posterPath"),
		ReleaseDate: b.optionalStr("releaseDate"),
		Overview:    b.optionalStr("overview"),
		Rating:      rating,
		Note:        b.optionalStr("note"),
	})
	if err != nil {
		h.respondFailure(ctx, w, err, MsgSaveFailed)
		return
	}

	h.metrics.mutations.WithLabelValues("save").Inc()
	logger.Info(ctx).
		Str("user_id", row.UserID).
		Int64("movie_id", row.MovieID).
		Int("rating", row.Rating).
		Msg("Favorite saved")

	respondJSON(w, http.StatusOK, domain.ItemResponse{Item: row.Item()})
}

// UpdateFavorite handles PATCH /favorites
func (h *FavoriteHandler) UpdateFavorite(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	b := decodeBody(r.Body)

	movieID, ok := b.movieID()
	if !ok || b.str("userId") == "" {
		respondError(w, http.StatusBadRequest, command.MsgMissingFields)
		return
	}
	rating, err := b.rating()
	if err != nil {
		respondError(w, http.StatusBadRequest, command.MsgInvalidRating)
		return
	}

	row, err := h.updateHandler.Handle(ctx, command.UpdateFavoriteCommand{
		UserID:  b.str("userId"),
		MovieID: movieID,
		Rating:  rating,
		Note:    b.optionalStr("note"),
	})
	if err != nil {
		h.respondFailure(ctx, w, err, MsgUpdateFailed)
		return
	}

	h.metrics.mutations.WithLabelValues("update").Inc()
	respondJSON(w, http.StatusOK, domain.ItemResponse{Item: row.Item()})
}

// DeleteFavorite handles DELETE /favorites
func (h *FavoriteHandler) DeleteFavorite(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	b := decodeBody(r.Body)

	movieID, ok := b.movieID()
	if !ok {
		respondError(w, http.StatusBadRequest, command.MsgMissingFields)
		return
	}

	err := h.deleteHandler.Handle(ctx, command.DeleteFavoriteCommand{
		UserID:  b.str("userId"),
		MovieID: movieID,
	})
	if err != nil {
		h.respondFailure(ctx, w, err, MsgDeleteFailed)
		return
	}

	h.metrics.mutations.WithLabelValues("delete").Inc()
	respondJSON(w, http.StatusOK, domain.DeleteResponse{OK: true})
}

// notConfigured answers every favorites route when persistence is absent
func (h *FavoriteHandler) notConfigured(w http.ResponseWriter, _ *http.Request) {
	respondError(w, http.StatusServiceUnavailable, MsgNotConfigured)
}

// respondFailure maps a usecase error to its HTTP status
func (h *FavoriteHandler) respondFailure(ctx context.Context, w http.ResponseWriter, err error, fallback string) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		respondError(w, http.StatusBadRequest, verr.Message)
	case errors.Is(err, domain.ErrNotFound):
		respondError(w, http.StatusNotFound, MsgNotFound)
	case errors.Is(err, domain.ErrNotConfigured):
		respondError(w, http.StatusServiceUnavailable, MsgNotConfigured)
	default:
		logger.Error(ctx).Err(err).Msg(fallback)
		respondError(w, http.StatusInternalServerError, fallback)
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// metricsMiddleware wraps handlers with Prometheus metrics
func (h *FavoriteHandler) metricsMiddleware(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()

		h.metrics.requestCounter.WithLabelValues(r.Method, endpoint, strconv.Itoa(rw.statusCode)).Inc()
		h.metrics.requestLatency.WithLabelValues(r.Method, endpoint).Observe(duration)
		h.metrics.requestSummary.WithLabelValues(r.Method, endpoint).Observe(duration)
	}
}

// RegisterRoutes registers all favorites routes
func (h *FavoriteHandler) RegisterRoutes(router *mux.Router) {
	const endpoint = "/favorites"

	if !h.configured() {
		router.HandleFunc(endpoint, h.metricsMiddleware(endpoint, h.notConfigured)).
			Methods("GET", "POST", "PATCH", "DELETE")
		return
	}

	router.HandleFunc(endpoint, h.metricsMiddleware(endpoint, h.ListFavorites)).Methods("GET")
	router.HandleFunc(endpoint, h.metricsMiddleware(endpoint, h.SaveFavorite)).Methods("POST")
	router.HandleFunc(endpoint, h.metricsMiddleware(endpoint, h.UpdateFavorite)).Methods("PATCH")
	router.HandleFunc(endpoint, h.metricsMiddleware(endpoint, h.DeleteFavorite)).Methods("DELETE")
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Cache    string `json:"cache"`
}

// RegisterHealthCheck registers health check endpoint. db and redisClient
// may be nil when the corresponding backend is not configured.
func (h *FavoriteHandler) RegisterHealthCheck(router *mux.Router, db *sql.DB, redisClient *redis.Client) {
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp := HealthResponse{Status: "healthy", Database: "unconfigured", Cache: "disabled"}
		status := http.StatusOK

		if db != nil {
			resp.Database = "up"
			if err := db.PingContext(ctx); err != nil {
				resp.Database = "down"
				resp.Status = "unhealthy"
				status = http.StatusServiceUnavailable
			}
		}

		if redisClient != nil {
			resp.Cache = "up"
			if err := redisClient.Ping(ctx).Err(); err != nil {
				// The cache is optional; report but stay healthy.
				resp.Cache = "down"
			}
		}

		respondJSON(w, status, resp)
	}).Methods("GET")
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// respondError sends the {"error": message} body
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, domain.ErrorResponse{Error: message})
}
