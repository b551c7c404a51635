package rest

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/soosb/aquafeed/internal/store/repository"
	"go.uber.org/zap"
)

// Handler contains dependencies for HTTP handlers.
type Handler struct {
	repo *repository.Repository
	log  *zap.Logger
}

// NewHandler creates a new handler.
func NewHandler(repo *repository.Repository, log *zap.Logger) *Handler {
	return &Handler{repo: repo, log: log}
}

// HealthCheck handles health check requests.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "aquafeed",
	})
}

// GetSources returns all discovered competitions with their processing
// status.
func (h *Handler) GetSources(w http.ResponseWriter, r *http.Request) {
	sources, err := h.repo.ListSources(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch sources", err)
		return
	}
	respondJSON(w, http.StatusOK, sources)
}

// GetMeets returns all ingested meets.
func (h *Handler) GetMeets(w http.ResponseWriter, r *http.Request) {
	meets, err := h.repo.ListMeets(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch meets", err)
		return
	}
	respondJSON(w, http.StatusOK, meets)
}

// GetMeet returns one meet with its result count.
func (h *Handler) GetMeet(w http.ResponseWriter, r *http.Request) {
	meetID, err := strconv.ParseInt(mux.Vars(r)["meetID"], 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid meet ID", err)
		return
	}

	meet, err := h.repo.GetMeet(r.Context(), meetID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch meet", err)
		return
	}
	if meet == nil {
		respondError(w, http.StatusNotFound, "Meet not found", nil)
		return
	}

	count, err := h.repo.CountMeetResults(r.Context(), meetID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to count results", err)
		return
	}

	respondJSON(w, http.StatusOK, meetResponse{Meet: meet, ResultCount: count})
}

type meetResponse struct {
	Meet        interface{} `json:"meet"`
	ResultCount int         `json:"result_count"`
}

// LoggingMiddleware logs each request with its status and duration.
func LoggingMiddleware(log *zap.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			log.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rec.status),
				zap.Duration("duration", time.Since(start)))
		})
	}
}

// RecoveryMiddleware converts panics into 500 responses.
func RecoveryMiddleware(log *zap.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					log.Error("handler panic",
						zap.String("path", r.URL.Path),
						zap.Any("panic", rec))
					respondError(w, http.StatusInternalServerError, "Internal server error", nil)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// respondJSON writes a JSON response.
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an error response.
func respondError(w http.ResponseWriter, status int, message string, err error) {
	response := map[string]interface{}{
		"error":  message,
		"status": status,
	}
	if err != nil && err != sql.ErrNoRows {
		response["details"] = err.Error()
	}
	respondJSON(w, status, response)
}
