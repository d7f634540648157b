// Package api provides HTTP handlers for the SHSH lessons API.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ashureev/shsh-lessons/internal/catalog"
	"github.com/ashureev/shsh-lessons/internal/config"
	"github.com/ashureev/shsh-lessons/internal/playground"
	"github.com/ashureev/shsh-lessons/internal/store"
	"github.com/ashureev/shsh-lessons/internal/terminal"
	"github.com/go-chi/chi/v5"
)

// maxBodyBytes caps JSON request bodies; commands are checked separately
// against the configured MAX_COMMAND_LENGTH.
const maxBodyBytes = 64 << 10

var (
	errBadRequest      = errors.New("bad request")
	errCommandTooLong  = errors.New("command too long")
	errBodyTooLarge    = errors.New("request body too large")
	errUnknownCategory = errors.New("unknown category")
)

// Handler provides common handler utilities.
type Handler struct {
	repo     store.Repository
	catalog  *catalog.Catalog
	sessions *playground.Manager
	sm       *terminal.SessionManager
	cfg      *config.Config
}

// NewHandler creates a new Handler with common dependencies.
func NewHandler(repo store.Repository, cat *catalog.Catalog, sessions *playground.Manager, sm *terminal.SessionManager, cfg *config.Config) *Handler {
	return &Handler{
		repo:     repo,
		catalog:  cat,
		sessions: sessions,
		sm:       sm,
		cfg:      cfg,
	}
}

// RegisterRoutes registers the lesson and playground routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/me", h.GetMe)
		r.Get("/config", h.GetConfig)

		r.Get("/catalog", h.GetCatalog)
		r.Get("/lessons", h.ListLessons)
		r.Get("/lessons/{id}", h.GetLesson)
		r.Post("/lessons/{id}/open", h.OpenLesson)

		r.Route("/playground", func(r chi.Router) {
			r.Get("/", h.GetPlayground)
			r.Delete("/", h.ClosePlayground)
			r.Post("/exercise", h.SelectExercise)
			r.Post("/submit", h.Submit)
			r.Post("/hint", h.ToggleHint)
			r.Post("/reset", h.Reset)
			r.Get("/recall", h.Recall)
		})
	})
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, catalog.ErrLessonNotFound),
		errors.Is(err, playground.ErrNoSession):
		return http.StatusNotFound
	case errors.Is(err, playground.ErrExerciseOutOfRange),
		errors.Is(err, errBadRequest),
		errors.Is(err, errUnknownCategory):
		return http.StatusBadRequest
	case errors.Is(err, errCommandTooLong),
		errors.Is(err, errBodyTooLarge):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

// writeError writes err with its mapped status. Internal errors are logged
// and not echoed to the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		slog.Error("Request failed", "error", err, "path", r.URL.Path)
		Error(w, status, "internal error")
		return
	}
	Error(w, status, err.Error())
}

// decodeJSON reads a size-limited JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return errBodyTooLarge
		}
		return errBadRequest
	}
	return nil
}
