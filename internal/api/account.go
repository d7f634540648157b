package api

import (
	"errors"
	"net/http"

	"github.com/ashureev/shsh-lessons/internal/identity"
	"github.com/ashureev/shsh-lessons/internal/store"
)

// GetMe returns the current learner's information.
func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())
	if userID == "" {
		Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := h.repo.GetUser(r.Context(), userID)
	if errors.Is(err, store.ErrUserNotFound) {
		Error(w, http.StatusUnauthorized, "user not found")
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}

	sessionID := identity.SessionIDFromContext(r.Context())
	_, sessErr := h.sessions.Get(userID, sessionID)

	JSON(w, http.StatusOK, map[string]interface{}{
		"user_id":      user.UserID,
		"username":     user.Username,
		"session_id":   sessionID,
		"lesson_open":  sessErr == nil,
		"member_since": user.CreatedAt.UTC(),
		"last_seen":    user.LastSeenAt.UTC(),
	})
}

// GetConfig returns the settings the frontend needs.
func (h *Handler) GetConfig(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, map[string]interface{}{
		"max_command_length":  h.cfg.MaxCommandLength,
		"session_ttl_seconds": int64(h.cfg.SessionTTL.Seconds()),
		"catalog":             h.catalog.Name,
		"catalog_version":     h.catalog.Version,
	})
}
