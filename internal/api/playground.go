package api

import (
	"fmt"
	"net/http"

	"github.com/ashureev/shsh-lessons/internal/domain"
	"github.com/ashureev/shsh-lessons/internal/identity"
	"github.com/ashureev/shsh-lessons/internal/playground"
)

type selectRequest struct {
	Index *int `json:"index"`
}

type submitRequest struct {
	Command *string `json:"command"`
}

type submitResponse struct {
	Entry     *domain.HistoryEntry `json:"entry,omitempty"`
	Cleared   bool                 `json:"cleared"`
	Ignored   bool                 `json:"ignored"`
	Completed bool                 `json:"completed"`
	View      playground.View      `json:"view"`
}

// session returns the lesson session of the calling tab.
func (h *Handler) session(r *http.Request) (*playground.LessonSession, error) {
	userID := identity.UserIDFromContext(r.Context())
	sessionID := identity.SessionIDFromContext(r.Context())
	return h.sessions.Get(userID, sessionID)
}

// GetPlayground returns the current playground snapshot.
func (h *Handler) GetPlayground(w http.ResponseWriter, r *http.Request) {
	s, err := h.session(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	JSON(w, http.StatusOK, s.View())
}

// SelectExercise switches the active exercise.
func (h *Handler) SelectExercise(w http.ResponseWriter, r *http.Request) {
	s, err := h.session(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req selectRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Index == nil {
		writeError(w, r, fmt.Errorf("%w: index is required", errBadRequest))
		return
	}

	view, err := s.SelectExercise(*req.Index)
	if err != nil {
		writeError(w, r, err)
		return
	}
	JSON(w, http.StatusOK, view)
}

// Submit sends one line of terminal input to the playground.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	s, err := h.session(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req submitRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Command == nil {
		writeError(w, r, fmt.Errorf("%w: command is required", errBadRequest))
		return
	}
	if len(*req.Command) > h.cfg.MaxCommandLength {
		writeError(w, r, fmt.Errorf("%w: limit is %d bytes", errCommandTooLong, h.cfg.MaxCommandLength))
		return
	}

	out, view := s.Submit(*req.Command)
	JSON(w, http.StatusOK, submitResponse{
		Entry:     out.Entry,
		Cleared:   out.Cleared,
		Ignored:   out.Ignored,
		Completed: out.Completed,
		View:      view,
	})
}

// ToggleHint shows or hides the hint of the active exercise.
func (h *Handler) ToggleHint(w http.ResponseWriter, r *http.Request) {
	s, err := h.session(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	JSON(w, http.StatusOK, s.ToggleHint())
}

// Reset clears the terminal of the active exercise.
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	s, err := h.session(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	JSON(w, http.StatusOK, s.Reset())
}

// Recall returns the previously submitted command.
func (h *Handler) Recall(w http.ResponseWriter, r *http.Request) {
	s, err := h.session(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	JSON(w, http.StatusOK, map[string]string{"command": s.Recall()})
}

// ClosePlayground discards the tab's lesson session and closes its socket.
func (h *Handler) ClosePlayground(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())
	sessionID := identity.SessionIDFromContext(r.Context())

	if !h.sessions.Close(userID, sessionID) {
		writeError(w, r, playground.ErrNoSession)
		return
	}
	h.sm.CloseTab(userID, sessionID, "lesson session closed")
	JSON(w, http.StatusOK, map[string]string{"status": "closed"})
}
