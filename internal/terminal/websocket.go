package terminal

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/ashureev/shsh-lessons/internal/catalog"
	"github.com/ashureev/shsh-lessons/internal/identity"
	"github.com/ashureev/shsh-lessons/internal/playground"
	"github.com/ashureev/shsh-lessons/internal/store"
	"github.com/coder/websocket"
)

// Client message types.
const (
	MsgOpen   = "open"
	MsgSubmit = "submit"
	MsgSelect = "select"
	MsgHint   = "hint"
	MsgReset  = "reset"
	MsgRecall = "recall"
	MsgTyping = "typing"
	MsgPing   = "ping"
)

// Server message types.
const (
	MsgSnapshot  = "snapshot"
	MsgCompleted = "completed"
	MsgPong      = "pong"
	MsgError     = "error"
)

// Error codes sent in error replies.
const (
	ErrCodeNoSession      = "no_session"
	ErrCodeUnknownLesson  = "unknown_lesson"
	ErrCodeBadRequest     = "bad_request"
	ErrCodeOutOfRange     = "exercise_out_of_range"
	ErrCodeCommandTooLong = "command_too_long"
	ErrCodeUnknownType    = "unknown_message_type"
)

// WebSocketHandler serves the playground terminal channel.
type WebSocketHandler struct {
	repo             store.Repository
	catalog          *catalog.Catalog
	sessions         *playground.Manager
	sm               *SessionManager
	allowedOrigins   []string
	maxCommandLength int
	isDev            bool
}

// NewWebSocketHandler creates a new WebSocket handler.
func NewWebSocketHandler(
	repo store.Repository,
	cat *catalog.Catalog,
	sessions *playground.Manager,
	sm *SessionManager,
	allowedOrigins []string,
	maxCommandLength int,
	isDev bool,
) *WebSocketHandler {
	return &WebSocketHandler{
		repo:             repo,
		catalog:          cat,
		sessions:         sessions,
		sm:               sm,
		allowedOrigins:   allowedOrigins,
		maxCommandLength: maxCommandLength,
		isDev:            isDev,
	}
}

// wsMessage is a client message.
type wsMessage struct {
	Type    string `json:"type"`
	Content string `json:"content,omitempty"`
	Index   *int   `json:"index,omitempty"`
	Lesson  string `json:"lesson,omitempty"`
}

// wsReply is a server message.
type wsReply struct {
	Type    string           `json:"type"`
	Content string           `json:"content,omitempty"`
	Index   *int             `json:"index,omitempty"`
	Error   string           `json:"error,omitempty"`
	View    *playground.View `json:"view,omitempty"`
}

// ServeHTTP implements http.Handler for WebSocket upgrade.
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())
	sessionID := identity.SessionIDFromContext(r.Context())
	slog.Info("WebSocket connection request", "user_id", userID, "session_id", sessionID, "ip", identity.IPFromRequest(r))

	if !h.checkOrigin(r) {
		http.Error(w, "origin not allowed", http.StatusForbidden)
		return
	}

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("Failed to accept WebSocket", "error", err, "user_id", userID)
		return
	}
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "session ended"); closeErr != nil {
			slog.Debug("Failed to close websocket", "error", closeErr, "user_id", userID)
		}
	}()
	ws.SetReadLimit(int64(h.maxCommandLength) + 4096)

	h.sm.Register(userID, sessionID, ws)
	defer h.sm.Unregister(userID, sessionID, ws)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Resume an already open lesson session.
	if s, err := h.sessions.Get(userID, sessionID); err == nil {
		view := s.View()
		if err := h.writeJSON(ctx, ws, wsReply{Type: MsgSnapshot, View: &view}); err != nil {
			slog.Debug("Failed to send initial snapshot", "error", err)
			return
		}
	}

	h.inputLoop(ctx, ws, userID, sessionID)
	slog.Info("Playground socket ended", "user_id", userID, "session_id", sessionID)
}

func (h *WebSocketHandler) checkOrigin(r *http.Request) bool {
	if h.isDev {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range h.allowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	slog.Warn("WebSocket origin rejected", "origin", origin, "allowed", h.allowedOrigins)
	return false
}

func (h *WebSocketHandler) inputLoop(ctx context.Context, ws *websocket.Conn, userID, sessionID string) {
	slog.Debug("Starting input loop", "user_id", userID)
	seen := &lastSeenThrottle{every: identity.LastSeenResolution}
	for {
		_, message, err := ws.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				slog.Debug("WebSocket closed by client", "user_id", userID)
			} else if ctx.Err() == nil {
				slog.Warn("WebSocket read error", "error", err, "user_id", userID)
			}
			return
		}

		var msg wsMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			if err := h.writeJSON(ctx, ws, errorReply(ErrCodeBadRequest)); err != nil {
				return
			}
			continue
		}

		for _, reply := range h.dispatch(userID, sessionID, msg) {
			if err := h.writeJSON(ctx, ws, reply); err != nil {
				slog.Debug("WebSocket write error", "error", err, "user_id", userID)
				return
			}
		}

		if !seen.due(msg.Type, time.Now()) {
			continue
		}

		// Update last seen asynchronously with timeout.
		go func() {
			updateCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := h.repo.UpdateLastSeen(updateCtx, userID, time.Now()); err != nil {
				slog.Warn("Failed to update last seen", "error", err, "user_id", userID)
			}
		}()
	}
}

// lastSeenThrottle limits last_seen_at writes from one socket. Keystroke
// and keepalive messages never write.
type lastSeenThrottle struct {
	every time.Duration
	last  time.Time
}

func (t *lastSeenThrottle) due(msgType string, now time.Time) bool {
	if msgType == MsgTyping || msgType == MsgPing {
		return false
	}
	if !t.last.IsZero() && now.Sub(t.last) < t.every {
		return false
	}
	t.last = now
	return true
}

// dispatch applies one client message and returns the replies to send.
func (h *WebSocketHandler) dispatch(userID, sessionID string, msg wsMessage) []wsReply {
	switch msg.Type {
	case MsgPing:
		return []wsReply{{Type: MsgPong}}
	case MsgOpen:
		lesson, err := h.catalog.Get(msg.Lesson)
		if err != nil {
			return []wsReply{errorReply(ErrCodeUnknownLesson)}
		}
		view := h.sessions.Open(userID, sessionID, lesson).View()
		return []wsReply{{Type: MsgSnapshot, View: &view}}
	}

	s, err := h.sessions.Get(userID, sessionID)
	if err != nil {
		return []wsReply{errorReply(ErrCodeNoSession)}
	}

	switch msg.Type {
	case MsgSubmit:
		if len(msg.Content) > h.maxCommandLength {
			return []wsReply{errorReply(ErrCodeCommandTooLong)}
		}
		out, view := s.Submit(msg.Content)
		replies := []wsReply{{Type: MsgSnapshot, View: &view}}
		if out.Completed {
			idx := view.ExerciseIndex
			replies = append(replies, wsReply{Type: MsgCompleted, Index: &idx})
		}
		return replies
	case MsgSelect:
		if msg.Index == nil {
			return []wsReply{errorReply(ErrCodeBadRequest)}
		}
		view, err := s.SelectExercise(*msg.Index)
		if errors.Is(err, playground.ErrExerciseOutOfRange) {
			return []wsReply{errorReply(ErrCodeOutOfRange)}
		}
		return []wsReply{{Type: MsgSnapshot, View: &view}}
	case MsgHint:
		view := s.ToggleHint()
		return []wsReply{{Type: MsgSnapshot, View: &view}}
	case MsgReset:
		view := s.Reset()
		return []wsReply{{Type: MsgSnapshot, View: &view}}
	case MsgRecall:
		return []wsReply{{Type: MsgRecall, Content: s.Recall()}}
	case MsgTyping:
		s.Typing()
		return nil
	default:
		return []wsReply{errorReply(ErrCodeUnknownType)}
	}
}

func errorReply(code string) wsReply {
	return wsReply{Type: MsgError, Error: code}
}

func (h *WebSocketHandler) writeJSON(ctx context.Context, ws *websocket.Conn, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return ws.Write(writeCtx, websocket.MessageText, data)
}
