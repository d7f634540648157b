package terminal

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ashureev/shsh-lessons/internal/catalog"
	"github.com/ashureev/shsh-lessons/internal/domain"
	"github.com/ashureev/shsh-lessons/internal/identity"
	"github.com/ashureev/shsh-lessons/internal/playground"
	"github.com/ashureev/shsh-lessons/internal/store"
	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

type fakeRepo struct {
	mu      sync.Mutex
	users   map[string]*domain.User
	touches int
}

func (f *fakeRepo) touchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.touches
}

func (f *fakeRepo) GetUser(_ context.Context, userID string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeRepo) UpsertUser(_ context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *user
	f.users[user.UserID] = &cp
	return nil
}

func (f *fakeRepo) UpdateLastSeen(context.Context, string, time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.touches++
	return nil
}

func (f *fakeRepo) DeleteInactiveUsers(context.Context, time.Duration) (int64, error) {
	return 0, nil
}

func (f *fakeRepo) Ping(context.Context) error { return nil }
func (f *fakeRepo) Close() error               { return nil }

type harness struct {
	srv      *httptest.Server
	repo     *fakeRepo
	sessions *playground.Manager
	sm       *SessionManager
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	cat, err := catalog.Open("")
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	repo := &fakeRepo{users: make(map[string]*domain.User)}
	h := &harness{
		repo:     repo,
		sessions: playground.NewManager(nil),
		sm:       NewSessionManager(),
	}
	ws := NewWebSocketHandler(repo, cat, h.sessions, h.sm, []string{"*"}, 32, true)
	h.srv = httptest.NewServer(identity.Middleware(repo, true)(ws))
	t.Cleanup(h.srv.Close)
	return h
}

func (h *harness) dial(t *testing.T, tab string, cookies ...*http.Cookie) (*websocket.Conn, *http.Response) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	header := http.Header{identity.SessionHeaderName: []string{tab}}
	for _, c := range cookies {
		header.Add("Cookie", (&http.Cookie{Name: c.Name, Value: c.Value}).String())
	}
	url := "ws" + strings.TrimPrefix(h.srv.URL, "http")
	conn, resp, err := websocket.Dial(ctx, url, &websocket.DialOptions{HTTPHeader: header})
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close(websocket.StatusNormalClosure, "") })
	return conn, resp
}

func roundTrip(t *testing.T, conn *websocket.Conn, msg wsMessage) wsReply {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := wsjson.Write(ctx, conn, msg); err != nil {
		t.Fatalf("write %s: %v", msg.Type, err)
	}
	return readReply(t, conn)
}

func readReply(t *testing.T, conn *websocket.Conn) wsReply {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var reply wsReply
	if err := wsjson.Read(ctx, conn, &reply); err != nil {
		t.Fatalf("read: %v", err)
	}
	return reply
}

func intPtr(i int) *int { return &i }

func TestWebSocketPlaygroundFlow(t *testing.T) {
	h := newHarness(t)
	conn, _ := h.dial(t, "tab-1")

	if r := roundTrip(t, conn, wsMessage{Type: MsgPing}); r.Type != MsgPong {
		t.Fatalf("ping reply = %+v", r)
	}

	if r := roundTrip(t, conn, wsMessage{Type: MsgSubmit, Content: "pwd"}); r.Error != ErrCodeNoSession {
		t.Fatalf("submit without session = %+v", r)
	}

	r := roundTrip(t, conn, wsMessage{Type: MsgOpen, Lesson: "pwd"})
	if r.Type != MsgSnapshot || r.View == nil || r.View.LessonID != "pwd" || r.View.ExerciseIndex != 0 {
		t.Fatalf("open reply = %+v", r)
	}

	r = roundTrip(t, conn, wsMessage{Type: MsgSubmit, Content: "ls"})
	if r.View == nil || len(r.View.History) != 1 || r.View.Completed {
		t.Fatalf("wrong submission reply = %+v", r)
	}

	r = roundTrip(t, conn, wsMessage{Type: MsgSubmit, Content: "pwd"})
	if r.View == nil || !r.View.Completed || r.View.ProgressPercent != 50 {
		t.Fatalf("correct submission reply = %+v", r)
	}
	done := readReply(t, conn)
	if done.Type != MsgCompleted || done.Index == nil || *done.Index != 0 {
		t.Fatalf("completed reply = %+v", done)
	}

	if r := roundTrip(t, conn, wsMessage{Type: MsgRecall}); r.Type != MsgRecall || r.Content != "pwd" {
		t.Fatalf("recall reply = %+v", r)
	}

	if r := roundTrip(t, conn, wsMessage{Type: MsgSubmit, Content: "clear"}); r.View == nil || len(r.View.History) != 0 {
		t.Fatalf("clear reply = %+v", r)
	}

	r = roundTrip(t, conn, wsMessage{Type: MsgHint})
	if r.View == nil || !r.View.HintVisible || r.View.Hint == "" {
		t.Fatalf("hint reply = %+v", r)
	}

	r = roundTrip(t, conn, wsMessage{Type: MsgSelect, Index: intPtr(1)})
	if r.View == nil || r.View.ExerciseIndex != 1 || r.View.Completed || r.View.HintVisible {
		t.Fatalf("select reply = %+v", r)
	}
	if len(r.View.CompletedExercises) != 1 {
		t.Errorf("progress lost on select: %+v", r.View.CompletedExercises)
	}
}

func TestWebSocketErrors(t *testing.T) {
	h := newHarness(t)
	conn, _ := h.dial(t, "tab-1")

	tests := []struct {
		name string
		msg  wsMessage
		want string
	}{
		{"unknown lesson", wsMessage{Type: MsgOpen, Lesson: "grep"}, ErrCodeUnknownLesson},
		{"no session", wsMessage{Type: MsgHint}, ErrCodeNoSession},
	}
	for _, tt := range tests {
		if r := roundTrip(t, conn, tt.msg); r.Type != MsgError || r.Error != tt.want {
			t.Errorf("%s: reply = %+v, want %s", tt.name, r, tt.want)
		}
	}

	roundTrip(t, conn, wsMessage{Type: MsgOpen, Lesson: "ls"})

	tests = []struct {
		name string
		msg  wsMessage
		want string
	}{
		{"out of range", wsMessage{Type: MsgSelect, Index: intPtr(3)}, ErrCodeOutOfRange},
		{"negative index", wsMessage{Type: MsgSelect, Index: intPtr(-1)}, ErrCodeOutOfRange},
		{"missing index", wsMessage{Type: MsgSelect}, ErrCodeBadRequest},
		{"too long", wsMessage{Type: MsgSubmit, Content: strings.Repeat("a", 33)}, ErrCodeCommandTooLong},
		{"unknown type", wsMessage{Type: "resize"}, ErrCodeUnknownType},
	}
	for _, tt := range tests {
		if r := roundTrip(t, conn, tt.msg); r.Type != MsgError || r.Error != tt.want {
			t.Errorf("%s: reply = %+v, want %s", tt.name, r, tt.want)
		}
	}
}

func TestWebSocketResumesOpenSession(t *testing.T) {
	h := newHarness(t)
	first, resp := h.dial(t, "tab-1")
	roundTrip(t, first, wsMessage{Type: MsgOpen, Lesson: "cat"})
	roundTrip(t, first, wsMessage{Type: MsgSubmit, Content: "cat notes.txt"})
	_ = first.Close(websocket.StatusNormalClosure, "")

	second, _ := h.dial(t, "tab-1", resp.Cookies()...)
	r := readReply(t, second)
	if r.Type != MsgSnapshot || r.View == nil || r.View.LessonID != "cat" {
		t.Fatalf("resume reply = %+v", r)
	}
	if len(r.View.History) != 1 {
		t.Errorf("history = %d entries, want 1", len(r.View.History))
	}
}

func TestCloseTabClosesSocket(t *testing.T) {
	h := newHarness(t)
	conn, _ := h.dial(t, "tab-1")
	roundTrip(t, conn, wsMessage{Type: MsgPing})

	if h.sm.Count() != 1 {
		t.Fatalf("registered sockets = %d, want 1", h.sm.Count())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	readErr := make(chan error, 1)
	go func() {
		_, _, err := conn.Read(ctx)
		readErr <- err
	}()

	for _, userID := range h.users() {
		h.sm.CloseTab(userID, "tab-1", "lesson session closed")
	}

	if err := <-readErr; err == nil {
		t.Fatal("expected read error after CloseTab")
	}
	if h.sm.Count() != 0 {
		t.Errorf("registered sockets = %d, want 0", h.sm.Count())
	}
}

func (h *harness) users() []string {
	h.sm.mu.RLock()
	defer h.sm.mu.RUnlock()
	var ids []string
	for id := range h.sm.active {
		ids = append(ids, id)
	}
	return ids
}

func TestLastSeenThrottle(t *testing.T) {
	th := &lastSeenThrottle{every: time.Minute}
	now := time.Now()

	tests := []struct {
		name string
		typ  string
		at   time.Time
		want bool
	}{
		{"typing never writes", MsgTyping, now, false},
		{"ping never writes", MsgPing, now, false},
		{"first submit writes", MsgSubmit, now, true},
		{"second submit within window", MsgSubmit, now.Add(30 * time.Second), false},
		{"hint within window", MsgHint, now.Add(59 * time.Second), false},
		{"submit after window", MsgSubmit, now.Add(time.Minute), true},
	}
	for _, tt := range tests {
		if got := th.due(tt.typ, tt.at); got != tt.want {
			t.Errorf("%s: due = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestWebSocketThrottlesLastSeen(t *testing.T) {
	h := newHarness(t)
	conn, _ := h.dial(t, "tab-1")

	roundTrip(t, conn, wsMessage{Type: MsgOpen, Lesson: "ls"})
	for i := 0; i < 5; i++ {
		roundTrip(t, conn, wsMessage{Type: MsgSubmit, Content: "ls"})
		roundTrip(t, conn, wsMessage{Type: MsgPing})
	}

	// Let the asynchronous write land.
	time.Sleep(100 * time.Millisecond)
	if got := h.repo.touchCount(); got != 1 {
		t.Errorf("UpdateLastSeen calls = %d, want 1", got)
	}
}
