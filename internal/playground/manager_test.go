package playground

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"
)

func TestManagerOpenGet(t *testing.T) {
	obs := &recordingObserver{}
	m := NewManager(obs)

	s := m.Open("user-1", "tab-1", testLesson())
	got, err := m.Get("user-1", "tab-1")
	if err != nil || got != s {
		t.Fatalf("Get() = %v, %v", got, err)
	}
	if obs.active != 1 {
		t.Errorf("active sessions = %d", obs.active)
	}
	if _, err := m.Get("user-1", "tab-2"); !errors.Is(err, ErrNoSession) {
		t.Errorf("expected ErrNoSession, got %v", err)
	}
}

func TestManagerOpenReplacesTabSession(t *testing.T) {
	m := NewManager(nil)
	first := m.Open("user-1", "tab-1", testLesson())
	first.Submit("pwd")

	second := m.Open("user-1", "tab-1", testLesson())
	if second == first {
		t.Fatal("expected a new session")
	}
	got, _ := m.Get("user-1", "tab-1")
	if got != second || len(got.View().History) != 0 {
		t.Error("reopening must start from a fresh session")
	}
	if m.Count() != 1 {
		t.Errorf("Count() = %d", m.Count())
	}
}

func TestManagerCloseKeepsOtherTabs(t *testing.T) {
	m := NewManager(nil)
	m.Open("user-1", "tab-1", testLesson())
	m.Open("user-1", "tab-2", testLesson())

	if !m.Close("user-1", "tab-1") {
		t.Fatal("Close returned false")
	}
	if m.Close("user-1", "tab-1") {
		t.Error("second Close should report nothing closed")
	}
	if _, err := m.Get("user-1", "tab-2"); err != nil {
		t.Errorf("other tab should remain open: %v", err)
	}
}

func TestManagerCloseUser(t *testing.T) {
	m := NewManager(nil)
	m.Open("user-1", "tab-1", testLesson())
	m.Open("user-1", "tab-2", testLesson())
	m.Open("user-2", "tab-1", testLesson())

	if n := m.CloseUser("user-1"); n != 2 {
		t.Errorf("CloseUser closed %d sessions, want 2", n)
	}
	if m.Count() != 1 {
		t.Errorf("Count() = %d, want 1", m.Count())
	}
}

func TestManagerSweep(t *testing.T) {
	m := NewManager(nil)
	m.Open("user-1", "tab-1", testLesson())
	m.Open("user-2", "tab-1", testLesson())

	if expired := m.Sweep(time.Now(), time.Hour); len(expired) != 0 {
		t.Fatalf("fresh sessions swept: %v", expired)
	}
	expired := m.Sweep(time.Now().Add(2*time.Hour), time.Hour)
	if len(expired) != 2 {
		t.Fatalf("expected 2 expired sessions, got %v", expired)
	}
	if m.Count() != 0 {
		t.Errorf("Count() = %d after sweep", m.Count())
	}
}

func TestManagerConcurrentAccess(t *testing.T) {
	m := NewManager(nil)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tab := "tab-" + strconv.Itoa(i%5)
			s := m.Open("user", tab, testLesson())
			s.Submit("pwd")
			if got, err := m.Get("user", tab); err == nil {
				got.View()
			}
		}(i)
	}
	wg.Wait()
	if m.Count() != 5 {
		t.Errorf("Count() = %d, want 5", m.Count())
	}
}

type fakePruner struct {
	mu    sync.Mutex
	calls int
}

func (p *fakePruner) DeleteInactiveUsers(context.Context, time.Duration) (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	return 1, nil
}

func TestSweepEvictsAndPrunes(t *testing.T) {
	m := NewManager(nil)
	m.Open("user-1", "tab-1", testLesson())

	var cleaned []SessionKey
	pruner := &fakePruner{}
	cfg := TTLConfig{Interval: time.Minute, SessionTTL: -time.Second, UserRetention: time.Hour}
	sweep(context.Background(), m, pruner, cfg, func(userID, tabID string) {
		cleaned = append(cleaned, SessionKey{UserID: userID, TabID: tabID})
	})

	if len(cleaned) != 1 || cleaned[0].UserID != "user-1" {
		t.Errorf("cleanup callback got %v", cleaned)
	}
	if pruner.calls != 1 {
		t.Errorf("pruner called %d times", pruner.calls)
	}
}

func TestStartTTLWorkerStopsOnCancel(t *testing.T) {
	m := NewManager(nil)
	m.Open("user-1", "tab-1", testLesson())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan SessionKey, 1)
	StartTTLWorker(ctx, m, nil, TTLConfig{Interval: 10 * time.Millisecond, SessionTTL: -time.Second}, func(userID, tabID string) {
		select {
		case done <- SessionKey{UserID: userID, TabID: tabID}:
		default:
		}
	})
	defer cancel()

	select {
	case k := <-done:
		if k.TabID != "tab-1" {
			t.Errorf("unexpected key %v", k)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("TTL worker did not evict the idle session")
	}
}
