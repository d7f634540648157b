package playground

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ashureev/shsh-lessons/internal/domain"
	"github.com/google/uuid"
)

var (
	// ErrNoSession is returned when no lesson is open for a learner tab.
	ErrNoSession = errors.New("no open lesson session")
	// ErrExerciseOutOfRange is returned when an exercise index does not
	// exist in the open lesson.
	ErrExerciseOutOfRange = errors.New("exercise index out of range")
)

// Observer receives playground events, typically to feed metrics.
type Observer interface {
	SubmissionRecorded(lessonID string, out Outcome)
	ExerciseCompleted(lessonID string, index int)
	ActiveSessions(n int)
}

type nopObserver struct{}

func (nopObserver) SubmissionRecorded(string, Outcome) {}
func (nopObserver) ExerciseCompleted(string, int)      {}
func (nopObserver) ActiveSessions(int)                 {}

// View is the renderable state of a lesson session.
type View struct {
	SessionID          string                `json:"session_id"`
	LessonID           string                `json:"lesson_id"`
	ExerciseIndex      int                   `json:"exercise_index"`
	ExerciseCount      int                   `json:"exercise_count"`
	Task               string                `json:"task"`
	Hint               string                `json:"hint,omitempty"`
	HintVisible        bool                  `json:"hint_visible"`
	State              string                `json:"state"`
	History            []domain.HistoryEntry `json:"history"`
	Completed          bool                  `json:"completed"`
	CompletedExercises []int                 `json:"completed_exercises"`
	ProgressPercent    int                   `json:"progress_percent"`
}

// LessonSession is one learner tab working through one lesson. The active
// exercise may be changed freely; completion order is not enforced.
type LessonSession struct {
	ID       string
	UserID   string
	TabID    string
	Lesson   *domain.Lesson
	observer Observer

	mu         sync.Mutex
	current    int
	progress   *Progress
	ctrl       *Controller
	lastActive time.Time
}

func newLessonSession(userID, tabID string, lesson *domain.Lesson, obs Observer) *LessonSession {
	if obs == nil {
		obs = nopObserver{}
	}
	s := &LessonSession{
		ID:         uuid.NewString(),
		UserID:     userID,
		TabID:      tabID,
		Lesson:     lesson,
		observer:   obs,
		progress:   NewProgress(),
		lastActive: time.Now(),
	}
	s.ctrl = NewController(s.exerciseCompleted)
	if ex, ok := lesson.Exercise(0); ok {
		s.ctrl.SetExercise(&ex)
	}
	return s
}

// exerciseCompleted runs inside Submit with s.mu held. Re-solving an
// exercise after a reset or switch does not count again.
func (s *LessonSession) exerciseCompleted() {
	if !s.progress.Mark(s.current) {
		return
	}
	slog.Info("Exercise completed",
		"user_id", s.UserID,
		"session_id", s.TabID,
		"lesson_id", s.Lesson.ID,
		"exercise", s.current)
	s.observer.ExerciseCompleted(s.Lesson.ID, s.current)
}

// SelectExercise switches to the exercise at index and resets the terminal.
// Selecting the active exercise again leaves its terminal untouched.
func (s *LessonSession) SelectExercise(index int) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ex, ok := s.Lesson.Exercise(index)
	if !ok {
		return View{}, fmt.Errorf("%w: %d of %d", ErrExerciseOutOfRange, index, len(s.Lesson.Exercises))
	}
	if index == s.current {
		s.touch()
		return s.viewLocked(), nil
	}
	s.current = index
	s.ctrl.SetExercise(&ex)
	s.touch()
	return s.viewLocked(), nil
}

// Submit forwards raw terminal input to the controller.
func (s *LessonSession) Submit(raw string) (Outcome, View) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.ctrl.Submit(raw)
	s.observer.SubmissionRecorded(s.Lesson.ID, out)
	s.touch()
	return out, s.viewLocked()
}

// ToggleHint flips hint visibility for the active exercise.
func (s *LessonSession) ToggleHint() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ctrl.ToggleHint()
	s.touch()
	return s.viewLocked()
}

// Reset clears the terminal, hides the hint and re-arms completion for the
// active exercise. Lesson progress is kept.
func (s *LessonSession) Reset() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ctrl.Reset()
	s.touch()
	return s.viewLocked()
}

// Recall returns the previous command for arrow-up recall.
func (s *LessonSession) Recall() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.touch()
	return s.ctrl.RecallPrevious()
}

// Typing marks the learner as typing.
func (s *LessonSession) Typing() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ctrl.Typing()
	s.touch()
}

// View returns the current renderable state.
func (s *LessonSession) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

// LastActive returns the time of the last learner interaction.
func (s *LessonSession) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

func (s *LessonSession) touch() {
	s.lastActive = time.Now()
}

func (s *LessonSession) viewLocked() View {
	snap := s.ctrl.Snapshot()
	v := View{
		SessionID:          s.ID,
		LessonID:           s.Lesson.ID,
		ExerciseIndex:      s.current,
		ExerciseCount:      len(s.Lesson.Exercises),
		HintVisible:        snap.HintVisible,
		State:              snap.State.String(),
		History:            snap.History,
		Completed:          snap.Completed,
		CompletedExercises: s.progress.Completed(),
		ProgressPercent:    s.progress.Percent(len(s.Lesson.Exercises)),
	}
	if snap.Exercise != nil {
		v.Task = snap.Exercise.Task
		if snap.HintVisible {
			v.Hint = snap.Exercise.Hint
		}
	}
	return v
}
