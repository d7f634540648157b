// Package playground implements the practice terminal: the per-exercise
// controller, lesson sessions built around it, and their lifecycle.
package playground

import (
	"strings"

	"github.com/ashureev/shsh-lessons/internal/domain"
	"github.com/ashureev/shsh-lessons/internal/simulator"
)

// State is the controller's position in the submission cycle.
type State int

const (
	// StateIdle means nothing has been typed since the exercise started.
	StateIdle State = iota
	// StateAwaitingSubmission means the learner is typing.
	StateAwaitingSubmission
	// StateDispatched is held while a submission is simulated and evaluated.
	StateDispatched
	// StateCleared is held while the history is wiped by "clear".
	StateCleared
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingSubmission:
		return "awaiting_submission"
	case StateDispatched:
		return "dispatched"
	case StateCleared:
		return "cleared"
	default:
		return "unknown"
	}
}

// Outcome describes what a single Submit did.
type Outcome struct {
	// Entry is the history entry appended by the submission, if any.
	Entry *domain.HistoryEntry
	// Cleared is set when the input was "clear".
	Cleared bool
	// Ignored is set for blank input or when no exercise is active.
	Ignored bool
	// Completed is set only on the submission that completed the exercise.
	Completed bool
}

// Snapshot is a read-only copy of the controller state for rendering.
type Snapshot struct {
	State       State
	Exercise    *domain.Exercise
	History     []domain.HistoryEntry
	HintVisible bool
	Completed   bool
}

// Controller drives one exercise session. It is not safe for concurrent
// use; callers serialize access.
type Controller struct {
	exercise    *domain.Exercise
	history     History
	hintVisible bool
	completed   bool
	state       State
	onComplete  func()
}

// NewController returns a controller with no active exercise. onComplete
// is called at most once per exercise session, after the matching entry
// has been appended to the history.
func NewController(onComplete func()) *Controller {
	return &Controller{onComplete: onComplete}
}

// SetExercise makes ex the active exercise and starts a fresh session.
func (c *Controller) SetExercise(ex *domain.Exercise) {
	c.exercise = ex
	c.reinit()
}

// Reset starts a fresh session for the current exercise.
func (c *Controller) Reset() {
	c.reinit()
}

func (c *Controller) reinit() {
	c.history.Clear()
	c.hintVisible = false
	c.completed = false
	c.state = StateIdle
}

// Typing notes that the learner started entering a command.
func (c *Controller) Typing() {
	if c.state == StateIdle {
		c.state = StateAwaitingSubmission
	}
}

// Submit simulates raw, logs it and checks it against the solution.
func (c *Controller) Submit(raw string) Outcome {
	if c.exercise == nil {
		return Outcome{Ignored: true}
	}
	c.state = StateAwaitingSubmission
	if strings.TrimSpace(raw) == "" {
		return Outcome{Ignored: true}
	}

	c.state = StateDispatched
	res := simulator.Simulate(raw)
	if res.Clear {
		c.state = StateCleared
		c.history.Clear()
		c.state = StateAwaitingSubmission
		return Outcome{Cleared: true}
	}

	matched := Evaluate(raw, *c.exercise)
	entry := domain.HistoryEntry{Command: raw, Output: res.Output, Matched: &matched}
	c.history.Append(entry)

	out := Outcome{Entry: &entry}
	if matched && !c.completed {
		c.completed = true
		out.Completed = true
		if c.onComplete != nil {
			c.onComplete()
		}
	}
	c.state = StateAwaitingSubmission
	return out
}

// ToggleHint flips hint visibility and returns the new value.
func (c *Controller) ToggleHint() bool {
	c.hintVisible = !c.hintVisible
	return c.hintVisible
}

// RecallPrevious returns the command of the most recent entry, or "".
// It is a single-level recall, not a history cursor.
func (c *Controller) RecallPrevious() string {
	if last, ok := c.history.Last(); ok {
		return last.Command
	}
	return ""
}

// State returns the current submission state.
func (c *Controller) State() State {
	return c.state
}

// Completed reports whether the exercise was solved in this session.
func (c *Controller) Completed() bool {
	return c.completed
}

// Snapshot copies the state needed by the presentation layer.
func (c *Controller) Snapshot() Snapshot {
	return Snapshot{
		State:       c.state,
		Exercise:    c.exercise,
		History:     c.history.Entries(),
		HintVisible: c.hintVisible,
		Completed:   c.completed,
	}
}
