package domain

import "strings"

// Category groups lessons on the dashboard and in the sidebar.
type Category string

const (
	CategoryBasics         Category = "basics"
	CategoryFileOperations Category = "file-operations"
	CategoryPermissions    Category = "permissions"
	CategoryAdvanced       Category = "advanced"
)

// Categories lists every category in sidebar order.
var Categories = []Category{
	CategoryBasics,
	CategoryFileOperations,
	CategoryPermissions,
	CategoryAdvanced,
}

var categoryLabels = map[Category]string{
	CategoryBasics:         "Basics",
	CategoryFileOperations: "File Operations",
	CategoryPermissions:    "Permissions",
	CategoryAdvanced:       "Advanced",
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	_, ok := categoryLabels[c]
	return ok
}

// Label returns the human readable name of the category.
func (c Category) Label() string {
	if label, ok := categoryLabels[c]; ok {
		return label
	}
	return strings.ReplaceAll(string(c), "-", " ")
}

// Example is a worked command shown alongside the theory.
type Example struct {
	Command     string `json:"command"`
	Description string `json:"description"`
	Output      string `json:"output,omitempty"`
}

// Exercise is a single practice task. Exercises have no identifier of their
// own and are addressed by their index within the owning lesson.
type Exercise struct {
	Task     string `json:"task"`
	Hint     string `json:"hint"`
	Solution string `json:"-"`
}

// Lesson is an immutable catalog entry.
type Lesson struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Category    Category   `json:"category"`
	Theory      string     `json:"theory"`
	Syntax      string     `json:"syntax"`
	Examples    []Example  `json:"examples"`
	Exercises   []Exercise `json:"exercises"`
}

// Paragraphs splits the theory text on blank lines.
func (l *Lesson) Paragraphs() []string {
	parts := strings.Split(strings.TrimSpace(l.Theory), "\n\n")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Exercise returns the exercise at index i.
func (l *Lesson) Exercise(i int) (Exercise, bool) {
	if i < 0 || i >= len(l.Exercises) {
		return Exercise{}, false
	}
	return l.Exercises[i], true
}

// HistoryEntry is one line of the playground terminal log.
// Matched is nil when the submission was not evaluated.
type HistoryEntry struct {
	Command string `json:"command"`
	Output  string `json:"output"`
	Matched *bool  `json:"matched,omitempty"`
}
