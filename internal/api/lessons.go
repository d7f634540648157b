package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/ashureev/shsh-lessons/internal/catalog"
	"github.com/ashureev/shsh-lessons/internal/domain"
	"github.com/ashureev/shsh-lessons/internal/identity"
	"github.com/go-chi/chi/v5"
)

type lessonSummary struct {
	ID            string          `json:"id"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	Category      domain.Category `json:"category"`
	CategoryLabel string          `json:"category_label"`
	ExerciseCount int             `json:"exercise_count"`
}

func summarize(l *domain.Lesson) lessonSummary {
	return lessonSummary{
		ID:            l.ID,
		Title:         l.Title,
		Description:   l.Description,
		Category:      l.Category,
		CategoryLabel: l.Category.Label(),
		ExerciseCount: len(l.Exercises),
	}
}

type lessonDetail struct {
	*domain.Lesson
	CategoryLabel string   `json:"category_label"`
	Paragraphs    []string `json:"paragraphs"`
	TheoryHTML    string   `json:"theory_html"`
}

// GetCatalog returns catalog metadata and dashboard statistics.
func (h *Handler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, struct {
		Name    string        `json:"name"`
		Version string        `json:"version"`
		Stats   catalog.Stats `json:"stats"`
	}{
		Name:    h.catalog.Name,
		Version: h.catalog.Version,
		Stats:   h.catalog.Stats(),
	})
}

// ListLessons returns lesson summaries, optionally filtered by ?category=.
func (h *Handler) ListLessons(w http.ResponseWriter, r *http.Request) {
	lessons := h.catalog.All()
	if c := r.URL.Query().Get("category"); c != "" {
		cat := domain.Category(c)
		if !cat.Valid() {
			writeError(w, r, fmt.Errorf("%w: %s", errUnknownCategory, c))
			return
		}
		lessons = h.catalog.ByCategory(cat)
	}

	out := make([]lessonSummary, 0, len(lessons))
	for _, l := range lessons {
		out = append(out, summarize(l))
	}
	JSON(w, http.StatusOK, out)
}

// GetLesson returns a full lesson with rendered theory.
func (h *Handler) GetLesson(w http.ResponseWriter, r *http.Request) {
	lesson, err := h.catalog.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	html, err := h.catalog.RenderTheory(lesson)
	if err != nil {
		writeError(w, r, err)
		return
	}

	JSON(w, http.StatusOK, lessonDetail{
		Lesson:        lesson,
		CategoryLabel: lesson.Category.Label(),
		Paragraphs:    lesson.Paragraphs(),
		TheoryHTML:    html,
	})
}

// OpenLesson starts a lesson session for the calling tab on the first
// exercise, replacing any session the tab had.
func (h *Handler) OpenLesson(w http.ResponseWriter, r *http.Request) {
	lesson, err := h.catalog.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	userID := identity.UserIDFromContext(r.Context())
	sessionID := identity.SessionIDFromContext(r.Context())
	s := h.sessions.Open(userID, sessionID, lesson)
	slog.Debug("Lesson opened over REST", "user_id", userID, "session_id", sessionID, "lesson_id", lesson.ID)

	JSON(w, http.StatusCreated, s.View())
}
