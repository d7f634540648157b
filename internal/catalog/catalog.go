// Package catalog loads the immutable lesson catalog.
package catalog

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/ashureev/shsh-lessons/internal/domain"
)

var (
	// ErrLessonNotFound is returned for unknown lesson ids.
	ErrLessonNotFound = errors.New("lesson not found")
	// ErrInvalidLesson is returned when lesson content fails validation.
	ErrInvalidLesson = errors.New("invalid lesson")
)

// Catalog is the ordered, read-only set of lessons. It is safe for
// concurrent use once loaded.
type Catalog struct {
	Name    string
	Version string
	lessons []*domain.Lesson
	byID    map[string]*domain.Lesson
	theory  *theoryCache
}

// Load reads catalog.yaml and every lesson it lists from fsys.
func Load(fsys fs.FS) (*Catalog, error) {
	idx, err := loadIndex(fsys)
	if err != nil {
		return nil, err
	}

	c := &Catalog{
		Name:    idx.Name,
		Version: idx.Version,
		lessons: make([]*domain.Lesson, 0, len(idx.Lessons)),
		byID:    make(map[string]*domain.Lesson, len(idx.Lessons)),
		theory:  newTheoryCache(),
	}
	for _, id := range idx.Lessons {
		if _, dup := c.byID[id]; dup {
			return nil, fmt.Errorf("%w: duplicate id %q", ErrInvalidLesson, id)
		}
		lesson, err := loadLesson(fsys, id)
		if err != nil {
			return nil, fmt.Errorf("load lesson %s: %w", id, err)
		}
		c.lessons = append(c.lessons, lesson)
		c.byID[id] = lesson
	}
	return c, nil
}

// All returns every lesson in catalog order.
func (c *Catalog) All() []*domain.Lesson {
	out := make([]*domain.Lesson, len(c.lessons))
	copy(out, c.lessons)
	return out
}

// Get returns a lesson by id.
func (c *Catalog) Get(id string) (*domain.Lesson, error) {
	l, ok := c.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLessonNotFound, id)
	}
	return l, nil
}

// ByCategory returns the lessons of one category in catalog order.
func (c *Catalog) ByCategory(cat domain.Category) []*domain.Lesson {
	var out []*domain.Lesson
	for _, l := range c.lessons {
		if l.Category == cat {
			out = append(out, l)
		}
	}
	return out
}

// CategoryStats summarises one category.
type CategoryStats struct {
	Category domain.Category `json:"category"`
	Label    string          `json:"label"`
	Lessons  int             `json:"lessons"`
}

// Stats summarises the catalog for the dashboard.
type Stats struct {
	Lessons    int             `json:"lessons"`
	Exercises  int             `json:"exercises"`
	Examples   int             `json:"examples"`
	Categories []CategoryStats `json:"categories"`
}

// Stats counts lessons, exercises and examples. Every known category is
// listed, including empty ones.
func (c *Catalog) Stats() Stats {
	st := Stats{Lessons: len(c.lessons)}
	counts := make(map[domain.Category]int)
	for _, l := range c.lessons {
		st.Exercises += len(l.Exercises)
		st.Examples += len(l.Examples)
		counts[l.Category]++
	}
	for _, cat := range domain.Categories {
		st.Categories = append(st.Categories, CategoryStats{
			Category: cat,
			Label:    cat.Label(),
			Lessons:  counts[cat],
		})
	}
	return st
}

// Open loads the catalog from dir, or from the embedded content when dir is
// empty.
func Open(dir string) (*Catalog, error) {
	if dir == "" {
		return Load(Embedded())
	}
	return Load(os.DirFS(dir))
}
