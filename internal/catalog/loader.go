package catalog

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/ashureev/shsh-lessons/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed content
var content embed.FS

// Embedded returns the lesson content compiled into the binary.
func Embedded() fs.FS {
	sub, err := fs.Sub(content, "content")
	if err != nil {
		panic("catalog: failed to open embedded content: " + err.Error())
	}
	return sub
}

// IndexFile represents catalog.yaml.
type IndexFile struct {
	Name    string   `yaml:"name"`
	Version string   `yaml:"version"`
	Lessons []string `yaml:"lessons"`
}

// LessonFile represents lessons/<id>.yaml.
type LessonFile struct {
	ID          string `yaml:"id"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Category    string `yaml:"category"`
	Syntax      string `yaml:"syntax"`
	Theory      string `yaml:"theory"`
	Examples    []struct {
		Command     string `yaml:"command"`
		Description string `yaml:"description"`
		Output      string `yaml:"output"`
	} `yaml:"examples"`
	Exercises []struct {
		Task     string `yaml:"task"`
		Hint     string `yaml:"hint"`
		Solution string `yaml:"solution"`
	} `yaml:"exercises"`
}

func loadIndex(fsys fs.FS) (*IndexFile, error) {
	data, err := fs.ReadFile(fsys, "catalog.yaml")
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}

	var idx IndexFile
	if err := yaml.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("parse catalog file: %w", err)
	}
	return &idx, nil
}

func loadLesson(fsys fs.FS, id string) (*domain.Lesson, error) {
	data, err := fs.ReadFile(fsys, path.Join("lessons", id+".yaml"))
	if err != nil {
		return nil, fmt.Errorf("read lesson file: %w", err)
	}

	var lf LessonFile
	if err := yaml.Unmarshal(data, &lf); err != nil {
		return nil, fmt.Errorf("parse lesson file: %w", err)
	}

	lesson := &domain.Lesson{
		ID:          lf.ID,
		Title:       lf.Title,
		Description: lf.Description,
		Category:    domain.Category(lf.Category),
		Theory:      strings.TrimSpace(lf.Theory),
		Syntax:      lf.Syntax,
		Examples:    make([]domain.Example, len(lf.Examples)),
		Exercises:   make([]domain.Exercise, len(lf.Exercises)),
	}
	for i, e := range lf.Examples {
		lesson.Examples[i] = domain.Example{
			Command:     e.Command,
			Description: e.Description,
			Output:      e.Output,
		}
	}
	for i, e := range lf.Exercises {
		lesson.Exercises[i] = domain.Exercise{
			Task:     e.Task,
			Hint:     e.Hint,
			Solution: e.Solution,
		}
	}

	if err := validate(lesson, id); err != nil {
		return nil, err
	}
	return lesson, nil
}

func validate(l *domain.Lesson, id string) error {
	if l.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidLesson)
	}
	if l.ID != id {
		return fmt.Errorf("%w: file %s declares id %q", ErrInvalidLesson, id, l.ID)
	}
	if !l.Category.Valid() {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidLesson, l.Category)
	}
	if len(l.Exercises) == 0 {
		return fmt.Errorf("%w: no exercises", ErrInvalidLesson)
	}
	for i, ex := range l.Exercises {
		if strings.TrimSpace(ex.Solution) == "" {
			return fmt.Errorf("%w: exercise %d has no solution", ErrInvalidLesson, i)
		}
	}
	return nil
}
