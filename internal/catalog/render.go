package catalog

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/ashureev/shsh-lessons/internal/domain"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

type theoryCache struct {
	md    goldmark.Markdown
	cache sync.Map // lesson id -> rendered HTML
}

func newTheoryCache() *theoryCache {
	return &theoryCache{
		md: goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
}

// RenderTheory renders a lesson's theory text from Markdown to HTML. Results
// are cached per lesson id.
func (c *Catalog) RenderTheory(l *domain.Lesson) (string, error) {
	if v, ok := c.theory.cache.Load(l.ID); ok {
		return v.(string), nil
	}

	var buf bytes.Buffer
	if err := c.theory.md.Convert([]byte(l.Theory), &buf); err != nil {
		return "", fmt.Errorf("render theory for %s: %w", l.ID, err)
	}

	html := buf.String()
	c.theory.cache.Store(l.ID, html)
	return html, nil
}
