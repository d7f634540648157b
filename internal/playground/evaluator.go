package playground

import (
	"strings"

	"github.com/ashureev/shsh-lessons/internal/domain"
)

// Evaluate reports whether submitted is the exercise solution. Only outer
// whitespace is ignored: case, inner spacing and flag order must match
// exactly, so "ls -al" does not satisfy "ls -la".
func Evaluate(submitted string, ex domain.Exercise) bool {
	return strings.TrimSpace(submitted) == strings.TrimSpace(ex.Solution)
}
