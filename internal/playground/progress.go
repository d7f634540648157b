package playground

import "sort"

// Progress records which exercise indices of a lesson have been completed.
// It lives only as long as the lesson session that owns it.
type Progress struct {
	done map[int]struct{}
}

// NewProgress returns an empty progress record.
func NewProgress() *Progress {
	return &Progress{done: make(map[int]struct{})}
}

// Mark records index as completed and reports whether it was new.
func (p *Progress) Mark(index int) bool {
	if _, ok := p.done[index]; ok {
		return false
	}
	p.done[index] = struct{}{}
	return true
}

// Done reports whether index has been completed.
func (p *Progress) Done(index int) bool {
	_, ok := p.done[index]
	return ok
}

// Count returns the number of completed exercises.
func (p *Progress) Count() int {
	return len(p.done)
}

// Completed returns the completed indices in ascending order.
func (p *Progress) Completed() []int {
	out := make([]int, 0, len(p.done))
	for i := range p.done {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// Percent returns completion as a whole percentage of total.
func (p *Progress) Percent(total int) int {
	if total <= 0 {
		return 0
	}
	return len(p.done) * 100 / total
}
