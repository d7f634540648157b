package playground

import "github.com/ashureev/shsh-lessons/internal/domain"

// History is the append-only terminal log of one exercise session.
// Entries are never modified after Append; the log is only ever cleared
// as a whole.
type History struct {
	entries []domain.HistoryEntry
}

// Append adds an entry to the end of the log.
func (h *History) Append(e domain.HistoryEntry) {
	h.entries = append(h.entries, e)
}

// Clear drops every entry.
func (h *History) Clear() {
	h.entries = nil
}

// Len returns the number of entries.
func (h *History) Len() int {
	return len(h.entries)
}

// Last returns the most recent entry.
func (h *History) Last() (domain.HistoryEntry, bool) {
	if len(h.entries) == 0 {
		return domain.HistoryEntry{}, false
	}
	return h.entries[len(h.entries)-1], true
}

// Entries returns a copy of the log in insertion order.
func (h *History) Entries() []domain.HistoryEntry {
	out := make([]domain.HistoryEntry, len(h.entries))
	copy(out, h.entries)
	return out
}
