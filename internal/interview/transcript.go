package interview

import (
	"strings"
	"sync"
	"time"

	"github.com/mockmate-ai/mockmate/internal/models"
)

// Accumulator is the append-only transcript log of one live session.
// Entries keep arrival order; blank utterances are dropped. Once sealed
// (at session end) no further appends are accepted.
type Accumulator struct {
	mu      sync.Mutex
	entries []models.TranscriptEntry
	sealed  bool
}

func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

// Append records one utterance. Returns false when the text is empty or
// whitespace-only, or when the accumulator is already sealed.
func (a *Accumulator) Append(role models.Role, text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.sealed {
		return false
	}
	a.entries = append(a.entries, models.TranscriptEntry{
		Role:      role,
		Content:   text,
		Timestamp: time.Now().UTC(),
	})
	return true
}

// Seal freezes the log and returns a copy for handoff. The accumulator
// is never mutated afterwards; sealing twice returns the same content.
func (a *Accumulator) Seal() []models.TranscriptEntry {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sealed = true
	return a.copyLocked()
}

// Snapshot returns a copy of the current entries without sealing.
func (a *Accumulator) Snapshot() []models.TranscriptEntry {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.copyLocked()
}

// Reset clears the log for a fresh session. Only valid on the
// transition into Active.
func (a *Accumulator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = nil
	a.sealed = false
}

func (a *Accumulator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.entries)
}

func (a *Accumulator) copyLocked() []models.TranscriptEntry {
	out := make([]models.TranscriptEntry, len(a.entries))
	copy(out, a.entries)
	return out
}
