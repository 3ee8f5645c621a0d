package scan

import (
	"sync"
	"time"

	"github.com/dustin/go-humanize"
)

// HistoryCapacity is the number of outcomes kept by a FeedbackLog.
const HistoryCapacity = 10

// Outcome kinds recorded in the feedback log.
const (
	OutcomeResolved            = "resolved"
	OutcomeDuplicateSuppressed = "duplicate-suppressed"
	OutcomeIncompatible        = "incompatible"
	OutcomeNotFound            = "not-found"
	OutcomeProcessingError     = "processing-error"
)

// Entry is one recorded scan outcome.
type Entry struct {
	Kind      string    `json:"kind"`
	Message   string    `json:"message"`
	RawText   string    `json:"raw_text"`
	ProductID string    `json:"product_id,omitempty"`
	At        time.Time `json:"at"`
	Age       string    `json:"age,omitempty"`
}

// FeedbackLog is a fixed-size ring of recent scan outcomes. It is only read for
// display and never feeds back into the pipeline.
type FeedbackLog struct {
	mu      sync.Mutex
	entries []Entry
	next    int
	size    int
}

// NewFeedbackLog returns a log holding up to capacity entries.
func NewFeedbackLog(capacity int) *FeedbackLog {
	if capacity <= 0 {
		capacity = HistoryCapacity
	}
	return &FeedbackLog{entries: make([]Entry, capacity)}
}

// Record appends an entry, evicting the oldest one when full.
func (l *FeedbackLog) Record(e Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries[l.next] = e
	l.next = (l.next + 1) % len(l.entries)
	if l.size < len(l.entries) {
		l.size++
	}
}

// Clear drops all entries.
func (l *FeedbackLog) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()

	clear(l.entries)
	l.next, l.size = 0, 0
}

// Len returns the number of stored entries.
func (l *FeedbackLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.size
}

// Recent returns up to n entries, newest first, with Age filled in relative to
// now. n <= 0 returns everything stored.
func (l *FeedbackLog) Recent(n int, now time.Time) []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	if n <= 0 || n > l.size {
		n = l.size
	}
	out := make([]Entry, 0, n)
	for i := 1; i <= n; i++ {
		idx := (l.next - i + len(l.entries)) % len(l.entries)
		e := l.entries[idx]
		e.Age = humanize.RelTime(e.At, now, "ago", "from now")
		out = append(out, e)
	}
	return out
}
