package scan

import (
	"sync"
	"time"
)

// DefaultCooldown is how long an identical symbol is suppressed after it was admitted.
const DefaultCooldown = 2 * time.Second

// Deduplicator suppresses the same symbol text re-read within the cooldown.
// Only the most recently admitted symbol is remembered.
type Deduplicator struct {
	cooldown time.Duration

	mu       sync.Mutex
	lastText string
	lastAt   time.Time
}

// NewDeduplicator returns a deduplicator; a non-positive cooldown uses DefaultCooldown.
func NewDeduplicator(cooldown time.Duration) *Deduplicator {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &Deduplicator{cooldown: cooldown}
}

// Admit reports whether ev should be forwarded. A rejected event leaves the
// window untouched, so holding a code in front of the camera does not extend it.
func (d *Deduplicator) Admit(ev Event) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	// Past the cooldown the previous text is forgotten.
	if d.lastText != "" && ev.Timestamp.Sub(d.lastAt) >= d.cooldown {
		d.lastText = ""
	}

	if d.lastText != "" && ev.RawText == d.lastText {
		return false
	}

	d.lastText = ev.RawText
	d.lastAt = ev.Timestamp
	return true
}

// Reset forgets the last admitted symbol.
func (d *Deduplicator) Reset() {
	d.mu.Lock()
	d.lastText = ""
	d.lastAt = time.Time{}
	d.mu.Unlock()
}
