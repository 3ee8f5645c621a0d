package scan

import (
	"testing"
	"time"
)

func TestDeduplicatorWindow(t *testing.T) {
	d := NewDeduplicator(2 * time.Second)
	base := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	at := func(ms int) Event {
		return Event{RawText: "CAB004", Timestamp: base.Add(time.Duration(ms) * time.Millisecond)}
	}

	if !d.Admit(at(0)) {
		t.Fatal("first scan should be admitted")
	}
	if d.Admit(at(500)) {
		t.Error("repeat within cooldown should be suppressed")
	}
	if d.Admit(at(1999)) {
		t.Error("repeat just before cooldown should be suppressed")
	}
	if !d.Admit(at(2000)) {
		t.Error("repeat at cooldown should be admitted")
	}
	if d.Admit(at(2100)) {
		t.Error("window should restart from the last admitted scan")
	}
}

func TestDeduplicatorOnlyTracksPreviousSymbol(t *testing.T) {
	d := NewDeduplicator(2 * time.Second)
	now := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)

	d.Admit(Event{RawText: "A", Timestamp: now})
	if !d.Admit(Event{RawText: "B", Timestamp: now.Add(100 * time.Millisecond)}) {
		t.Fatal("different symbol should be admitted")
	}
	// A is no longer the last symbol, so it is admitted again.
	if !d.Admit(Event{RawText: "A", Timestamp: now.Add(200 * time.Millisecond)}) {
		t.Error("earlier symbol should be admitted once another symbol intervened")
	}
}

func TestDeduplicatorReset(t *testing.T) {
	d := NewDeduplicator(0)
	now := time.Now()

	d.Admit(Event{RawText: "A", Timestamp: now})
	d.Reset()
	if !d.Admit(Event{RawText: "A", Timestamp: now}) {
		t.Error("expected admit after reset")
	}
}
