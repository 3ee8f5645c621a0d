package scan

import (
	"fmt"
	"testing"
	"time"
)

func TestFeedbackLogEviction(t *testing.T) {
	log := NewFeedbackLog(HistoryCapacity)
	start := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	for i := 0; i < 11; i++ {
		log.Record(Entry{Kind: OutcomeResolved, RawText: fmt.Sprintf("scan-%d", i), At: start.Add(time.Duration(i) * time.Second)})
	}

	if log.Len() != 10 {
		t.Fatalf("expected 10 entries, got %d", log.Len())
	}
	got := log.Recent(0, start.Add(time.Minute))
	if len(got) != 10 {
		t.Fatalf("expected 10 entries, got %d", len(got))
	}
	if got[0].RawText != "scan-10" || got[9].RawText != "scan-1" {
		t.Errorf("expected scan-10..scan-1, got %s..%s", got[0].RawText, got[9].RawText)
	}
}

func TestFeedbackLogRecent(t *testing.T) {
	log := NewFeedbackLog(0)
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	log.Record(Entry{Kind: OutcomeNotFound, RawText: "a", At: now.Add(-3 * time.Minute)})
	log.Record(Entry{Kind: OutcomeIncompatible, RawText: "b", At: now.Add(-time.Minute)})

	got := log.Recent(1, now)
	if len(got) != 1 || got[0].RawText != "b" {
		t.Fatalf("expected newest entry only, got %+v", got)
	}
	if got[0].Age != "1 minute ago" {
		t.Errorf("unexpected age %q", got[0].Age)
	}
	if n := len(log.Recent(5, now)); n != 2 {
		t.Errorf("expected 2 entries, got %d", n)
	}
}

func TestFeedbackLogClear(t *testing.T) {
	log := NewFeedbackLog(3)
	for i := 0; i < 5; i++ {
		log.Record(Entry{RawText: fmt.Sprint(i)})
	}
	log.Clear()
	if log.Len() != 0 || len(log.Recent(0, time.Now())) != 0 {
		t.Error("expected empty log after Clear")
	}
	log.Record(Entry{RawText: "x"})
	if got := log.Recent(0, time.Now()); len(got) != 1 || got[0].RawText != "x" {
		t.Errorf("unexpected entries after Clear: %+v", got)
	}
}
