package scan

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/erazemk/skener/internal/model"
)

func TestNewReferenceNo(t *testing.T) {
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	ref := NewReferenceNo(now)
	if !regexp.MustCompile(`^SCN-20261017-[0-9A-F]{6}$`).MatchString(ref) {
		t.Errorf("unexpected reference %q", ref)
	}
}

func TestAdmitScanAggregates(t *testing.T) {
	d := NewDraft(model.TxCheckOut, time.Now())

	first := d.AdmitScan(cable())
	if first.Result != Created || first.Line.Quantity != 1 {
		t.Fatalf("expected created line with quantity 1, got %+v", first)
	}
	second := d.AdmitScan(cable())
	if second.Result != Incremented || second.Line.Quantity != 2 {
		t.Fatalf("expected incremented line with quantity 2, got %+v", second)
	}
	if len(d.Items) != 1 {
		t.Fatalf("expected one line, got %d", len(d.Items))
	}
	if second.Line.LocalID != first.Line.LocalID {
		t.Error("expected the same line to be incremented")
	}
	if !d.Contains("CAB004") || d.Contains("LAP001") {
		t.Error("Contains reports wrong membership")
	}
}

func TestAdmitScanDefaults(t *testing.T) {
	d := NewDraft(model.TxCheckIn, time.Now())
	p := cable()
	p.Condition = ""
	line := d.AdmitScan(p).Line

	if line.ConditionBefore != model.ConditionGood {
		t.Errorf("expected Good default, got %q", line.ConditionBefore)
	}
	if line.ConditionAfter != "" {
		t.Errorf("expected no condition after, got %q", line.ConditionAfter)
	}
	if line.Status != model.LineProcessed {
		t.Errorf("expected processed, got %q", line.Status)
	}
	if line.MaxQuantity != 5 || line.ProductName != "HDMI cable" {
		t.Errorf("unexpected line %+v", line)
	}

	lost := NewDraft(model.TxLost, time.Now())
	if got := lost.AdmitScan(laptop()).Line; got.ConditionAfter != model.ConditionPoor || got.ConditionBefore != model.ConditionFair {
		t.Errorf("unexpected lost line %+v", got)
	}
}

func TestSetQuantity(t *testing.T) {
	d := NewDraft(model.TxCheckOut, time.Now())
	id := d.AdmitScan(cable()).Line.LocalID

	if removed, err := d.SetQuantity(id, 3); err != nil || removed {
		t.Fatalf("SetQuantity(3) = %v, %v", removed, err)
	}
	if d.Items[0].Quantity != 3 {
		t.Errorf("expected 3, got %d", d.Items[0].Quantity)
	}

	d.SetQuantity(id, 50)
	if d.Items[0].Quantity != 5 {
		t.Errorf("expected clamp to 5, got %d", d.Items[0].Quantity)
	}

	removed, err := d.SetQuantity(id, 0)
	if err != nil || !removed {
		t.Fatalf("SetQuantity(0) = %v, %v", removed, err)
	}
	if len(d.Items) != 0 {
		t.Errorf("expected line removed, got %d lines", len(d.Items))
	}

	if _, err := d.SetQuantity(id, 1); !errors.Is(err, ErrItemNotFound) {
		t.Errorf("expected ErrItemNotFound, got %v", err)
	}
}

func TestSetQuantityUnknownBound(t *testing.T) {
	d := NewDraft(model.TxTransfer, time.Now())
	p := cable()
	p.Quantity = 0
	id := d.AdmitScan(p).Line.LocalID

	d.SetQuantity(id, 99)
	if d.Items[0].Quantity != 99 {
		t.Errorf("expected 99 to be accepted, got %d", d.Items[0].Quantity)
	}
}

func TestReadmitAfterRemove(t *testing.T) {
	d := NewDraft(model.TxCheckOut, time.Now())
	first := d.AdmitScan(cable()).Line
	d.AdmitScan(cable())

	if err := d.Remove(first.LocalID); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	again := d.AdmitScan(cable())
	if again.Result != Created || again.Line.Quantity != 1 {
		t.Errorf("expected a fresh line, got %+v", again)
	}
	if again.Line.LocalID == first.LocalID {
		t.Error("expected a new local id")
	}
	if err := d.Remove(first.LocalID); !errors.Is(err, ErrItemNotFound) {
		t.Errorf("expected ErrItemNotFound, got %v", err)
	}
}

func TestEditField(t *testing.T) {
	d := NewDraft(model.TxRepair, time.Now())
	id := d.AdmitScan(cable()).Line.LocalID

	tests := []struct {
		field, value string
		wantErr      bool
	}{
		{FieldConditionBefore, model.ConditionFair, false},
		{FieldConditionBefore, "Shiny", true},
		{FieldConditionAfter, model.ConditionDamaged, false},
		{FieldConditionAfter, "", false},
		{FieldStatus, model.LinePending, false},
		{FieldStatus, "done", true},
		{FieldNotes, "frayed connector", false},
		{"quantity", "3", true},
	}
	for _, tt := range tests {
		err := d.EditField(id, tt.field, tt.value)
		if (err != nil) != tt.wantErr {
			t.Errorf("EditField(%s, %q) error = %v, wantErr %v", tt.field, tt.value, err, tt.wantErr)
		}
	}

	line := d.Items[0]
	if line.ConditionBefore != model.ConditionFair || line.ConditionAfter != "" ||
		line.Status != model.LinePending || line.Notes != "frayed connector" {
		t.Errorf("unexpected line after edits: %+v", line)
	}

	if err := d.EditField("nope", FieldNotes, "x"); !errors.Is(err, ErrItemNotFound) {
		t.Errorf("expected ErrItemNotFound, got %v", err)
	}
}

func TestApplyHeader(t *testing.T) {
	d := NewDraft(model.TxCheckOut, time.Now())
	alice, wh, closed := "Alice", "Warehouse", model.TxStatusClosed

	if err := d.ApplyHeader(Header{FirstPerson: &alice, Location: &wh, Status: &closed}); err != nil {
		t.Fatalf("ApplyHeader: %v", err)
	}
	if d.FirstPerson != "Alice" || d.Location != "Warehouse" || d.Status != model.TxStatusClosed {
		t.Errorf("unexpected header %+v", d)
	}

	bad := "archived"
	if err := d.ApplyHeader(Header{Status: &bad}); err == nil {
		t.Error("expected invalid status error")
	}
	empty := " "
	if err := d.ApplyHeader(Header{ReferenceNo: &empty}); err == nil {
		t.Error("expected empty reference error")
	}
	if d.Status != model.TxStatusClosed {
		t.Error("a rejected header must not change the draft")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	d := NewDraft(model.TxCheckOut, time.Now())
	d.AdmitScan(cable())

	c := d.Clone()
	c.Items[0].Quantity = 42
	if d.Items[0].Quantity != 1 {
		t.Error("clone shares item storage with the draft")
	}
}
