package scan

import (
	"errors"
	"testing"
	"time"

	"github.com/erazemk/skener/internal/model"
)

func validDraft(txType string) Draft {
	d := NewDraft(txType, time.Now())
	d.FirstPerson = "Alice"
	d.Location = "Warehouse"
	d.AdmitScan(cable())
	return *d
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		draft  func() Draft
		fields []string
	}{
		{"valid check_out", func() Draft { return validDraft(model.TxCheckOut) }, nil},
		{"blank person", func() Draft {
			d := validDraft(model.TxCheckOut)
			d.FirstPerson = "   "
			return d
		}, []string{"first_person"}},
		{"no location no items", func() Draft {
			d := validDraft(model.TxCheckIn)
			d.Location = ""
			d.Items = nil
			return d
		}, []string{"location", "items"}},
		{"lost needs notes", func() Draft { return validDraft(model.TxLost) }, []string{"notes"}},
		{"repair needs notes", func() Draft { return validDraft(model.TxRepair) }, []string{"notes"}},
		{"unknown type", func() Draft { return validDraft("check-out") }, []string{"transaction_type"}},
		{"repair with notes", func() Draft {
			d := validDraft(model.TxRepair)
			d.Notes = "screen cracked"
			return d
		}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Validate(tt.draft())
			if len(res.FieldErrors) != len(tt.fields) {
				t.Fatalf("expected errors on %v, got %v", tt.fields, res.FieldErrors)
			}
			for _, f := range tt.fields {
				if _, ok := res.FieldErrors[f]; !ok {
					t.Errorf("expected error on %s, got %v", f, res.FieldErrors)
				}
			}
			if res.OK() != (len(tt.fields) == 0) {
				t.Errorf("OK() = %v", res.OK())
			}
		})
	}
}

func TestRequiredNotesDependOnType(t *testing.T) {
	d := validDraft(model.TxLost)
	if _, ok := Validate(d).FieldErrors["notes"]; !ok {
		t.Error("lost draft without notes should fail on notes")
	}
	d.TransactionType = model.TxCheckOut
	if res := Validate(d); !res.OK() {
		t.Errorf("check_out draft should pass, got %v", res.FieldErrors)
	}
}

func TestValidationErrorMessage(t *testing.T) {
	var err error = &ValidationError{FieldErrors: map[string]string{"location": "x", "first_person": "y"}}
	if err.Error() != "draft is invalid: first_person, location" {
		t.Errorf("unexpected message %q", err.Error())
	}
	var ve *ValidationError
	if !errors.As(err, &ve) || len(ve.FieldErrors) != 2 {
		t.Error("expected errors.As to find the field errors")
	}
}

func TestBuildRequest(t *testing.T) {
	d := validDraft(model.TxCheckOut)
	d.SecondPerson = " Bob "
	d.Items[0].Quantity = 2
	d.Items[0].Notes = "spare"
	now := time.Date(2026, 10, 17, 8, 30, 0, 0, time.UTC)

	req := BuildRequest(d, now)
	if req.TransactionType != model.TxCheckOut || req.ReferenceNo != d.ReferenceNo {
		t.Errorf("unexpected header %+v", req)
	}
	if req.SecondPerson != "Bob" || req.Status != model.TxStatusOpen || !req.TransactionDate.Equal(now) {
		t.Errorf("unexpected header %+v", req)
	}
	if len(req.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(req.Items))
	}
	it := req.Items[0]
	if it.ProductID != "CAB004" || it.Quantity != 2 || it.ConditionBefore != model.ConditionGood ||
		it.Status != model.LineProcessed || it.Notes != "spare" {
		t.Errorf("unexpected item %+v", it)
	}
}
