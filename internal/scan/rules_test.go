package scan

import (
	"strings"
	"testing"

	"github.com/erazemk/skener/internal/model"
)

func TestCheck(t *testing.T) {
	tests := []struct {
		status  string
		txType  string
		allowed bool
		reason  string
	}{
		{model.StatusAvailable, model.TxCheckOut, true, ""},
		{model.StatusInUse, model.TxCheckOut, false, "Product is In Use, not Available for checkout"},
		{model.StatusCheckedOut, model.TxCheckOut, false, "Product is Checked Out, not Available for checkout"},

		{model.StatusCheckedOut, model.TxCheckIn, true, ""},
		{model.StatusInUse, model.TxCheckIn, true, ""},
		{model.StatusAvailable, model.TxCheckIn, false, "Product is Available, not checked out"},

		{model.StatusAvailable, model.TxMaintenance, true, ""},
		{model.StatusCheckedOut, model.TxRepair, true, ""},
		{model.StatusLost, model.TxRepair, false, "Cannot perform repair on Lost item"},
		{model.StatusDisposed, model.TxMaintenance, false, "Cannot perform maintenance on Disposed item"},

		{model.StatusAvailable, model.TxLost, true, ""},
		{model.StatusLost, model.TxLost, false, "Product is already marked as Lost"},

		// Types without a rule admit anything.
		{model.StatusLost, model.TxTransfer, true, ""},
		{model.StatusDisposed, "audit", true, ""},
	}

	for _, tt := range tests {
		v := Check(model.Product{ID: "X", Status: tt.status}, tt.txType)
		if v.Allowed != tt.allowed || v.Reason != tt.reason {
			t.Errorf("Check(%s, %s) = %+v, want allowed=%v reason=%q",
				tt.status, tt.txType, v, tt.allowed, tt.reason)
		}
	}
}

func TestCheckInPartiallyCheckedOut(t *testing.T) {
	p := cable()
	p.Quantity, p.CheckedOut = 3, 2

	if v := Check(p, model.TxCheckIn); !v.Allowed {
		t.Errorf("expected units out to be returnable while Available, got %+v", v)
	}
	if v := Check(p, model.TxCheckOut); !v.Allowed {
		t.Errorf("expected remaining units to stay available, got %+v", v)
	}
}

func TestCheckInUseProduct(t *testing.T) {
	p := model.Product{ID: "CAB004", Status: model.StatusInUse}

	out := Check(p, model.TxCheckOut)
	if out.Allowed || !strings.Contains(out.Reason, "Available") {
		t.Errorf("expected check_out rejection mentioning Available, got %+v", out)
	}
	if in := Check(p, model.TxCheckIn); !in.Allowed {
		t.Errorf("expected check_in to admit, got %+v", in)
	}
}
