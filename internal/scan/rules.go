package scan

import (
	"fmt"

	"github.com/erazemk/skener/internal/model"
)

// Verdict is the decision on adding a product to a draft of a given type.
type Verdict struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

func allow() Verdict { return Verdict{Allowed: true} }

func reject(format string, args ...any) Verdict {
	return Verdict{Reason: fmt.Sprintf(format, args...)}
}

// Check decides whether p may join a transaction of type txType. Types without
// a rule are admitted.
func Check(p model.Product, txType string) Verdict {
	switch txType {
	case model.TxCheckOut:
		if p.Status != model.StatusAvailable {
			return reject("Product is %s, not Available for checkout", p.Status)
		}
	case model.TxCheckIn:
		// Units out from a partial check-out can come back while the rest is Available.
		if p.CheckedOut > 0 {
			break
		}
		if p.Status != model.StatusCheckedOut && p.Status != model.StatusInUse {
			return reject("Product is %s, not checked out", p.Status)
		}
	case model.TxMaintenance, model.TxRepair:
		if p.Status == model.StatusLost || p.Status == model.StatusDisposed {
			return reject("Cannot perform %s on %s item", txType, p.Status)
		}
	case model.TxLost:
		if p.Status == model.StatusLost {
			return reject("Product is already marked as Lost")
		}
	}
	return allow()
}
