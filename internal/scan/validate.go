package scan

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/erazemk/skener/internal/model"
)

// ValidationResult holds per-field problems with a draft. An empty map means valid.
type ValidationResult struct {
	FieldErrors map[string]string `json:"field_errors"`
}

// OK reports whether the draft passed validation.
func (r ValidationResult) OK() bool { return len(r.FieldErrors) == 0 }

// ValidationError is returned by Submit when the draft does not validate.
type ValidationError struct {
	FieldErrors map[string]string
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.FieldErrors))
	for f := range e.FieldErrors {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fmt.Sprintf("draft is invalid: %s", strings.Join(fields, ", "))
}

// Validate checks the draft before submission.
func Validate(d Draft) ValidationResult {
	errs := make(map[string]string)

	if !model.ValidTransactionType(d.TransactionType) {
		errs["transaction_type"] = fmt.Sprintf("Unknown transaction type %q", d.TransactionType)
	}
	if strings.TrimSpace(d.FirstPerson) == "" {
		errs["first_person"] = "First person is required"
	}
	if strings.TrimSpace(d.Location) == "" {
		errs["location"] = "Location is required"
	}
	if len(d.Items) == 0 {
		errs["items"] = "At least one item is required"
	}
	if d.TransactionType == model.TxRepair || d.TransactionType == model.TxLost {
		if strings.TrimSpace(d.Notes) == "" {
			errs["notes"] = fmt.Sprintf("Notes are required for %s transactions", d.TransactionType)
		}
	}

	return ValidationResult{FieldErrors: errs}
}

// BuildRequest maps the draft onto the transaction service's create request.
func BuildRequest(d Draft, now time.Time) model.CreateTransactionRequest {
	req := model.CreateTransactionRequest{
		TransactionType: d.TransactionType,
		ReferenceNo:     d.ReferenceNo,
		FirstPerson:     strings.TrimSpace(d.FirstPerson),
		SecondPerson:    strings.TrimSpace(d.SecondPerson),
		Location:        strings.TrimSpace(d.Location),
		Notes:           strings.TrimSpace(d.Notes),
		Status:          d.Status,
		TransactionDate: now,
		Items:           make([]model.CreateTransactionItem, 0, len(d.Items)),
	}
	for _, it := range d.Items {
		req.Items = append(req.Items, model.CreateTransactionItem{
			ProductID:       it.ProductID,
			Quantity:        it.Quantity,
			ConditionBefore: it.ConditionBefore,
			ConditionAfter:  it.ConditionAfter,
			Status:          it.Status,
			Notes:           it.Notes,
		})
	}
	return req
}
