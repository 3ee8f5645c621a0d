package scan

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/erazemk/skener/internal/model"
)

var (
	// ErrItemNotFound is returned for an unknown draft line id.
	ErrItemNotFound = errors.New("draft item not found")

	// ErrInvalidField is returned for edits with an unknown field or a value
	// outside the field's allowed set.
	ErrInvalidField = errors.New("invalid field")
)

// Draft is the transaction being assembled by a scanning session.
type Draft struct {
	TransactionType string      `json:"transaction_type"`
	ReferenceNo     string      `json:"reference_no"`
	FirstPerson     string      `json:"first_person"`
	SecondPerson    string      `json:"second_person,omitempty"`
	Location        string      `json:"location"`
	Notes           string      `json:"notes,omitempty"`
	Status          string      `json:"status"`
	Items           []DraftItem `json:"items"`
}

// DraftItem is one product line. There is at most one line per product.
type DraftItem struct {
	LocalID         string `json:"local_id"`
	ProductID       string `json:"product_id"`
	ProductName     string `json:"product_name,omitempty"`
	Quantity        int    `json:"quantity"`
	ConditionBefore string `json:"condition_before"`
	ConditionAfter  string `json:"condition_after,omitempty"`
	Status          string `json:"status"`
	Notes           string `json:"notes,omitempty"`

	// MaxQuantity is the product's last-known available quantity; 0 means unknown.
	MaxQuantity int `json:"max_quantity,omitempty"`
}

// NewReferenceNo returns a default reference number such as SCN-20261017-3F9A1C.
func NewReferenceNo(now time.Time) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "SCN-" + now.Format("20060102") + "-" + strings.ToUpper(id[:6])
}

// NewDraft starts an empty draft of the given type.
func NewDraft(txType string, now time.Time) *Draft {
	return &Draft{
		TransactionType: txType,
		ReferenceNo:     NewReferenceNo(now),
		Status:          model.TxStatusOpen,
		Items:           []DraftItem{},
	}
}

// Clone returns a deep copy safe to hand outside the session lock.
func (d *Draft) Clone() Draft {
	c := *d
	c.Items = append([]DraftItem(nil), d.Items...)
	if c.Items == nil {
		c.Items = []DraftItem{}
	}
	return c
}

// AdmitResult tells whether a scan created a line or bumped an existing one.
type AdmitResult string

// Admit results.
const (
	Created     AdmitResult = "created"
	Incremented AdmitResult = "incremented"
)

// Admission is the outcome of adding a scanned product to the draft.
type Admission struct {
	Result AdmitResult `json:"result"`
	Line   DraftItem   `json:"line"`
}

// Contains reports whether the draft already has a line for productID.
func (d *Draft) Contains(productID string) bool {
	return d.indexOfProduct(productID) >= 0
}

func (d *Draft) indexOfProduct(productID string) int {
	for i := range d.Items {
		if d.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func (d *Draft) indexOf(localID string) int {
	for i := range d.Items {
		if d.Items[i].LocalID == localID {
			return i
		}
	}
	return -1
}

// AdmitScan adds one unit of p: an existing line is incremented, otherwise a new
// line is appended with defaults derived from the product and transaction type.
func (d *Draft) AdmitScan(p model.Product) Admission {
	if i := d.indexOfProduct(p.ID); i >= 0 {
		line := &d.Items[i]
		line.Quantity++
		if p.Quantity > 0 {
			line.MaxQuantity = p.Quantity
		}
		return Admission{Result: Incremented, Line: *line}
	}

	line := DraftItem{
		LocalID:         uuid.NewString(),
		ProductID:       p.ID,
		ProductName:     p.Name,
		Quantity:        1,
		ConditionBefore: p.Condition,
		Status:          model.LineProcessed,
		MaxQuantity:     p.Quantity,
	}
	if line.ConditionBefore == "" {
		line.ConditionBefore = model.ConditionGood
	}
	if d.TransactionType == model.TxLost {
		line.ConditionAfter = model.ConditionPoor
	}
	d.Items = append(d.Items, line)
	return Admission{Result: Created, Line: line}
}

// SetQuantity sets a line's quantity. Zero or less removes the line; values above
// the last-known available quantity are clamped to it.
func (d *Draft) SetQuantity(localID string, qty int) (removed bool, err error) {
	i := d.indexOf(localID)
	if i < 0 {
		return false, ErrItemNotFound
	}
	if qty <= 0 {
		d.Items = append(d.Items[:i], d.Items[i+1:]...)
		return true, nil
	}
	if max := d.Items[i].MaxQuantity; max > 0 && qty > max {
		qty = max
	}
	d.Items[i].Quantity = qty
	return false, nil
}

// Remove deletes a line.
func (d *Draft) Remove(localID string) error {
	i := d.indexOf(localID)
	if i < 0 {
		return ErrItemNotFound
	}
	d.Items = append(d.Items[:i], d.Items[i+1:]...)
	return nil
}

// Editable line fields.
const (
	FieldConditionBefore = "condition_before"
	FieldConditionAfter  = "condition_after"
	FieldStatus          = "status"
	FieldNotes           = "notes"
)

// EditField changes one editable field of a line.
func (d *Draft) EditField(localID, field, value string) error {
	i := d.indexOf(localID)
	if i < 0 {
		return ErrItemNotFound
	}
	line := &d.Items[i]

	switch field {
	case FieldConditionBefore:
		if !model.ValidCondition(value) {
			return fmt.Errorf("%w: condition %q", ErrInvalidField, value)
		}
		line.ConditionBefore = value
	case FieldConditionAfter:
		if value != "" && !model.ValidCondition(value) {
			return fmt.Errorf("%w: condition %q", ErrInvalidField, value)
		}
		line.ConditionAfter = value
	case FieldStatus:
		if value != model.LineProcessed && value != model.LinePending {
			return fmt.Errorf("%w: line status %q", ErrInvalidField, value)
		}
		line.Status = value
	case FieldNotes:
		line.Notes = value
	default:
		return fmt.Errorf("%w: %q is not editable", ErrInvalidField, field)
	}
	return nil
}

// Header holds the draft fields a form edit may change. Nil fields are left alone.
type Header struct {
	ReferenceNo  *string `json:"reference_no,omitempty"`
	FirstPerson  *string `json:"first_person,omitempty"`
	SecondPerson *string `json:"second_person,omitempty"`
	Location     *string `json:"location,omitempty"`
	Notes        *string `json:"notes,omitempty"`
	Status       *string `json:"status,omitempty"`
}

// ApplyHeader updates the draft header.
func (d *Draft) ApplyHeader(h Header) error {
	if h.Status != nil {
		switch *h.Status {
		case model.TxStatusOpen, model.TxStatusPending, model.TxStatusClosed:
		default:
			return fmt.Errorf("%w: transaction status %q", ErrInvalidField, *h.Status)
		}
	}
	if h.ReferenceNo != nil && strings.TrimSpace(*h.ReferenceNo) == "" {
		return fmt.Errorf("%w: reference number must not be empty", ErrInvalidField)
	}

	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&d.ReferenceNo, h.ReferenceNo)
	set(&d.FirstPerson, h.FirstPerson)
	set(&d.SecondPerson, h.SecondPerson)
	set(&d.Location, h.Location)
	set(&d.Notes, h.Notes)
	set(&d.Status, h.Status)
	return nil
}
