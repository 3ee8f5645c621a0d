package model

import "time"

// Product is a tracked asset type. ID is the human-facing asset code (e.g. "CAB004")
// that QR labels and barcodes carry.
type Product struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Brand        string     `json:"brand,omitempty"`
	Status       string     `json:"status"`
	Quantity     int        `json:"quantity"`
	CheckedOut   int        `json:"checked_out"`
	Condition    string     `json:"condition,omitempty"`
	SerialNumber string     `json:"serial_number,omitempty"`
	QRPayload    string     `json:"qr_payload,omitempty"`
	ImageMime    string     `json:"image_mime,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
}

// Holding is the number of units of a product a person currently has checked out.
type Holding struct {
	ProductID   string    `json:"product_id"`
	ProductName string    `json:"product_name,omitempty"`
	Holder      string    `json:"holder"`
	Quantity    int       `json:"quantity"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ImageRef returns the API path of the product image, or "" if it has none.
func (p Product) ImageRef() string {
	if p.ImageMime == "" {
		return ""
	}
	return "/api/products/" + p.ID + "/image"
}

// Product statuses.
const (
	StatusAvailable   = "Available"
	StatusCheckedOut  = "Checked Out"
	StatusInUse       = "In Use"
	StatusMaintenance = "Maintenance"
	StatusRepair      = "Repair"
	StatusLost        = "Lost"
	StatusDisposed    = "Disposed"
)

// Product conditions.
const (
	ConditionExcellent = "Excellent"
	ConditionGood      = "Good"
	ConditionFair      = "Fair"
	ConditionPoor      = "Poor"
	ConditionDamaged   = "Damaged"
)

// ValidStatus reports whether s is a known product status.
func ValidStatus(s string) bool {
	switch s {
	case StatusAvailable, StatusCheckedOut, StatusInUse, StatusMaintenance,
		StatusRepair, StatusLost, StatusDisposed:
		return true
	}
	return false
}

// ValidCondition reports whether c is a known condition.
func ValidCondition(c string) bool {
	switch c {
	case ConditionExcellent, ConditionGood, ConditionFair, ConditionPoor, ConditionDamaged:
		return true
	}
	return false
}
