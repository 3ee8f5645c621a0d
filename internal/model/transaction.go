package model

import "time"

// Transaction types.
const (
	TxCheckOut    = "check_out"
	TxCheckIn     = "check_in"
	TxMaintenance = "maintenance"
	TxRepair      = "repair"
	TxLost        = "lost"
	TxTransfer    = "transfer"
)

// ValidTransactionType reports whether t is a known transaction type.
func ValidTransactionType(t string) bool {
	switch t {
	case TxCheckOut, TxCheckIn, TxMaintenance, TxRepair, TxLost, TxTransfer:
		return true
	}
	return false
}

// Transaction statuses.
const (
	TxStatusOpen    = "open"
	TxStatusPending = "pending"
	TxStatusClosed  = "closed"
)

// Line statuses.
const (
	LineProcessed = "processed"
	LinePending   = "pending"
)

// Transaction is a submitted check-in/check-out/repair/lost record.
type Transaction struct {
	ID              int64             `json:"id"`
	TransactionType string            `json:"transaction_type"`
	ReferenceNo     string            `json:"reference_no"`
	FirstPerson     string            `json:"first_person"`
	SecondPerson    string            `json:"second_person,omitempty"`
	Location        string            `json:"location"`
	Notes           string            `json:"notes,omitempty"`
	Status          string            `json:"status"`
	TransactionDate time.Time         `json:"transaction_date"`
	CreatedBy       *int64            `json:"created_by,omitempty"`
	Items           []TransactionItem `json:"items"`
}

// TransactionItem is one product line of a transaction.
type TransactionItem struct {
	ID              int64  `json:"id"`
	TransactionID   int64  `json:"transaction_id"`
	ProductID       string `json:"product_id"`
	Quantity        int    `json:"quantity"`
	ConditionBefore string `json:"condition_before"`
	ConditionAfter  string `json:"condition_after,omitempty"`
	Status          string `json:"status"`
	Notes           string `json:"notes,omitempty"`

	// Joined fields (not always populated).
	ProductName string `json:"product_name,omitempty"`
}

// CreateTransactionRequest is the payload handed to the transaction service.
type CreateTransactionRequest struct {
	TransactionType string                  `json:"transaction_type"`
	ReferenceNo     string                  `json:"reference_no"`
	FirstPerson     string                  `json:"first_person"`
	SecondPerson    string                  `json:"second_person,omitempty"`
	Location        string                  `json:"location"`
	Notes           string                  `json:"notes,omitempty"`
	Status          string                  `json:"status"`
	TransactionDate time.Time               `json:"transaction_date"`
	CreatedBy       *int64                  `json:"created_by,omitempty"`
	Items           []CreateTransactionItem `json:"items"`
}

// CreateTransactionItem is one line of a CreateTransactionRequest.
type CreateTransactionItem struct {
	ProductID       string `json:"product_id"`
	Quantity        int    `json:"quantity"`
	ConditionBefore string `json:"condition_before"`
	ConditionAfter  string `json:"condition_after,omitempty"`
	Status          string `json:"status"`
	Notes           string `json:"notes,omitempty"`
}
