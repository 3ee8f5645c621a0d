package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/erazemk/skener/internal/model"
	"github.com/erazemk/skener/internal/scan"
)

// ErrIncompatible is returned when a line no longer passes the transaction-type
// rules against the product's current state.
var ErrIncompatible = errors.New("product incompatible with transaction")

var (
	// ErrInvalidTransaction is returned for malformed create requests.
	ErrInvalidTransaction = errors.New("invalid transaction")

	// ErrDuplicateReference is returned when the reference number is taken.
	ErrDuplicateReference = errors.New("reference number already used")
)

// CreateTransaction records a transaction and applies its effects on products in a
// single database transaction. Every line is re-checked against current product
// state; one failing line rejects the whole request.
func CreateTransaction(ctx context.Context, db *sql.DB, req *model.CreateTransactionRequest) (*model.Transaction, error) {
	if req.TransactionType == "" || req.ReferenceNo == "" {
		return nil, fmt.Errorf("%w: transaction type and reference number required", ErrInvalidTransaction)
	}
	if !model.ValidTransactionType(req.TransactionType) {
		return nil, fmt.Errorf("%w: unknown transaction type %q", ErrInvalidTransaction, req.TransactionType)
	}
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: no items", ErrInvalidTransaction)
	}
	if req.Status == "" {
		req.Status = model.TxStatusOpen
	}

	seen := make(map[string]bool, len(req.Items))
	for _, it := range req.Items {
		if it.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity must be positive for %s", ErrInvalidTransaction, it.ProductID)
		}
		if seen[it.ProductID] {
			return nil, fmt.Errorf("%w: duplicate line for %s", ErrInvalidTransaction, it.ProductID)
		}
		seen[it.ProductID] = true
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`INSERT INTO transactions (transaction_type, reference_no, first_person, second_person,
		                           location, notes, status, transaction_date, created_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		req.TransactionType, req.ReferenceNo, req.FirstPerson, nullString(req.SecondPerson),
		req.Location, nullString(req.Notes), req.Status, req.TransactionDate, req.CreatedBy,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: transactions.reference_no") {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateReference, req.ReferenceNo)
		}
		return nil, fmt.Errorf("recording transaction: %w", err)
	}
	txID, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting transaction id: %w", err)
	}

	holder := strings.TrimSpace(req.FirstPerson)
	for _, it := range req.Items {
		if err := applyItem(ctx, tx, req.TransactionType, holder, it); err != nil {
			return nil, err
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO transaction_items (transaction_id, product_id, quantity, condition_before,
			                                condition_after, status, notes)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			txID, it.ProductID, it.Quantity, it.ConditionBefore,
			nullString(it.ConditionAfter), it.Status, nullString(it.Notes),
		)
		if err != nil {
			return nil, fmt.Errorf("recording item %s: %w", it.ProductID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}

	return GetTransaction(ctx, db, txID)
}

// applyItem re-validates one line and updates the product it refers to.
// Checked-out units are tracked per holder so a partial check-out can be
// returned later.
func applyItem(ctx context.Context, tx *sql.Tx, txType, holder string, it model.CreateTransactionItem) error {
	var p model.Product
	err := tx.QueryRowContext(ctx,
		`SELECT id, name, status, quantity, condition,
		        (SELECT COALESCE(SUM(h.quantity), 0) FROM holdings h WHERE h.product_id = products.id)
		 FROM products WHERE id = ? AND deleted_at IS NULL`,
		it.ProductID,
	).Scan(&p.ID, &p.Name, &p.Status, &p.Quantity, &p.Condition, &p.CheckedOut)
	if err == sql.ErrNoRows {
		return fmt.Errorf("%w: %s", ErrProductNotFound, it.ProductID)
	}
	if err != nil {
		return fmt.Errorf("checking product %s: %w", it.ProductID, err)
	}

	if v := scan.Check(p, txType); !v.Allowed {
		return fmt.Errorf("%w: %s: %s", ErrIncompatible, p.ID, v.Reason)
	}

	status, quantity := p.Status, p.Quantity
	switch txType {
	case model.TxCheckOut:
		if p.Quantity < it.Quantity {
			return fmt.Errorf("%w: %s: insufficient quantity: have %d, need %d",
				ErrIncompatible, p.ID, p.Quantity, it.Quantity)
		}
		quantity -= it.Quantity
		if quantity == 0 {
			status = model.StatusCheckedOut
		}
		if err := addHolding(ctx, tx, p.ID, holder, it.Quantity); err != nil {
			return err
		}
	case model.TxCheckIn:
		// Products marked out by hand have no holdings; only tracked units are capped.
		if p.CheckedOut > 0 {
			if it.Quantity > p.CheckedOut {
				return fmt.Errorf("%w: %s: returning %d, only %d checked out",
					ErrIncompatible, p.ID, it.Quantity, p.CheckedOut)
			}
			if err := releaseHoldings(ctx, tx, p.ID, holder, it.Quantity); err != nil {
				return err
			}
		}
		quantity += it.Quantity
		status = model.StatusAvailable
	case model.TxMaintenance:
		status = model.StatusMaintenance
	case model.TxRepair:
		status = model.StatusRepair
	case model.TxLost:
		status = model.StatusLost
	}

	condition := p.Condition
	if it.ConditionAfter != "" {
		condition = it.ConditionAfter
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE products SET status = ?, quantity = ?, condition = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		status, quantity, condition, p.ID,
	)
	if err != nil {
		return fmt.Errorf("updating product %s: %w", p.ID, err)
	}
	return nil
}

const transactionColumns = `id, transaction_type, reference_no, first_person, second_person,
	location, notes, status, transaction_date, created_by`

func scanTransaction(row rowScanner) (model.Transaction, error) {
	var t model.Transaction
	var second, notes sql.NullString
	err := row.Scan(&t.ID, &t.TransactionType, &t.ReferenceNo, &t.FirstPerson, &second,
		&t.Location, &notes, &t.Status, &t.TransactionDate, &t.CreatedBy)
	t.SecondPerson = second.String
	t.Notes = notes.String
	return t, err
}

// GetTransaction returns a transaction with its items, or nil if it does not exist.
func GetTransaction(ctx context.Context, db *sql.DB, id int64) (*model.Transaction, error) {
	t, err := scanTransaction(db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting transaction: %w", err)
	}

	items, err := listTransactionItems(ctx, db, &id)
	if err != nil {
		return nil, err
	}
	t.Items = items[id]
	return &t, nil
}

// ListTransactions returns transactions newest first, optionally filtered by type.
func ListTransactions(ctx context.Context, db *sql.DB, txType string) ([]model.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE 1=1`
	var args []any
	if txType != "" {
		query += ` AND transaction_type = ?`
		args = append(args, txType)
	}
	query += ` ORDER BY transaction_date DESC, id DESC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	defer rows.Close()

	var transactions []model.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	items, err := listTransactionItems(ctx, db, nil)
	if err != nil {
		return nil, err
	}
	for i := range transactions {
		transactions[i].Items = items[transactions[i].ID]
	}
	return transactions, nil
}

// listTransactionItems loads items grouped by transaction id. A nil id loads all.
func listTransactionItems(ctx context.Context, db *sql.DB, txID *int64) (map[int64][]model.TransactionItem, error) {
	query := `SELECT ti.id, ti.transaction_id, ti.product_id, ti.quantity, ti.condition_before,
	                 ti.condition_after, ti.status, ti.notes, p.name AS product_name
	          FROM transaction_items ti
	          JOIN products p ON p.id = ti.product_id`
	var args []any
	if txID != nil {
		query += ` WHERE ti.transaction_id = ?`
		args = append(args, *txID)
	}
	query += ` ORDER BY ti.transaction_id, ti.id`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing transaction items: %w", err)
	}
	defer rows.Close()

	items := make(map[int64][]model.TransactionItem)
	for rows.Next() {
		var it model.TransactionItem
		var after, notes sql.NullString
		if err := rows.Scan(&it.ID, &it.TransactionID, &it.ProductID, &it.Quantity,
			&it.ConditionBefore, &after, &it.Status, &notes, &it.ProductName); err != nil {
			return nil, fmt.Errorf("scanning transaction item: %w", err)
		}
		it.ConditionAfter = after.String
		it.Notes = notes.String
		items[it.TransactionID] = append(items[it.TransactionID], it)
	}
	return items, rows.Err()
}
