package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/skener/internal/model"
)

// ListHoldings returns who has which products checked out, optionally for one product.
func ListHoldings(ctx context.Context, db *sql.DB, productID string) ([]model.Holding, error) {
	query := `SELECT h.product_id, p.name, h.holder, h.quantity, h.updated_at
	          FROM holdings h
	          JOIN products p ON p.id = h.product_id`
	var args []any
	if productID != "" {
		query += ` WHERE h.product_id = ?`
		args = append(args, productID)
	}
	query += ` ORDER BY h.product_id, h.holder`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing holdings: %w", err)
	}
	defer rows.Close()

	var holdings []model.Holding
	for rows.Next() {
		var h model.Holding
		if err := rows.Scan(&h.ProductID, &h.ProductName, &h.Holder, &h.Quantity, &h.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning holding: %w", err)
		}
		holdings = append(holdings, h)
	}
	return holdings, rows.Err()
}

// addHolding records quantity more units of productID with holder.
func addHolding(ctx context.Context, tx *sql.Tx, productID, holder string, quantity int) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO holdings (product_id, holder, quantity) VALUES (?, ?, ?)
		 ON CONFLICT (product_id, holder)
		 DO UPDATE SET quantity = quantity + excluded.quantity, updated_at = CURRENT_TIMESTAMP`,
		productID, holder, quantity,
	)
	if err != nil {
		return fmt.Errorf("recording holding of %s: %w", productID, err)
	}
	return nil
}

// releaseHoldings takes quantity units of productID back, from holder first and
// then from the oldest other holdings. The caller ensures enough units are out.
func releaseHoldings(ctx context.Context, tx *sql.Tx, productID, holder string, quantity int) error {
	rows, err := tx.QueryContext(ctx,
		`SELECT holder, quantity FROM holdings WHERE product_id = ?
		 ORDER BY holder = ? DESC, updated_at, holder`,
		productID, holder,
	)
	if err != nil {
		return fmt.Errorf("loading holdings of %s: %w", productID, err)
	}

	type holding struct {
		holder   string
		quantity int
	}
	var held []holding
	for rows.Next() {
		var h holding
		if err := rows.Scan(&h.holder, &h.quantity); err != nil {
			rows.Close()
			return fmt.Errorf("scanning holding: %w", err)
		}
		held = append(held, h)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, h := range held {
		if quantity == 0 {
			break
		}
		take := min(h.quantity, quantity)
		quantity -= take

		if take == h.quantity {
			_, err = tx.ExecContext(ctx,
				`DELETE FROM holdings WHERE product_id = ? AND holder = ?`, productID, h.holder)
		} else {
			_, err = tx.ExecContext(ctx,
				`UPDATE holdings SET quantity = quantity - ?, updated_at = CURRENT_TIMESTAMP
				 WHERE product_id = ? AND holder = ?`,
				take, productID, h.holder)
		}
		if err != nil {
			return fmt.Errorf("releasing holding of %s: %w", productID, err)
		}
	}
	return nil
}
