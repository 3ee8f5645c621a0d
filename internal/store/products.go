package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/erazemk/skener/internal/model"
)

// ErrProductNotFound is returned when a product id does not exist or was deleted.
var ErrProductNotFound = errors.New("product not found")

const productColumns = `id, name, brand, status, quantity,
	(SELECT COALESCE(SUM(h.quantity), 0) FROM holdings h WHERE h.product_id = products.id),
	condition, serial_number, qr_payload, image_mime, created_at, updated_at, deleted_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (model.Product, error) {
	var p model.Product
	var brand, serial, qr, imageMime sql.NullString
	err := row.Scan(&p.ID, &p.Name, &brand, &p.Status, &p.Quantity, &p.CheckedOut, &p.Condition,
		&serial, &qr, &imageMime, &p.CreatedAt, &p.UpdatedAt, &p.DeletedAt)
	if err != nil {
		return p, err
	}
	p.Brand = brand.String
	p.SerialNumber = serial.String
	p.QRPayload = qr.String
	p.ImageMime = imageMime.String
	return p, nil
}

func scanProducts(rows *sql.Rows) ([]model.Product, error) {
	var products []model.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// CreateProduct inserts a product. Status defaults to Available and condition to Good.
func CreateProduct(ctx context.Context, db *sql.DB, p model.Product) (*model.Product, error) {
	if p.ID == "" || p.Name == "" {
		return nil, fmt.Errorf("product id and name required")
	}
	if p.Status == "" {
		p.Status = model.StatusAvailable
	}
	if p.Condition == "" {
		p.Condition = model.ConditionGood
	}
	if p.Quantity < 0 {
		return nil, fmt.Errorf("quantity must not be negative")
	}

	_, err := db.ExecContext(ctx,
		`INSERT INTO products (id, name, brand, status, quantity, condition, serial_number, qr_payload)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, nullString(p.Brand), p.Status, p.Quantity, p.Condition,
		nullString(p.SerialNumber), nullString(p.QRPayload),
	)
	if err != nil {
		return nil, fmt.Errorf("creating product: %w", err)
	}

	return GetProduct(ctx, db, p.ID)
}

// GetProduct returns a product by ID, or nil if it does not exist.
func GetProduct(ctx context.Context, db *sql.DB, id string) (*model.Product, error) {
	p, err := scanProduct(db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting product: %w", err)
	}
	return &p, nil
}

// ListProducts returns all non-deleted products, optionally filtered by status.
func ListProducts(ctx context.Context, db *sql.DB, status string) ([]model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE deleted_at IS NULL`
	var args []any
	if status != "" {
		query += ` AND status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY id`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

// likeEscaper escapes LIKE wildcards; product codes often contain underscores.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// SearchProducts finds non-deleted products whose id, serial number or QR payload
// equal the query (case-insensitive), or whose id, name, brand or serial number
// contain it. Identifier matches sort first.
func SearchProducts(ctx context.Context, db *sql.DB, query string, limit int) ([]model.Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}
	like := "%" + likeEscaper.Replace(query) + "%"

	rows, err := db.QueryContext(ctx,
		`SELECT `+productColumns+`
		 FROM products
		 WHERE deleted_at IS NULL AND (
		     id = ? COLLATE NOCASE OR serial_number = ? COLLATE NOCASE OR qr_payload = ?
		     OR id LIKE ? ESCAPE '\' OR name LIKE ? ESCAPE '\'
		     OR brand LIKE ? ESCAPE '\' OR serial_number LIKE ? ESCAPE '\'
		 )
		 ORDER BY CASE
		     WHEN id = ? COLLATE NOCASE THEN 0
		     WHEN serial_number = ? COLLATE NOCASE THEN 1
		     WHEN qr_payload = ? THEN 2
		     ELSE 3
		 END, id
		 LIMIT ?`,
		query, query, query,
		like, like, like, like,
		query, query, query,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("searching products: %w", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

// UpdateProduct updates a product's metadata, status, quantity and condition.
func UpdateProduct(ctx context.Context, db *sql.DB, p model.Product) error {
	if !model.ValidStatus(p.Status) {
		return fmt.Errorf("invalid status %q", p.Status)
	}
	if !model.ValidCondition(p.Condition) {
		return fmt.Errorf("invalid condition %q", p.Condition)
	}
	res, err := db.ExecContext(ctx,
		`UPDATE products
		 SET name = ?, brand = ?, status = ?, quantity = ?, condition = ?,
		     serial_number = ?, qr_payload = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND deleted_at IS NULL`,
		p.Name, nullString(p.Brand), p.Status, p.Quantity, p.Condition,
		nullString(p.SerialNumber), nullString(p.QRPayload), p.ID,
	)
	if err != nil {
		return fmt.Errorf("updating product: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrProductNotFound
	}
	return nil
}

// DeleteProduct soft-deletes a product.
func DeleteProduct(ctx context.Context, db *sql.DB, id string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE products SET deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND deleted_at IS NULL`,
		id,
	)
	if err != nil {
		return fmt.Errorf("deleting product: %w", err)
	}
	return nil
}

// SetProductImage sets a product's image data.
func SetProductImage(ctx context.Context, db *sql.DB, id string, image []byte, mime string) error {
	res, err := db.ExecContext(ctx,
		`UPDATE products SET image = ?, image_mime = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND deleted_at IS NULL`,
		image, mime, id,
	)
	if err != nil {
		return fmt.Errorf("setting product image: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrProductNotFound
	}
	return nil
}

// GetProductImage returns a product's image data and MIME type.
func GetProductImage(ctx context.Context, db *sql.DB, id string) ([]byte, string, error) {
	var image []byte
	var mime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT image, image_mime FROM products WHERE id = ?`, id,
	).Scan(&image, &mime)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting product image: %w", err)
	}
	return image, mime.String, nil
}
