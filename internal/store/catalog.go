package store

import (
	"context"
	"database/sql"

	"github.com/erazemk/skener/internal/model"
)

// Catalog exposes the product and transaction tables to scanning sessions:
// it serves as the product catalog (loaded list plus remote search) and the
// transaction service.
type Catalog struct {
	DB          *sql.DB
	SearchLimit int
}

// LoadProducts returns the product list a session starts with.
func (c *Catalog) LoadProducts(ctx context.Context) ([]model.Product, error) {
	return ListProducts(ctx, c.DB, "")
}

// SearchProducts implements scan.Catalog.
func (c *Catalog) SearchProducts(ctx context.Context, query string) ([]model.Product, error) {
	return SearchProducts(ctx, c.DB, query, c.SearchLimit)
}

// CreateTransaction implements scan.TransactionService.
func (c *Catalog) CreateTransaction(ctx context.Context, req *model.CreateTransactionRequest) (*model.Transaction, error) {
	return CreateTransaction(ctx, c.DB, req)
}
