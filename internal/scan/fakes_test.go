package scan

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/erazemk/skener/internal/model"
)

// fakeCatalog serves products from memory and records search queries. Search
// matches identifiers exactly (ignoring case) and names by substring.
type fakeCatalog struct {
	mu       sync.Mutex
	products []model.Product
	queries  []string
	err      error

	// block, when set, holds every search until it is closed.
	block chan struct{}
}

func (c *fakeCatalog) LoadProducts(ctx context.Context) ([]model.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]model.Product(nil), c.products...), nil
}

func (c *fakeCatalog) SearchProducts(ctx context.Context, query string) ([]model.Product, error) {
	c.mu.Lock()
	c.queries = append(c.queries, query)
	block, err := c.block, c.err
	c.mu.Unlock()

	if block != nil {
		<-block
	}
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	var out []model.Product
	for _, p := range c.products {
		if strings.EqualFold(p.ID, query) || strings.EqualFold(p.SerialNumber, query) ||
			strings.EqualFold(p.QRPayload, query) ||
			strings.Contains(strings.ToLower(p.Name), strings.ToLower(query)) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (c *fakeCatalog) Queries() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.queries...)
}

// fakeTransactions records requests and optionally fails.
type fakeTransactions struct {
	mu   sync.Mutex
	reqs []model.CreateTransactionRequest
	err  error
}

func (f *fakeTransactions) CreateTransaction(ctx context.Context, req *model.CreateTransactionRequest) (*model.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reqs = append(f.reqs, *req)
	if f.err != nil {
		return nil, f.err
	}
	return &model.Transaction{
		ID:              int64(len(f.reqs)),
		TransactionType: req.TransactionType,
		ReferenceNo:     req.ReferenceNo,
		FirstPerson:     req.FirstPerson,
		Location:        req.Location,
		Status:          req.Status,
		TransactionDate: req.TransactionDate,
	}, nil
}

// manualClock is a settable clock.
type manualClock struct {
	mu sync.Mutex
	t  time.Time
}

func newManualClock() *manualClock {
	return &manualClock{t: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func cable() model.Product {
	return model.Product{ID: "CAB004", Name: "HDMI cable", Status: model.StatusAvailable, Quantity: 5, Condition: model.ConditionGood}
}

func laptop() model.Product {
	return model.Product{ID: "LAP001", Name: "ThinkPad", Status: model.StatusInUse, Quantity: 1, Condition: model.ConditionFair, SerialNumber: "PF-2X9KQ"}
}
