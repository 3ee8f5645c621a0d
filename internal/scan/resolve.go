package scan

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/erazemk/skener/internal/model"
)

// ErrNotFound is returned when no lookup produced a product.
var ErrNotFound = errors.New("product not found")

// Catalog is the remote product search the resolver falls back to.
type Catalog interface {
	SearchProducts(ctx context.Context, query string) ([]model.Product, error)
}

// Resolution describes how a symbol was resolved.
type Resolution struct {
	Product   model.Product `json:"product"`
	Candidate string        `json:"candidate"`
	Strategy  string        `json:"strategy"`
	Source    string        `json:"source"` // "local", "search" or "search-raw"
}

// Resolver maps raw symbol text to a product. It keeps no mutable state, so
// overlapping resolutions for different symbols are safe.
type Resolver struct {
	Extractors []Extractor
	Catalog    Catalog
}

// NewResolver returns a resolver using DefaultExtractors.
func NewResolver(catalog Catalog) *Resolver {
	return &Resolver{Extractors: DefaultExtractors, Catalog: catalog}
}

// Resolve looks the symbol up in the loaded product list, then in the catalog by
// candidate, then in the catalog by raw text when that differs.
func (r *Resolver) Resolve(ctx context.Context, loaded []model.Product, raw string) (*Resolution, error) {
	raw = strings.TrimSpace(raw)
	candidate, strategy := ExtractCandidate(r.Extractors, raw)
	res := &Resolution{Candidate: candidate, Strategy: strategy}

	if p, ok := matchLoaded(loaded, candidate, raw); ok {
		res.Product, res.Source = p, "local"
		return res, nil
	}

	if r.Catalog == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, candidate)
	}

	p, ok, err := r.search(ctx, candidate)
	if err != nil {
		return nil, err
	}
	if ok {
		res.Product, res.Source = p, "search"
		return res, nil
	}

	if candidate != raw && raw != "" {
		p, ok, err = r.search(ctx, raw)
		if err != nil {
			return nil, err
		}
		if ok {
			res.Product, res.Source = p, "search-raw"
			return res, nil
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrNotFound, candidate)
}

func (r *Resolver) search(ctx context.Context, query string) (model.Product, bool, error) {
	if query == "" {
		return model.Product{}, false, nil
	}
	results, err := r.Catalog.SearchProducts(ctx, query)
	if err != nil {
		return model.Product{}, false, fmt.Errorf("searching products for %q: %w", query, err)
	}
	if len(results) == 0 {
		return model.Product{}, false, nil
	}
	if p, ok := matchLoaded(results, query, query); ok {
		return p, true, nil
	}
	return results[0], true, nil
}

// matchLoaded finds a product whose id, serial number or QR payload equals the
// candidate, first exactly and then ignoring case. The raw text is also compared
// with QR payloads, which store whatever was printed on the label.
func matchLoaded(products []model.Product, candidate, raw string) (model.Product, bool) {
	if candidate == "" {
		return model.Product{}, false
	}
	exact := func(a, b string) bool { return a != "" && a == b }
	for _, eq := range []func(a, b string) bool{exact, strings.EqualFold} {
		for _, p := range products {
			if eq(p.ID, candidate) || (p.SerialNumber != "" && eq(p.SerialNumber, candidate)) ||
				(p.QRPayload != "" && (eq(p.QRPayload, candidate) || eq(p.QRPayload, raw))) {
				return p, true
			}
		}
	}
	return model.Product{}, false
}
