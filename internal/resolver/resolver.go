// Package resolver turns decoded scanner text into a catalog product.
package resolver

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/shelfscan/internal/catalog"
	"github.com/Veraticus/shelfscan/internal/common"
	"github.com/Veraticus/shelfscan/internal/model"
)

// Strategy names the candidate key that produced a match.
type Strategy string

const (
	StrategyRaw        Strategy = "raw"
	StrategyCleaned    Strategy = "cleaned"
	StrategyTrimmed    Strategy = "trimmed"
	StrategyNormalized Strategy = "normalized"
)

// Match is a successful resolution.
type Match struct {
	Product  model.Product
	Input    string
	Strategy Strategy
}

// NotFoundError reports scanned text that matches no product.
type NotFoundError struct {
	Barcode string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("Product with barcode \"%s\" not found in database", e.Barcode)
}

// Is lets errors.Is(err, common.ErrNotFound) match.
func (e *NotFoundError) Is(target error) bool {
	return target == common.ErrNotFound
}

// Resolver looks scanned text up in a product table.
type Resolver struct {
	table *catalog.Table
}

// New creates a resolver over table.
func New(table *catalog.Table) *Resolver {
	return &Resolver{table: table}
}

// Resolve tries the raw text, then the text with hyphens and whitespace
// removed, then the trimmed text, and finally a case-insensitive comparison
// against every normalized key.
func (r *Resolver) Resolve(raw string) (Match, error) {
	cleaned := catalog.Clean(raw)
	candidates := []struct {
		key      string
		strategy Strategy
	}{
		{raw, StrategyRaw},
		{cleaned, StrategyCleaned},
		{strings.TrimSpace(raw), StrategyTrimmed},
	}

	for _, c := range candidates {
		if p, ok := r.table.Lookup(c.key); ok {
			return r.found(raw, p, c.strategy), nil
		}
	}

	// cleaned is already free of separators, so this only folds case.
	if p, ok := r.table.LookupNormalized(cleaned); ok {
		return r.found(raw, p, StrategyNormalized), nil
	}

	slog.Debug("No product matched scanned text",
		"raw", raw,
		"cleaned", cleaned,
		"products", r.table.Len())

	return Match{}, &NotFoundError{Barcode: raw}
}

func (r *Resolver) found(raw string, p model.Product, strategy Strategy) Match {
	slog.Debug("Resolved scanned text",
		"raw", raw,
		"barcode", p.Barcode,
		"strategy", strategy)

	return Match{
		Product:  p,
		Input:    raw,
		Strategy: strategy,
	}
}
