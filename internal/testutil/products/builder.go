// Package products builds product catalogs for tests.
//
// Example usage:
//
//	table := products.NewBuilder(t).
//		WithDefaults().
//		WithProduct("ABC-123", "Widget", "4.50").
//		Build()
package products

import (
	"testing"

	"github.com/Veraticus/shelfscan/internal/catalog"
	"github.com/Veraticus/shelfscan/internal/model"
	"github.com/shopspring/decimal"
)

// Builder collects products and turns them into a catalog table. Invalid
// input fails the test that owns the builder.
type Builder struct {
	t        testing.TB
	products []model.Product
}

// NewBuilder creates an empty builder.
func NewBuilder(t testing.TB) *Builder {
	t.Helper()
	return &Builder{t: t}
}

// WithDefaults adds the built-in demo products.
func (b *Builder) WithDefaults() *Builder {
	b.products = append(b.products, catalog.DefaultProducts()...)
	return b
}

// WithProduct adds one product. price must be a decimal string.
func (b *Builder) WithProduct(barcode, name, price string) *Builder {
	b.t.Helper()
	d, err := decimal.NewFromString(price)
	if err != nil {
		b.t.Fatalf("invalid price %q for %s: %v", price, barcode, err)
	}
	b.products = append(b.products, model.Product{
		Barcode: barcode,
		Name:    name,
		Price:   d,
		Image:   "/placeholder-product.jpg",
	})
	return b
}

// Products returns the collected products.
func (b *Builder) Products() []model.Product {
	return append([]model.Product(nil), b.products...)
}

// Build creates the table.
func (b *Builder) Build() *catalog.Table {
	b.t.Helper()
	table, err := catalog.New(b.products)
	if err != nil {
		b.t.Fatalf("failed to build catalog: %v", err)
	}
	return table
}
