// Package catalog holds the read-only product table that scanned codes are
// resolved against.
package catalog

import (
	"errors"
	"fmt"

	"github.com/Veraticus/shelfscan/internal/common"
	"github.com/Veraticus/shelfscan/internal/model"
)

var (
	// ErrInvalidProduct indicates a product that cannot be placed in a table.
	ErrInvalidProduct = errors.New("invalid product")
	// ErrAmbiguousKey indicates two barcodes that normalize to the same key.
	ErrAmbiguousKey = errors.New("ambiguous normalized barcode")
)

// Table is an immutable barcode -> product mapping. The zero value is an
// empty table.
type Table struct {
	byKey        map[string]model.Product
	byNormalized map[string]string
	order        []string
}

// New builds a table from products, preserving their order.
func New(products []model.Product) (*Table, error) {
	t := &Table{
		byKey:        make(map[string]model.Product, len(products)),
		byNormalized: make(map[string]string, len(products)),
		order:        make([]string, 0, len(products)),
	}

	for i, p := range products {
		if err := validate(p); err != nil {
			return nil, fmt.Errorf("product %d: %w", i, err)
		}
		if _, ok := t.byKey[p.Barcode]; ok {
			return nil, fmt.Errorf("barcode %q: %w", p.Barcode, common.ErrDuplicateEntry)
		}
		norm := Normalize(p.Barcode)
		if other, ok := t.byNormalized[norm]; ok {
			return nil, fmt.Errorf("%w: %q and %q both normalize to %q", ErrAmbiguousKey, other, p.Barcode, norm)
		}

		t.byKey[p.Barcode] = p
		t.byNormalized[norm] = p.Barcode
		t.order = append(t.order, p.Barcode)
	}

	return t, nil
}

func validate(p model.Product) error {
	switch {
	case p.Barcode == "":
		return fmt.Errorf("%w: barcode is required", ErrInvalidProduct)
	case Normalize(p.Barcode) == "":
		return fmt.Errorf("%w: barcode %q has no characters besides hyphens and whitespace", ErrInvalidProduct, p.Barcode)
	case p.Name == "":
		return fmt.Errorf("%w: name is required for %q", ErrInvalidProduct, p.Barcode)
	case p.Price.IsNegative():
		return fmt.Errorf("%w: negative price for %q", ErrInvalidProduct, p.Barcode)
	}
	return nil
}

// Lookup returns the product stored under exactly key.
func (t *Table) Lookup(key string) (model.Product, bool) {
	p, ok := t.byKey[key]
	return p, ok
}

// LookupNormalized returns the product whose normalized barcode equals
// Normalize(key).
func (t *Table) LookupNormalized(key string) (model.Product, bool) {
	barcode, ok := t.byNormalized[Normalize(key)]
	if !ok {
		return model.Product{}, false
	}
	return t.byKey[barcode], true
}

// Products returns a copy of the table's products in insertion order.
func (t *Table) Products() []model.Product {
	products := make([]model.Product, 0, len(t.order))
	for _, key := range t.order {
		products = append(products, t.byKey[key])
	}
	return products
}

// Len returns the number of products.
func (t *Table) Len() int {
	return len(t.order)
}
