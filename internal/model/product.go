// Package model defines the core domain types shared across packages.
package model

import "github.com/shopspring/decimal"

// Product is a catalog entry keyed by its barcode.
type Product struct {
	Price   decimal.Decimal
	Barcode string
	Name    string
	Image   string
}
