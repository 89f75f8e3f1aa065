package catalog

import (
	"github.com/Veraticus/shelfscan/internal/model"
	"github.com/shopspring/decimal"
)

const (
	productImage = "/placeholder-product.jpg"
	bookImage    = "/placeholder-book.jpg"
)

// DefaultProducts returns the demo product set.
func DefaultProducts() []model.Product {
	return []model.Product{
		{Barcode: "012345678905", Name: "Wireless Mouse", Price: decimal.RequireFromString("29.99"), Image: productImage},
		{Barcode: "5901234123457", Name: "Sample Product", Price: decimal.RequireFromString("19.99"), Image: productImage},
		{Barcode: "978-0-123456-78-9", Name: "Programming Book", Price: decimal.RequireFromString("49.99"), Image: bookImage},
		{Barcode: "QR-TEST-12345", Name: "QR Code Product", Price: decimal.RequireFromString("99.99"), Image: productImage},
		{Barcode: "5901234123488", Name: "Headphone", Price: decimal.RequireFromString("79.99"), Image: productImage},
	}
}

// Default returns a table holding DefaultProducts.
func Default() *Table {
	t, err := New(DefaultProducts())
	if err != nil {
		panic("catalog: invalid default products: " + err.Error())
	}
	return t
}
