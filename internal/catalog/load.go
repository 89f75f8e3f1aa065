package catalog

import (
	"fmt"
	"os"

	"github.com/Veraticus/shelfscan/internal/model"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// File is the on-disk catalog layout.
//
//	products:
//	  - barcode: "012345678905"
//	    name: Wireless Mouse
//	    price: 29.99
//	    image: /placeholder-product.jpg
type File struct {
	Products []fileProduct `yaml:"products"`
}

type fileProduct struct {
	Barcode string `yaml:"barcode"`
	Name    string `yaml:"name"`
	Image   string `yaml:"image"`
	Price   price  `yaml:"price"`
}

// price keeps the literal text of the YAML scalar so amounts never pass
// through float64.
type price struct {
	decimal.Decimal
}

func (p *price) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: price must be a scalar", node.Line)
	}
	d, err := decimal.NewFromString(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: invalid price %q: %w", node.Line, node.Value, err)
	}
	p.Decimal = d
	return nil
}

// Parse builds a table from YAML catalog data.
func Parse(data []byte) (*Table, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	products := make([]model.Product, 0, len(f.Products))
	for _, p := range f.Products {
		products = append(products, model.Product{
			Barcode: p.Barcode,
			Name:    p.Name,
			Price:   p.Price.Decimal,
			Image:   p.Image,
		})
	}

	return New(products)
}

// Load reads a YAML catalog from path. An empty path yields Default().
func Load(path string) (*Table, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path) // #nosec G304 -- path comes from user configuration
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	t, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}
