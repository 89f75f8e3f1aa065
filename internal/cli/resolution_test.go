package cli

import (
	"errors"
	"testing"

	"github.com/Veraticus/shelfscan/internal/catalog"
	"github.com/Veraticus/shelfscan/internal/common"
	"github.com/Veraticus/shelfscan/internal/resolver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatResolution(t *testing.T) {
	r := resolver.New(catalog.Default())

	t.Run("raw match", func(t *testing.T) {
		m, err := r.Resolve("012345678905")
		require.NoError(t, err)

		out := FormatResolution(m, err)
		assert.Contains(t, out, SuccessIcon)
		assert.Contains(t, out, "Wireless Mouse")
		assert.Contains(t, out, "29.99")
		assert.NotContains(t, out, "matched")
	})

	t.Run("normalized match names the key", func(t *testing.T) {
		m, err := r.Resolve("9780123456789")
		require.NoError(t, err)

		out := FormatResolution(m, err)
		assert.Contains(t, out, "Programming Book")
		assert.Contains(t, out, "978-0-123456-78-9")
	})

	t.Run("not found", func(t *testing.T) {
		m, err := r.Resolve("nope")
		out := FormatResolution(m, err)
		assert.Contains(t, out, `Product with barcode "nope" not found in database`)
	})

	t.Run("other error", func(t *testing.T) {
		err := common.NewUserError("catalog unavailable", errors.New("disk"))
		out := FormatResolution(resolver.Match{}, err)
		assert.Contains(t, out, ErrorIcon)
		assert.Contains(t, out, "catalog unavailable")
	})
}

func TestRenderBox(t *testing.T) {
	out := RenderBox("Products", "five of them")
	assert.Contains(t, out, "Products")
	assert.Contains(t, out, "five of them")
}
