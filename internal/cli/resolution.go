package cli

import (
	"errors"
	"fmt"

	"github.com/Veraticus/shelfscan/internal/common"
	"github.com/Veraticus/shelfscan/internal/money"
	"github.com/Veraticus/shelfscan/internal/resolver"
)

// FormatMatch renders a resolved code on one line.
func FormatMatch(m resolver.Match) string {
	line := fmt.Sprintf("%s → %s %s", m.Input, BoldStyle.Render(m.Product.Name), money.Format(m.Product.Price))
	if m.Strategy != resolver.StrategyRaw {
		line += " " + SubtleStyle.Render(fmt.Sprintf("(matched %s as %s)", m.Strategy, m.Product.Barcode))
	}
	return FormatSuccess(line)
}

// FormatResolution renders the outcome of resolving one code.
func FormatResolution(m resolver.Match, err error) string {
	switch {
	case err == nil:
		return FormatMatch(m)
	case errors.Is(err, common.ErrNotFound):
		return FormatWarning(err.Error())
	default:
		return FormatError(common.UserMessage(err))
	}
}
