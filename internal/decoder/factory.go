package decoder

import (
	"fmt"

	"github.com/Veraticus/shelfscan/internal/common"
	"github.com/Veraticus/shelfscan/internal/config"
	"github.com/Veraticus/shelfscan/internal/scanner"
)

// Injector is implemented by decoders that accept codes pushed by hand.
type Injector interface {
	Inject(code string) bool
}

// New builds the decoder selected by the settings. fallback is the script
// used by the simulated decoder when no codes are configured.
func New(s config.Settings, fallback []string) (scanner.Decoder, error) {
	switch s.Decoder {
	case config.DecoderDevice:
		return NewDevice(s.Device), nil
	case config.DecoderSimulated:
		codes := s.SimulatedSet
		if len(codes) == 0 {
			codes = fallback
		}
		return NewSimulated(codes, WithHoldFrames(s.HoldFrames)), nil
	default:
		return nil, fmt.Errorf("%w: unknown decoder %q", common.ErrInvalidConfig, s.Decoder)
	}
}
