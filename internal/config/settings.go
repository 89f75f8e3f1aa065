package config

import (
	"fmt"
	"time"

	"github.com/Veraticus/shelfscan/internal/common"
	"github.com/spf13/viper"
)

// Decoder kinds understood by the scan commands.
const (
	DecoderDevice    = "device"
	DecoderSimulated = "simulated"
)

// Settings is the typed view of the application configuration.
type Settings struct {
	CatalogPath  string
	Decoder      string
	Device       string
	Theme        string
	LogLevel     string
	LogFormat    string
	LogFile      string
	Cooldown     time.Duration
	FrameRate    int
	HoldFrames   int
	SimulatedSet []string
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.file", "$HOME/.local/state/shelfscan/shelfscan.log")
	v.SetDefault("scanner.decoder", DecoderSimulated)
	v.SetDefault("scanner.device", "/dev/hidraw0")
	v.SetDefault("scanner.cooldown", 2*time.Second)
	v.SetDefault("scanner.fps", 10)
	v.SetDefault("scanner.hold_frames", 5)
	v.SetDefault("tui.theme", "default")
}

// Load reads Settings out of v and validates them.
func Load(v *viper.Viper) (Settings, error) {
	s := Settings{
		CatalogPath:  ExpandPath(v.GetString("catalog.path")),
		Decoder:      v.GetString("scanner.decoder"),
		Device:       ExpandPath(v.GetString("scanner.device")),
		Theme:        v.GetString("tui.theme"),
		LogLevel:     v.GetString("logging.level"),
		LogFormat:    v.GetString("logging.format"),
		LogFile:      ExpandPath(v.GetString("logging.file")),
		Cooldown:     v.GetDuration("scanner.cooldown"),
		FrameRate:    v.GetInt("scanner.fps"),
		HoldFrames:   v.GetInt("scanner.hold_frames"),
		SimulatedSet: v.GetStringSlice("scanner.simulated_codes"),
	}

	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate checks that the settings are usable.
func (s Settings) Validate() error {
	switch s.Decoder {
	case DecoderDevice:
		if s.Device == "" {
			return fmt.Errorf("%w: scanner.device is required for the device decoder", common.ErrMissingConfig)
		}
	case DecoderSimulated:
	default:
		return fmt.Errorf("%w: unknown scanner.decoder %q", common.ErrInvalidConfig, s.Decoder)
	}
	if s.Cooldown <= 0 {
		return fmt.Errorf("%w: scanner.cooldown must be positive", common.ErrInvalidConfig)
	}
	if s.FrameRate <= 0 {
		return fmt.Errorf("%w: scanner.fps must be positive", common.ErrInvalidConfig)
	}
	if s.HoldFrames <= 0 {
		return fmt.Errorf("%w: scanner.hold_frames must be positive", common.ErrInvalidConfig)
	}
	return nil
}
