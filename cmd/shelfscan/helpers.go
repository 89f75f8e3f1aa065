package main

import (
	"fmt"

	"github.com/Veraticus/shelfscan/internal/catalog"
	"github.com/Veraticus/shelfscan/internal/common"
	"github.com/Veraticus/shelfscan/internal/config"
	"github.com/Veraticus/shelfscan/internal/decoder"
	"github.com/Veraticus/shelfscan/internal/scanner"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// bindFlags binds flags to viper keys. Several commands share keys, so the
// binding is made when a command runs rather than when it is built.
func bindFlags(cmd *cobra.Command, keys map[string]string) error {
	for flag, key := range keys {
		if err := viper.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return fmt.Errorf("failed to bind --%s: %w", flag, err)
		}
	}
	return nil
}

// loadSettings reads and validates the configuration.
func loadSettings() (config.Settings, error) {
	settings, err := config.Load(viper.GetViper())
	if err != nil {
		return config.Settings{}, common.NewUserError(
			fmt.Sprintf("Invalid configuration: %v", err), err)
	}
	return settings, nil
}

// loadCatalog builds the product table named by the settings.
func loadCatalog(settings config.Settings) (*catalog.Table, error) {
	table, err := catalog.Load(settings.CatalogPath)
	if err != nil {
		return nil, common.NewUserError(
			fmt.Sprintf("Could not load product catalog %s", settings.CatalogPath), err)
	}
	return table, nil
}

// newController wires the configured decoder to a scanner controller. The
// simulated decoder plays the catalog's codes in order.
func newController(settings config.Settings, table *catalog.Table, listener scanner.Listener, opts ...scanner.Option) (*scanner.Controller, scanner.Decoder, error) {
	codes := make([]string, 0, table.Len())
	for _, p := range table.Products() {
		codes = append(codes, p.Barcode)
	}

	dec, err := decoder.New(settings, codes)
	if err != nil {
		return nil, nil, err
	}

	cfg := scanner.DefaultConfig()
	cfg.FrameRate = settings.FrameRate

	opts = append([]scanner.Option{
		scanner.WithConfig(cfg),
		scanner.WithCooldown(settings.Cooldown),
	}, opts...)

	return scanner.New(dec, listener, opts...), dec, nil
}

// deviceLabel describes the capture device for display.
func deviceLabel(settings config.Settings) string {
	if settings.Decoder == config.DecoderSimulated {
		return "simulated"
	}
	if settings.ReadsStdin() {
		return "stdin"
	}
	return settings.Device
}
