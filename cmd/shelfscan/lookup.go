package main

import (
	"fmt"

	"github.com/Veraticus/shelfscan/internal/cli"
	"github.com/Veraticus/shelfscan/internal/common"
	"github.com/Veraticus/shelfscan/internal/resolver"
	"github.com/spf13/cobra"
)

func lookupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <code>...",
		Short: "Look up scanned text without a scanner",
		Long: `Resolve each argument the way a scanned code is resolved: exact match,
then with hyphens and spaces removed, then trimmed, then ignoring case.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings()
			if err != nil {
				return err
			}
			table, err := loadCatalog(settings)
			if err != nil {
				return err
			}

			r := resolver.New(table)
			missing := 0
			for _, code := range args {
				m, resolveErr := r.Resolve(code)
				if resolveErr != nil {
					missing++
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatResolution(m, resolveErr))
			}

			if missing > 0 {
				return fmt.Errorf("%d of %d codes: %w", missing, len(args), common.ErrNotFound)
			}
			return nil
		},
	}
}
