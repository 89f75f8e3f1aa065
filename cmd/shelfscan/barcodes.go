package main

import (
	"fmt"

	"github.com/Veraticus/shelfscan/internal/barcodes"
	"github.com/Veraticus/shelfscan/internal/cli"
	"github.com/spf13/cobra"
)

func barcodesCmd() *cobra.Command {
	var (
		outDir   string
		size     int
		terminal bool
	)

	cmd := &cobra.Command{
		Use:   "barcodes",
		Short: "Render QR codes for every product",
		Long: `Write one QR code image per catalog product so there is something to
point a reader at, or draw them in the terminal with --terminal.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := loadSettings()
			if err != nil {
				return err
			}
			table, err := loadCatalog(settings)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			if terminal {
				for _, p := range table.Products() {
					art, err := barcodes.Terminal(p.Barcode)
					if err != nil {
						return err
					}
					fmt.Fprintln(out, cli.RenderBox(fmt.Sprintf("%s  %s", p.Name, p.Barcode), art))
				}
				return nil
			}

			paths, err := barcodes.WriteAll(outDir, table.Products(), size, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Wrote %d codes to %s", len(paths), outDir)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", "barcodes", "directory to write images to")
	cmd.Flags().IntVar(&size, "size", barcodes.DefaultSize, "image size in pixels")
	cmd.Flags().BoolVar(&terminal, "terminal", false, "draw codes in the terminal instead of writing files")

	return cmd
}
