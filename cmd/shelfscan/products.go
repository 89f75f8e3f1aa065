package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/Veraticus/shelfscan/internal/cli"
	"github.com/Veraticus/shelfscan/internal/money"
	"github.com/spf13/cobra"
)

func productsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "products",
		Short: "List the product catalog",
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := loadSettings()
			if err != nil {
				return err
			}
			table, err := loadCatalog(settings)
			if err != nil {
				return err
			}

			if table.Len() == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("The catalog is empty."))
				return nil
			}

			// Create table writer
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			defer w.Flush()

			// Header
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				cli.TableHeaderStyle.Render("Barcode"),
				cli.TableHeaderStyle.Render("Name"),
				cli.TableHeaderStyle.Render("Price"),
				cli.TableHeaderStyle.Render("Image"))
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				strings.Repeat("-", 17),
				strings.Repeat("-", 16),
				strings.Repeat("-", 8),
				strings.Repeat("-", 24))

			for _, p := range table.Products() {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.Barcode, p.Name, money.Format(p.Price), p.Image)
			}

			return nil
		},
	}
}
