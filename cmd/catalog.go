package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/underwrite-cli/internal/catalog"
	"github.com/sells-group/underwrite-cli/internal/export"
	"github.com/sells-group/underwrite-cli/internal/model"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect and export the basket catalogues",
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the built-in baskets",
	RunE: func(cmd *cobra.Command, args []string) error {
		baskets, err := loadBaskets()
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tFIELDS\tDERIVED")
		for _, b := range baskets {
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\n",
				b.cat.ID(), b.cat.Name(), len(b.cat.Fields()), len(b.cat.DerivedKeys()))
		}
		return w.Flush()
	},
}

var catalogShowTier string

var catalogShowCmd = &cobra.Command{
	Use:   "show <basket-id>",
	Short: "Show a basket's fields at a tier",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		baskets, err := loadBaskets()
		if err != nil {
			return err
		}

		tier, err := model.ParseTier(catalogShowTier)
		if err != nil {
			return err
		}

		for _, b := range baskets {
			if b.cat.ID() != args[0] {
				continue
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "KEY\tLABEL\tTYPE\tTIER\tREQUIRED\tDEPENDS ON")
			for _, f := range b.cat.VisibleFields(tier) {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%v\t%s\n",
					f.Key, f.Label.At(tier), f.Type, f.Tier, f.Required,
					strings.Join(f.DependsOn, ", "))
			}
			return w.Flush()
		}
		return eris.Errorf("unknown basket %q", args[0])
	},
}

var catalogCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify every basket catalogue loads: references resolve and the dependency graph is acyclic",
	RunE: func(cmd *cobra.Command, args []string) error {
		baskets, err := loadBaskets()
		if err != nil {
			return err
		}

		for _, b := range baskets {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d fields, evaluation order ok\n",
				b.cat.ID(), len(b.cat.Fields()))
		}
		return nil
	},
}

var (
	catalogExportOut    string
	catalogExportFormat string
)

var catalogExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the catalogues as an XLSX workbook or YAML document",
	RunE: func(cmd *cobra.Command, args []string) error {
		baskets, err := loadBaskets()
		if err != nil {
			return err
		}
		catalogues := make([]*catalog.Catalog, 0, len(baskets))
		for _, b := range baskets {
			catalogues = append(catalogues, b.cat)
		}

		switch catalogExportFormat {
		case "xlsx":
			if catalogExportOut == "" {
				return eris.New("--out is required for xlsx export")
			}
			return export.WriteCatalogXLSX(catalogExportOut, catalogues)
		case "yaml":
			out := cmd.OutOrStdout()
			if catalogExportOut != "" {
				f, err := os.Create(catalogExportOut)
				if err != nil {
					return eris.Wrapf(err, "create %s", catalogExportOut)
				}
				defer f.Close()
				out = f
			}
			return export.WriteCatalogYAML(out, catalogues)
		default:
			return eris.Errorf("unknown format %q", catalogExportFormat)
		}
	},
}

func init() {
	catalogShowCmd.Flags().StringVar(&catalogShowTier, "tier", "pro", "tier to show (napkin, mid, pro)")
	catalogExportCmd.Flags().StringVar(&catalogExportOut, "out", "", "output file path")
	catalogExportCmd.Flags().StringVar(&catalogExportFormat, "format", "xlsx", "export format (xlsx, yaml)")

	catalogCmd.AddCommand(catalogListCmd, catalogShowCmd, catalogCheckCmd, catalogExportCmd)
	rootCmd.AddCommand(catalogCmd)
}
