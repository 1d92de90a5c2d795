package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/bft-labs/blinkscan/internal/cliconfig"
	"github.com/bft-labs/blinkscan/pkg/keyboard"
	"github.com/bft-labs/blinkscan/pkg/scan"
)

func newLayoutCommand(cfg *cliconfig.Config, cfgPath *string) *cobra.Command {
	var asYAML bool

	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Print the keyboard layout",
		Long:  "Print the keyboard layout as a grid, or as YAML ready to be edited and passed to --layout.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loadConfig(cmd, cfg, *cfgPath); err != nil {
				return err
			}
			layout := keyboard.DefaultLayout()
			if cfg.LayoutFile != "" {
				l, err := keyboard.LoadLayout(cfg.LayoutFile)
				if err != nil {
					return err
				}
				layout = l
			}
			grid := scan.Grid{Rows: cfg.Rows, Columns: cfg.Columns}
			if err := layout.Fits(grid); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asYAML {
				enc := yaml.NewEncoder(out)
				enc.SetIndent(2)
				defer enc.Close()
				return enc.Encode(layout)
			}
			return printLayout(out, layout, grid)
		},
	}

	cmd.Flags().StringVar(&cfg.LayoutFile, "layout", cfg.LayoutFile, "YAML keyboard layout file")
	cmd.Flags().IntVar(&cfg.Rows, "rows", cfg.Rows, "keyboard rows")
	cmd.Flags().IntVar(&cfg.Columns, "columns", cfg.Columns, "keyboard columns")
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "print the layout as YAML")
	return cmd
}

// printLayout writes one line per row with the row and column numbers the
// scanner reports.
func printLayout(w io.Writer, layout *keyboard.Layout, grid scan.Grid) error {
	width := 1
	for r := 1; r <= grid.Rows; r++ {
		for c := 1; c <= grid.Columns; c++ {
			if n := len(layout.Label(scan.Position{Row: r, Column: c})); n > width {
				width = n
			}
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "layout %q (%dx%d)\n", layout.Name(), grid.Rows, grid.Columns)
	b.WriteString("   ")
	for c := 1; c <= grid.Columns; c++ {
		fmt.Fprintf(&b, " %-*d", width, c)
	}
	b.WriteString("\n")
	for r := 1; r <= grid.Rows; r++ {
		fmt.Fprintf(&b, "%2d ", r)
		for c := 1; c <= grid.Columns; c++ {
			label := layout.Label(scan.Position{Row: r, Column: c})
			if label == "" {
				label = "·"
			}
			fmt.Fprintf(&b, " %-*s", width, label)
		}
		b.WriteString("\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}
