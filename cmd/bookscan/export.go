package main

import (
	"fmt"
	"os"
	"time"

	"bookscanner/internal/export"

	"github.com/spf13/cobra"
)

func newExportCmd(c *cli) *cobra.Command {
	var (
		format string
		out    string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the whole catalog as CSV or JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			books, err := c.app.Repo.All(cmd.Context())
			if err != nil {
				return err
			}

			if out == "" {
				out = export.Filename(f, time.Now())
			}
			if out == "-" {
				return export.Write(cmd.OutOrStdout(), f, books)
			}

			file, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := export.Write(file, f, books); err != nil {
				file.Close()
				return err
			}
			if err := file.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d books to %s\n", len(books), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "csv", "csv or json")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file, - for stdout (default catalog_export_<timestamp>.<ext>)")
	return cmd
}
