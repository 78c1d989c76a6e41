package main

import (
	"fmt"
	"os"

	"bookscanner/internal/scan"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

func newScanCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "scan <image>...",
		Short: "Run OCR on cover images and add them to the catalog",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, p := range args {
				if _, err := os.Stat(p); err != nil {
					return err
				}
				if !scan.AllowedExtension(p) {
					return fmt.Errorf("%w: %s", scan.ErrUnsupportedFile, p)
				}
			}

			batch := c.app.Scanner.ProcessPaths(cmd.Context(), args)

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleDouble)
			t.Style().Options.SeparateRows = false
			t.AppendHeader(table.Row{
				text.FgGreen.Sprintf("File"),
				text.FgGreen.Sprintf("ID"),
				text.FgGreen.Sprintf("Title"),
				text.FgGreen.Sprintf("Author"),
				text.FgGreen.Sprintf("Year"),
				text.FgGreen.Sprintf("Enriched"),
				text.FgGreen.Sprintf("Warnings"),
			})
			for _, out := range batch.Outcomes {
				t.AppendRow(table.Row{
					out.Filename, out.BookID, out.Record.Title, out.Record.Author,
					yearString(out.Record.Year), out.Enriched, len(out.Warnings),
				})
			}
			t.AppendFooter(table.Row{"", "", "", "", "succeeded", batch.Succeeded, batch.Failed})
			t.Render()

			if batch.Failed > 0 {
				return fmt.Errorf("%d of %d images failed", batch.Failed, batch.Processed)
			}
			return nil
		},
	}
}

func yearString(y *int) string {
	if y == nil {
		return "-"
	}
	return fmt.Sprint(*y)
}
