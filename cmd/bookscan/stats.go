package main

import (
	"fmt"

	"bookscanner/internal/analytics"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newStatsCmd(c *cli) *cobra.Command {
	var top int
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show catalog totals and the most frequent keywords",
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := analytics.NewService(c.app.Repo).Report(cmd.Context(), top)
			if err != nil {
				return err
			}

			s := report.Summary
			avg := "-"
			if s.AverageYear != nil {
				avg = fmt.Sprint(*s.AverageYear)
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.AppendRows([]table.Row{
				{"Total books", s.TotalBooks},
				{"Enriched", s.EnrichedBooks},
				{"Unique authors", s.UniqueAuthors},
				{"Average year", avg},
			})
			t.Render()

			if len(report.WordCloud) == 0 {
				return nil
			}
			w := table.NewWriter()
			w.SetOutputMirror(cmd.OutOrStdout())
			w.SetStyle(table.StyleLight)
			w.AppendHeader(table.Row{"Keyword", "Count"})
			for _, wc := range report.WordCloud {
				w.AppendRow(table.Row{wc.Word, wc.Count})
			}
			w.Render()
			return nil
		},
	}
	cmd.Flags().IntVar(&top, "top", 10, "number of keywords to show")
	return cmd
}
