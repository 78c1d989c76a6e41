package main

import (
	"fmt"

	"bookscanner/internal/catalog"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

func newListCmd(c *cli) *cobra.Command {
	var (
		q      string
		author string
		limit  int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cataloged books, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			books, total, err := catalog.NewService(c.app.Repo).Search(cmd.Context(), catalog.Query{
				Q:      q,
				Author: author,
				Limit:  limit,
			})
			if err != nil {
				return err
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleDouble)
			t.Style().Options.SeparateRows = false
			t.AppendHeader(table.Row{
				text.FgGreen.Sprintf("ID"),
				text.FgGreen.Sprintf("%s", text.Bold.Sprintf("Title")),
				text.FgGreen.Sprintf("Author"),
				text.FgGreen.Sprintf("Year"),
				text.FgGreen.Sprintf("ISBN"),
				text.FgGreen.Sprintf("Publisher"),
				text.FgGreen.Sprintf("Enriched"),
			})
			for _, b := range books {
				isbn := "-"
				if b.ISBN != nil {
					isbn = *b.ISBN
				}
				t.AppendRow(table.Row{b.ID, b.Title, b.Author, yearString(b.Year), isbn, b.Publisher, b.Enriched})
			}
			t.Render()
			fmt.Fprintf(cmd.OutOrStdout(), "%d of %d books\n", len(books), total)
			return nil
		},
	}
	cmd.Flags().StringVarP(&q, "query", "q", "", "search title, author and keywords")
	cmd.Flags().StringVar(&author, "author", "", "filter by author")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum rows to show")
	return cmd
}
