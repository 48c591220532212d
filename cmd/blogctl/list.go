package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/tendant/simple-blog/pkg/simpleblog"
)

func newListCmd(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list <authors|blogPosts>",
		Short: "Print a collection as a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			collection, err := parseCollection(args[0])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			repo, _, err := global.openRepository(ctx)
			if err != nil {
				return err
			}
			defer repo.Close()

			records, err := repo.Load(ctx, collection)
			if err != nil {
				return err
			}

			if collection == simpleblog.CollectionAuthors {
				return renderAuthors(cmd.OutOrStdout(), records)
			}
			return renderBlogPosts(cmd.OutOrStdout(), records)
		},
	}
}

func renderAuthors(w io.Writer, records []simpleblog.Record) error {
	table := tablewriter.NewWriter(w)
	table.Header("ID", "Name", "Email", "Created")

	for _, rec := range records {
		var a simpleblog.Author
		if err := json.Unmarshal(rec.Data, &a); err != nil {
			return fmt.Errorf("decode author %s: %w", rec.ID, err)
		}
		if err := table.Append(rec.ID, a.FullName(), a.Email, formatDate(a.CreatedAt)); err != nil {
			return err
		}
	}
	return table.Render()
}

func renderBlogPosts(w io.Writer, records []simpleblog.Record) error {
	table := tablewriter.NewWriter(w)
	table.Header("ID", "Title", "Category", "Author", "Comments")

	for _, rec := range records {
		var p simpleblog.BlogPost
		if err := json.Unmarshal(rec.Data, &p); err != nil {
			return fmt.Errorf("decode blog post %s: %w", rec.ID, err)
		}
		if err := table.Append(rec.ID, p.Title, p.Category, p.Author.Name, strconv.Itoa(len(p.Comments))); err != nil {
			return err
		}
	}
	return table.Render()
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02")
}
