package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/tendant/simple-blog/pkg/simpleblog"
)

func newExportCmd(global *globalOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export <authors|blogPosts>",
		Short: "Write a collection as a JSON array",
		Long: `Export writes every record of a collection, in insertion order, as the
indented JSON array the jsonfile store and the import command use.`,
		Args: cobra.ExactArgs(1),
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

			w := cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			return writeRecords(w, records)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	return cmd
}

func writeRecords(w io.Writer, records []simpleblog.Record) error {
	items := make([]json.RawMessage, 0, len(records))
	for _, rec := range records {
		items = append(items, json.RawMessage(rec.Data))
	}
	out, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("encode records: %w", err)
	}
	out = append(out, '\n')
	_, err = io.Copy(w, bytes.NewReader(out))
	return err
}

func newPDFCmd(global *globalOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "pdf <blogPostID>",
		Short: "Render a blog post to PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			repo, cfg, err := global.openRepository(ctx)
			if err != nil {
				return err
			}
			defer repo.Close()

			logger, err := global.logger()
			if err != nil {
				return err
			}
			svc, err := cfg.BuildService(repo, logger)
			if err != nil {
				return err
			}

			var buf bytes.Buffer
			if _, err := svc.ExportBlogPostPDF(ctx, args[0], &buf); err != nil {
				return err
			}

			if output == "" {
				output = args[0] + ".pdf"
			}
			if err := os.WriteFile(output, buf.Bytes(), 0644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", output, buf.Len())
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default <id>.pdf)")
	return cmd
}
