package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/tendant/simple-blog/pkg/simpleblog"
	"github.com/tendant/simple-blog/pkg/simpleblog/repo/jsonfile"
)

type importOptions struct {
	authorsFile   string
	blogPostsFile string
	replace       bool
}

func newImportCmd(global *globalOptions) *cobra.Command {
	opts := &importOptions{}

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import legacy authors.json / blogPosts.json files",
		Long: `Import reads JSON array files in the legacy on-disk format and writes
them into the configured collection store.

Records keyed by "_id" are rewritten to use "id", and posts without a
comments array get an empty one. Existing records with the same id are
replaced; with --replace the whole collection is replaced.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.authorsFile == "" && opts.blogPostsFile == "" {
				return fmt.Errorf("at least one of --authors or --blog-posts is required")
			}

			ctx := cmd.Context()
			repo, _, err := global.openRepository(ctx)
			if err != nil {
				return err
			}
			defer repo.Close()

			jobs := map[simpleblog.Collection]string{
				simpleblog.CollectionAuthors:   opts.authorsFile,
				simpleblog.CollectionBlogPosts: opts.blogPostsFile,
			}
			counts, err := importCollections(ctx, repo, jobs, opts.replace)
			if err != nil {
				return err
			}
			for _, c := range []simpleblog.Collection{simpleblog.CollectionAuthors, simpleblog.CollectionBlogPosts} {
				if n, ok := counts[c]; ok {
					fmt.Fprintf(cmd.OutOrStdout(), "imported %d %s\n", n, c)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.authorsFile, "authors", "", "Legacy authors JSON file")
	cmd.Flags().StringVar(&opts.blogPostsFile, "blog-posts", "", "Legacy blog posts JSON file")
	cmd.Flags().BoolVar(&opts.replace, "replace", false, "Replace collections instead of merging by id")
	return cmd
}

// importCollections imports every non-empty path concurrently and returns
// the number of records read per collection.
func importCollections(ctx context.Context, repo simpleblog.Repository, jobs map[simpleblog.Collection]string, replace bool) (map[simpleblog.Collection]int, error) {
	results := make(map[simpleblog.Collection]int, len(jobs))
	counts := make([]int, 0, len(jobs))
	collections := make([]simpleblog.Collection, 0, len(jobs))
	for c, path := range jobs {
		if path != "" {
			collections = append(collections, c)
			counts = append(counts, 0)
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	for i, c := range collections {
		i, c := i, c
		g.Go(func() error {
			records, err := readLegacyFile(jobs[c], c)
			if err != nil {
				return err
			}
			read := len(records)
			if !replace {
				existing, err := repo.Load(ctx, c)
				if err != nil {
					return err
				}
				records = mergeRecords(existing, records)
			}
			if err := repo.Save(ctx, c, records); err != nil {
				return fmt.Errorf("save %s: %w", c, err)
			}
			counts[i] = read
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, c := range collections {
		results[c] = counts[i]
	}
	return results, nil
}

// readLegacyFile parses a JSON array file into records of collection c.
func readLegacyFile(path string, c simpleblog.Collection) ([]simpleblog.Record, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("%s: expected a JSON array: %w", path, err)
	}

	records := make([]simpleblog.Record, 0, len(items))
	for i, item := range items {
		rec, err := normalizeLegacy(item, c)
		if err != nil {
			return nil, fmt.Errorf("%s: item %d: %w", path, i, err)
		}
		records = append(records, rec)
	}
	if err := simpleblog.ValidateRecords(records); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

func normalizeLegacy(item json.RawMessage, c simpleblog.Collection) (simpleblog.Record, error) {
	id, err := jsonfile.RecordID(item)
	if err != nil {
		return simpleblog.Record{}, err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(item, &fields); err != nil {
		return simpleblog.Record{}, err
	}
	idJSON, err := json.Marshal(id)
	if err != nil {
		return simpleblog.Record{}, err
	}
	fields["id"] = idJSON
	delete(fields, "_id")

	if c == simpleblog.CollectionBlogPosts {
		if comments, ok := fields["comments"]; !ok || string(comments) == "null" {
			fields["comments"] = json.RawMessage("[]")
		}
	}

	data, err := json.Marshal(fields)
	if err != nil {
		return simpleblog.Record{}, err
	}
	return simpleblog.Record{ID: id, Data: data}, nil
}

// mergeRecords replaces existing records in place and appends new ones.
func mergeRecords(existing, imported []simpleblog.Record) []simpleblog.Record {
	index := make(map[string]int, len(existing))
	for i, rec := range existing {
		index[rec.ID] = i
	}
	merged := append([]simpleblog.Record(nil), existing...)
	for _, rec := range imported {
		if i, ok := index[rec.ID]; ok {
			merged[i] = rec
			continue
		}
		index[rec.ID] = len(merged)
		merged = append(merged, rec)
	}
	return merged
}
