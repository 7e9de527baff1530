package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/GojiraTai/koleksiyon-takip/models"
)

func newResolveCmd(opts *rootOptions) *cobra.Command {
	var franchise, category string
	cmd := &cobra.Command{
		Use:   "resolve [item-id...]",
		Short: "Resolve catalog items against the metadata provider",
		Long: `Resolve looks up the given items (or every item of --franchise, optionally
narrowed by --category) and stores the results in the resolution cache.
Cached results, including negative ones, are reused.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithApp(cmd, opts, func(ctx context.Context, a *app) error {
				items, err := selectItems(a, args, franchise, category)
				if err != nil {
					return err
				}
				records := a.resolver.ResolveCategory(ctx, items)
				if opts.jsonOutput {
					out := make([]models.ItemProgress, len(items))
					for i := range items {
						out[i] = models.ItemProgress{Item: items[i], Record: records[i]}
					}
					return writeJSON(cmd.OutOrStdout(), out)
				}
				tw := newTable(cmd.OutOrStdout())
				fmt.Fprintln(tw, "ITEM\tKIND\tRESULT\tPOSTER")
				for i, item := range items {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", item.ID, item.Kind, recordSummary(records[i]), records[i].Poster())
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().StringVarP(&franchise, "franchise", "f", "", "resolve every item of a franchise")
	cmd.Flags().StringVarP(&category, "category", "c", "", "limit --franchise to one category")
	return cmd
}

func selectItems(a *app, ids []string, franchise, category string) ([]models.CatalogItem, error) {
	if len(ids) > 0 {
		items := make([]models.CatalogItem, 0, len(ids))
		for _, id := range ids {
			item, err := a.item(id)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		return items, nil
	}
	if franchise == "" {
		return nil, fmt.Errorf("pass item ids or --franchise")
	}
	fr, ok := a.catalog.Franchise(franchise)
	if !ok {
		return nil, fmt.Errorf("unknown franchise %q", franchise)
	}
	var items []models.CatalogItem
	for _, cat := range fr.Categories {
		if category == "" || cat.Key == category {
			items = append(items, cat.Items...)
		}
	}
	if category != "" && len(items) == 0 {
		if _, ok := fr.Category(category); !ok {
			return nil, fmt.Errorf("unknown category %q in %s", category, franchise)
		}
	}
	return items, nil
}
