package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/GojiraTai/koleksiyon-takip/models"
)

func newStatusCmd(opts *rootOptions) *cobra.Command {
	var refresh bool
	cmd := &cobra.Command{
		Use:   "status [franchise [category]]",
		Short: "Show watch progress",
		Long: `Status prints overall progress and one line per franchise. With a franchise it
lists its categories and item counts; with a category it lists every item.
Progress is computed from cached metadata unless --refresh is given.`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithApp(cmd, opts, func(ctx context.Context, a *app) error {
				out := cmd.OutOrStdout()
				if len(args) == 0 {
					return printOverview(ctx, a, cmd, opts, refresh)
				}

				fr, ok := a.catalog.Franchise(args[0])
				if !ok {
					return fmt.Errorf("unknown franchise %q", args[0])
				}
				var fp models.FranchiseProgress
				if refresh {
					fp = a.tracker.RefreshFranchise(ctx, *fr)
				} else {
					fp = a.tracker.Franchise(*fr)
				}

				if len(args) == 1 {
					if opts.jsonOutput {
						return writeJSON(out, fp)
					}
					fmt.Fprintf(out, "%s: %s\n\n", fp.Title, formatCompletion(fp.Completion))
					tw := newTable(out)
					fmt.Fprintln(tw, "CATEGORY\tTITLE\tITEMS\tPROGRESS")
					for _, cp := range fp.Categories {
						fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", cp.Key, cp.Title, len(cp.Items), formatCompletion(cp.Completion))
					}
					return tw.Flush()
				}

				for _, cp := range fp.Categories {
					if cp.Key != args[1] {
						continue
					}
					if opts.jsonOutput {
						return writeJSON(out, cp)
					}
					fmt.Fprintf(out, "%s / %s: %s\n\n", fp.Title, cp.Title, formatCompletion(cp.Completion))
					tw := newTable(out)
					fmt.Fprintln(tw, "ITEM\tTITLE\tKIND\tPROGRESS\tMATCH")
					for _, ip := range cp.Items {
						fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", ip.Item.ID, ip.Item.Title, ip.Item.Kind, formatCompletion(ip.Completion), recordSummary(ip.Record))
					}
					return tw.Flush()
				}
				return fmt.Errorf("unknown category %q in %s", args[1], args[0])
			})
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "resolve items and fetch seasons before computing progress")
	return cmd
}

func printOverview(ctx context.Context, a *app, cmd *cobra.Command, opts *rootOptions, refresh bool) error {
	franchises := make([]models.FranchiseProgress, 0, len(a.catalog.Franchises))
	var overall models.Completion
	for _, fr := range a.catalog.Franchises {
		var fp models.FranchiseProgress
		if refresh {
			fp = a.tracker.RefreshFranchise(ctx, fr)
		} else {
			fp = a.tracker.Franchise(fr)
		}
		overall = overall.Add(fp.Completion)
		franchises = append(franchises, fp)
	}

	out := cmd.OutOrStdout()
	if opts.jsonOutput {
		return writeJSON(out, map[string]any{"completion": overall, "franchises": franchises})
	}
	fmt.Fprintf(out, "Overall: %s\n\n", formatCompletion(overall))
	tw := newTable(out)
	fmt.Fprintln(tw, "FRANCHISE\tTITLE\tCATEGORIES\tPROGRESS")
	for _, fp := range franchises {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", fp.Key, fp.Title, len(fp.Categories), formatCompletion(fp.Completion))
	}
	return tw.Flush()
}
