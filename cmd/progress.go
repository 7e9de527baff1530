package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/GojiraTai/koleksiyon-takip/models"
	"github.com/GojiraTai/koleksiyon-takip/services/completion"
	"github.com/GojiraTai/koleksiyon-takip/services/metadata"
)

func newToggleCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <item-id>",
		Short: "Flip the watched flag of a catalog item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithApp(cmd, opts, func(ctx context.Context, a *app) error {
				item, err := a.item(args[0])
				if err != nil {
					return err
				}
				watched, err := a.progress.ToggleItem(ctx, item.ID)
				if err != nil {
					return err
				}
				ip := a.tracker.Item(item)
				fmt.Fprintf(cmd.OutOrStdout(), "%s watched=%v progress=%s\n", item.ID, watched, formatCompletion(ip.Completion))
				return nil
			})
		},
	}
}

func newToggleEpisodeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle-episode <episode-id>",
		Short: "Flip the watched flag of an episode",
		Long: `Toggle-episode flips an episode flag. Episode ids are the provider ids shown by
"expand", or <series-id>:sNNeNN for episodes without one.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithApp(cmd, opts, func(ctx context.Context, a *app) error {
				watched, err := a.progress.ToggleEpisode(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s watched=%v\n", args[0], watched)
				return nil
			})
		},
	}
}

func newMarkSeasonCmd(opts *rootOptions) *cobra.Command {
	var unwatch, all bool
	cmd := &cobra.Command{
		Use:   "mark-season <item-id> [season]",
		Short: "Mark every episode of a season (or --all seasons) watched",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithApp(cmd, opts, func(ctx context.Context, a *app) error {
				item, err := a.item(args[0])
				if err != nil {
					return err
				}
				if item.Kind == models.KindMovie {
					return fmt.Errorf("%s is a movie; use toggle", item.ID)
				}

				if all {
					rec, seasons := a.resolver.ExpandSeries(ctx, item)
					if err := a.progress.MarkSeries(ctx, item, metadata.SeasonNumbers(item, rec), seasons, !unwatch); err != nil {
						return err
					}
				} else {
					number := item.RawSeasonNumber
					if len(args) == 2 {
						number, err = strconv.Atoi(args[1])
						if err != nil || number <= 0 {
							return fmt.Errorf("invalid season number %q", args[1])
						}
					}
					if item.Kind == models.KindSeasonStub {
						number = item.RawSeasonNumber
					}
					if number <= 0 {
						return fmt.Errorf("season number required for %s", item.ID)
					}

					var record *models.SeasonRecord
					if rec := a.resolver.Resolve(ctx, item); rec.Found() {
						season := a.resolver.ResolveSeason(ctx, rec.ID(), number)
						record = &season
					}
					if err := a.progress.MarkSeason(ctx, item, number, record, !unwatch); err != nil {
						return err
					}
				}

				ip := a.tracker.Item(item)
				fmt.Fprintf(cmd.OutOrStdout(), "%s progress=%s\n", item.ID, formatCompletion(ip.Completion))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&unwatch, "unwatch", false, "clear the flags instead of setting them")
	cmd.Flags().BoolVar(&all, "all", false, "mark every season of the series")
	return cmd
}

func newExpandCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "expand <item-id>",
		Short: "Fetch every season of a series and list its episodes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithApp(cmd, opts, func(ctx context.Context, a *app) error {
				item, err := a.item(args[0])
				if err != nil {
					return err
				}
				rec, seasons := a.resolver.ExpandSeries(ctx, item)
				ip := completion.ItemProgress(item, rec, seasons, a.progress)
				out := cmd.OutOrStdout()
				if opts.jsonOutput {
					return writeJSON(out, map[string]any{"progress": ip, "seasons": seasons})
				}

				fmt.Fprintf(out, "%s: %s %s\n", item.ID, recordSummary(rec), formatCompletion(ip.Completion))
				tw := newTable(out)
				fmt.Fprintln(tw, "SEASON\tEPISODE\tID\tTITLE\tAIRED\tWATCHED")
				for _, sp := range ip.Seasons {
					season, ok := seasons[sp.Number]
					if !ok || len(season.Episodes) == 0 {
						fmt.Fprintf(tw, "%d\t-\t-\t(not available)\t-\t%v\n", sp.Number, sp.Completion.Done > 0)
						continue
					}
					for _, ep := range season.Episodes {
						aired := "-"
						if ep.AirDate != nil {
							aired = *ep.AirDate
						}
						key := season.EpisodeKey(ep)
						fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\t%v\n", sp.Number, ep.Number, key, ep.Title, aired, a.progress.EpisodeWatched(key))
					}
				}
				return tw.Flush()
			})
		},
	}
}

func newInvalidateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "invalidate <item-id>...",
		Short: "Drop cached resolution results so items are looked up again",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithApp(cmd, opts, func(ctx context.Context, a *app) error {
				for _, id := range args {
					item, err := a.item(id)
					if err != nil {
						return err
					}
					removed := a.resolver.Invalidate(ctx, item)
					fmt.Fprintf(cmd.OutOrStdout(), "%s removed=%v\n", item.ID, removed)
				}
				return nil
			})
		},
	}
}
