package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	verbose    bool
	jsonOutput bool
}

func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "koleksiyon",
		Short: "Track watch progress across franchise collections",
		Long: `koleksiyon resolves catalog entries (movies, series and season stubs) against
an OMDb-compatible metadata provider, caches the results and reports watch
progress per item, category and franchise.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
		},
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "settings file (default $KOLEKSIYON_CONFIG or data/settings.json)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "print log output to stderr")
	cmd.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "print results as JSON")

	cmd.AddCommand(newResolveCmd(opts))
	cmd.AddCommand(newStatusCmd(opts))
	cmd.AddCommand(newToggleCmd(opts))
	cmd.AddCommand(newToggleEpisodeCmd(opts))
	cmd.AddCommand(newMarkSeasonCmd(opts))
	cmd.AddCommand(newExpandCmd(opts))
	cmd.AddCommand(newInvalidateCmd(opts))

	return cmd
}
