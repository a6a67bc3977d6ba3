package cli

import (
	"context"
	"fmt"
	"os"

	"postboard/app/config"

	"github.com/spf13/cobra"
)

var version = "dev"

// SetVersion overrides the version printed by the version command.
func SetVersion(v string) {
	version = v
}

type rootOptions struct {
	cfgFile string
	flags   config.Flags
	cfg     *config.Config
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "postboard",
		Short: "JSON API for blog posts and comments",
		Long: `Postboard serves a small blog API (posts and their comments) on top
of a hosted PostgREST data store, a direct Postgres connection or an
embedded badger/bolt database.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "help" || cmd.Name() == "version" {
				return nil
			}

			var err error
			if _, statErr := os.Stat(opts.cfgFile); os.IsNotExist(statErr) {
				opts.cfg = config.Default()
			} else {
				opts.cfg, err = config.Load(opts.cfgFile)
				if err != nil {
					return fmt.Errorf("failed to load config: %w", err)
				}
			}
			opts.cfg.ApplyEnv()
			opts.cfg.ApplyFlags(&opts.flags)
			return opts.cfg.Validate()
		},
	}

	root.PersistentFlags().StringVarP(&opts.cfgFile, "config", "c", "postboard.yaml", "config file path")

	root.AddCommand(newServeCmd(opts))
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "postboard %s\n", version)
		},
	})
	return root
}

func Execute() error {
	return newRootCmd().ExecuteContext(context.Background())
}
