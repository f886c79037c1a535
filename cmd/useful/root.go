package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/sghaida/useful/config"
	"github.com/spf13/cobra"
)

// rootOptions carries the state shared by all subcommands. cfg and logger
// are filled in before any subcommand runs.
type rootOptions struct {
	configPath string

	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "useful",
		Short: "Configure and run dependency-slot hosts",
		Long: `useful builds hosts whose dependencies default to Null Objects and
upgrades them with the recipes of a namespace.

Namespaces:
  operational  - real effects (SQLite store, system clock)
  substitute   - harmless stand-ins (dry-run store)`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.load(cmd.ErrOrStderr())
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (.toml, .yaml, .yml)")

	cmd.AddCommand(
		newPurgeCmd(opts),
		newSlotsCmd(),
		newSinksCmd(),
		newVersionCmd(),
	)
	return cmd
}

// load reads the layered config and installs its logger as the slog default,
// which the "slog" telemetry sink writes to.
func (o *rootOptions) load(logOutput io.Writer) error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger, err := cfg.Logger(logOutput)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	o.cfg = cfg
	o.logger = logger
	return nil
}
