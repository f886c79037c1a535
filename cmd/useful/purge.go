package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sghaida/useful/dependency"
	"github.com/sghaida/useful/examples/purge"
	"github.com/sghaida/useful/internal/otel"
	"github.com/sghaida/useful/telemetry"
	"github.com/spf13/cobra"
)

type purgeOptions struct {
	db         string
	ttl        time.Duration
	substitute bool
}

func newPurgeCmd(root *rootOptions) *cobra.Command {
	opts := &purgeOptions{}

	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete records older than the TTL",
		Long: `Builds a Purger over a SQLite database and runs it once.

With --substitute the store is a dry run: records are counted, not deleted.

Examples:
  useful purge --db records.db --ttl 720h
  useful purge --db records.db --ttl 720h --substitute
  USEFUL_SINKS=slog useful purge --db records.db`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPurge(cmd, root, opts)
		},
	}

	cmd.Flags().StringVar(&opts.db, "db", "", "SQLite database path")
	cmd.Flags().DurationVar(&opts.ttl, "ttl", 30*24*time.Hour, "retention period")
	cmd.Flags().BoolVar(&opts.substitute, "substitute", false, "use the substitute namespace (dry run)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runPurge(cmd *cobra.Command, root *rootOptions, opts *purgeOptions) (err error) {
	if opts.ttl <= 0 {
		return fmt.Errorf("--ttl must be positive, got %s", opts.ttl)
	}
	ctx := cmd.Context()

	cfg := *root.cfg
	if opts.substitute {
		cfg.Namespace = string(dependency.Substitute)
		if cfg.Fallback == "" {
			cfg.Fallback = string(dependency.Operational)
		}
	}

	shutdown, err := otel.Setup(ctx, cfg.OTLPEndpoint, cfg.ServiceName)
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	defer func() { err = errors.Join(err, shutdown(context.Background())) }()

	options, err := cfg.Options()
	if err != nil {
		return err
	}
	options = append(options, dependency.WithLogger(root.logger))

	p, err := purge.Build(ctx, opts.db, opts.ttl, options...)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, p.Close()) }()

	if err := attachSinks(p.Store(), cfg.Sinks); err != nil {
		return err
	}

	n, err := p.Actuate()
	if err != nil {
		return err
	}

	verb := "deleted"
	if opts.substitute {
		verb = "would delete"
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %d records older than %s\n", verb, n, opts.ttl)
	root.logger.Info("purge finished", "db", opts.db, "namespace", cfg.Namespace, "records", n)
	return nil
}

// attachSinks registers fresh instances of the named sinks, combined into
// one, on the store's own channel when the store has one.
func attachSinks(store purge.Store, names []string) error {
	owner, ok := store.(interface{ Telemetry() *telemetry.Channel })
	if !ok || len(names) == 0 {
		return nil
	}
	sink, err := telemetry.LookupAll(names...)
	if err != nil {
		return err
	}
	owner.Telemetry().Register(sink)
	return nil
}
