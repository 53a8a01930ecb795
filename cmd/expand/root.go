package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lionls/snoowrap/internal/app"
	"github.com/lionls/snoowrap/internal/config"
	"github.com/lionls/snoowrap/internal/expand"
	"github.com/lionls/snoowrap/internal/service"
)

type expandFlags struct {
	limit   int
	depth   int
	compact bool
}

func newRootCmd() *cobra.Command {
	flags := &expandFlags{}

	cmd := &cobra.Command{
		Use:   "expand <fullname>",
		Short: "Expand the reply tree of a Reddit submission or comment",
		Long: `Loads a submission (t3_...) or comment (t1_...) and prints a copy of it
with more replies loaded. --limit caps how many children of every node are
expanded, --depth caps how many levels deep. Both are unbounded by default.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			config.SetupLogging(cfg)

			svc, _, _, err := app.NewService(cfg)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runExpand(ctx, cmd.OutOrStdout(), svc, args[0], optionsFrom(cmd, flags), flags.compact)
		},
	}

	cmd.Flags().IntVarP(&flags.limit, "limit", "l", 0, "children expanded per node (unbounded when not set)")
	cmd.Flags().IntVarP(&flags.depth, "depth", "d", 0, "levels to expand (unbounded when not set)")
	cmd.Flags().BoolVar(&flags.compact, "compact", false, "print JSON without indentation")

	return cmd
}

// optionsFrom maps flags to a budget. Flags left unset stay unbounded, so
// an explicit --depth 0 differs from no --depth at all.
func optionsFrom(cmd *cobra.Command, flags *expandFlags) expand.Options {
	opts := expand.Options{}
	if cmd.Flags().Changed("limit") {
		opts.Limit = expand.Cap(flags.limit)
	}
	if cmd.Flags().Changed("depth") {
		opts.Depth = expand.Cap(flags.depth)
	}
	return opts
}

func runExpand(ctx context.Context, out io.Writer, svc service.ThingService, name string, opts expand.Options, compact bool) error {
	if opts.Limit.Value() < 0 || opts.Depth.Value() < 0 {
		return fmt.Errorf("--limit and --depth must not be negative")
	}

	resp, err := svc.Expand(ctx, name, opts)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	if !compact {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(resp)
}
