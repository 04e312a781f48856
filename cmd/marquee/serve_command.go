package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"marquee/internal/engine"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var rotate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Enrich discovery events read from stdin",
		Long: `Read one JSON discovery event per line from stdin and write one enriched
record per line to stdout. Events are queued and enriched by a worker pool;
when the queue is full new events are dropped with a warning. Piping a large
batch file fills the queue faster than the sources can answer, so raise
intake.buffer to at least the number of lines (or use "catalog run").

On SIGINT or SIGTERM the command stops enriching and exits; a stdin reader
blocked on an open pipe is abandoned rather than drained.

With --rotate the configured catalog feed is refreshed on catalog.schedule
alongside the event stream.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEngine(cmd, func(runCtx context.Context, e *engine.Engine) error {
				signalCtx, cancel := signal.NotifyContext(runCtx, syscall.SIGINT, syscall.SIGTERM)
				defer cancel()
				return engine.Serve(signalCtx, e, cmd.InOrStdin(), cmd.OutOrStdout(), engine.ServeOptions{Rotate: rotate})
			})
		},
	}

	cmd.Flags().BoolVar(&rotate, "rotate", false, "Also run the scheduled catalog rotation")
	return cmd
}
