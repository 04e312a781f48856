package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"marquee/internal/catalog"
	"marquee/internal/engine"
	"marquee/internal/metadata"
)

func newCatalogCommand(ctx *commandContext) *cobra.Command {
	catalogCmd := &cobra.Command{
		Use:   "catalog",
		Short: "Bulk-enrich catalog feeds",
	}
	catalogCmd.AddCommand(newCatalogRunCommand(ctx))
	catalogCmd.AddCommand(newCatalogRotateCommand(ctx))
	return catalogCmd
}

func newCatalogRunCommand(ctx *commandContext) *cobra.Command {
	var noValidateArt bool
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "run [feed-url]",
		Short: "Fetch a feed and enrich every entry",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEngine(cmd, func(runCtx context.Context, e *engine.Engine) error {
				feedURL := e.Config.Catalog.FeedURL
				if len(args) == 1 {
					feedURL = strings.TrimSpace(args[0])
				}
				if feedURL == "" {
					return errors.New("no feed url given and catalog.feed_url is empty")
				}
				items, err := e.Fetcher.FetchFeed(runCtx, feedURL)
				if err != nil {
					return err
				}
				validate := e.Config.Catalog.ValidateArt && !noValidateArt
				records, summary := e.Pipeline(validate).Run(runCtx, items)
				if jsonOutput {
					return writeJSON(cmd, map[string]any{"summary": summary, "records": records})
				}
				printCatalog(cmd, records, summary)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&noValidateArt, "no-validate-art", false, "Skip poster reachability checks")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newCatalogRotateCommand(ctx *commandContext) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "rotate [feed-url]",
		Short: "Refresh the rotating catalog and print the current window",
		Long:  "Refresh the configured catalog feed and print the current display window. With --watch the feed is refreshed on catalog.schedule and each new window is printed until interrupted.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEngine(cmd, func(runCtx context.Context, e *engine.Engine) error {
				var feedURL string
				if len(args) == 1 {
					feedURL = strings.TrimSpace(args[0])
				}
				rotator, err := e.Rotator(feedURL)
				if err != nil {
					return err
				}
				summary, err := rotator.Refresh(runCtx)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				printWindow(cmd, rotator.Current())
				fmt.Fprintf(out, "%d of %d entries enriched; next refresh %s\n",
					summary.Enriched, summary.Total, rotator.NextRun().Local().Format(time.DateTime))
				if !watch {
					return nil
				}

				signalCtx, cancel := signal.NotifyContext(runCtx, syscall.SIGINT, syscall.SIGTERM)
				defer cancel()
				rotator.Start(signalCtx)
				defer rotator.Stop()
				last := rotator.LastRefresh()
				ticker := time.NewTicker(time.Second)
				defer ticker.Stop()
				for {
					select {
					case <-signalCtx.Done():
						return nil
					case <-ticker.C:
						if current := rotator.LastRefresh(); current.After(last) {
							last = current
							printWindow(cmd, rotator.Current())
						}
					}
				}
			})
		},
	}

	cmd.Flags().BoolVar(&watch, "watch", false, "Keep refreshing on the configured schedule")
	return cmd
}

func printCatalog(cmd *cobra.Command, records []metadata.Record, summary catalog.Summary) {
	out := cmd.OutOrStdout()
	if len(records) > 0 {
		fmt.Fprintln(out, renderRecordTable(records))
	}
	fmt.Fprintf(out, "Enriched %d of %d entries (%d invalid, %d unresolved, %d without reachable art)\n",
		summary.Enriched, summary.Total, summary.Invalid, summary.Unresolved, summary.ArtRejected)
}

func printWindow(cmd *cobra.Command, records []metadata.Record) {
	out := cmd.OutOrStdout()
	if len(records) == 0 {
		fmt.Fprintln(out, "Rotation is empty")
		return
	}
	fmt.Fprintln(out, renderRecordTable(records))
}
