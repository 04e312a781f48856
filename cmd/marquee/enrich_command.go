package main

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/spf13/cobra"

	"marquee/internal/engine"
	"marquee/internal/enrichment"
	"marquee/internal/metadata"
)

var imdbArgPattern = regexp.MustCompile(`^tt\d+$`)

func newEnrichCommand(ctx *commandContext) *cobra.Command {
	var year int
	var kind string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "enrich <imdb-id | title>",
		Short: "Fetch, merge and store metadata for a title",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := discoveryFromArgs(args, year, kind)
			if err != nil {
				return err
			}
			return ctx.withEngine(cmd, func(runCtx context.Context, e *engine.Engine) error {
				rec, err := e.Orchestrator.Enrich(runCtx, d)
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, rec)
				}
				out := cmd.OutOrStdout()
				if rec.ID == "" {
					fmt.Fprintf(out, "No confident IMDb match for %q\n", d.Title)
					return nil
				}
				printRecord(out, rec, shouldColorize(out))
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&year, "year", 0, "Release year hint for title lookups")
	cmd.Flags().StringVar(&kind, "kind", "", "Media kind hint (movie or series)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the record as JSON")
	return cmd
}

func discoveryFromArgs(args []string, year int, kind string) (enrichment.Discovery, error) {
	input := strings.TrimSpace(strings.Join(args, " "))
	d := enrichment.Discovery{Year: year, Priority: true}
	if imdbArgPattern.MatchString(input) {
		d.ID = input
	} else {
		d.Title = input
	}
	if kind = strings.TrimSpace(kind); kind != "" {
		parsed, ok := metadata.ParseKind(kind)
		if !ok {
			return d, fmt.Errorf("unknown kind %q (use movie or series)", kind)
		}
		d.Kind = parsed
	}
	if d.ID == "" && d.Title == "" {
		return d, errors.New("an IMDb id or title is required")
	}
	return d, nil
}
