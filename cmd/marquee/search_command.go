package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"marquee/internal/engine"
	"marquee/internal/matcher"
	"marquee/internal/textutil"
)

func newSearchCommand(ctx *commandContext) *cobra.Command {
	var year int
	var anime bool
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "search <title>",
		Short: "Show how a title resolves against the search index",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.TrimSpace(strings.Join(args, " "))
			return ctx.withEngine(cmd, func(runCtx context.Context, e *engine.Engine) error {
				m := e.Matcher
				if anime {
					m = e.AnimeMatcher
				}
				if m == nil {
					return errors.New("the search source is disabled in this configuration")
				}
				res, err := m.Match(runCtx, matcher.Query{Title: title, Year: year})
				if err != nil {
					return err
				}

				var candidates []matcher.Candidate
				if !anime && e.Searcher != nil {
					if list, err := e.Searcher.Search(runCtx, title, year); err == nil {
						candidates = list
					}
				}
				if jsonOutput {
					return writeJSON(cmd, map[string]any{
						"query":      title,
						"year":       year,
						"match":      res,
						"candidates": candidates,
					})
				}
				printSearch(cmd, title, res, candidates)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&year, "year", 0, "Release year hint")
	cmd.Flags().BoolVar(&anime, "anime", false, "Resolve against the anime index (MyAnimeList ids)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func printSearch(cmd *cobra.Command, title string, res matcher.Result, candidates []matcher.Candidate) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)
	if res.Matched() {
		fmt.Fprintln(out, renderStatusLine("Match", statusOK, fmt.Sprintf("%s %s (score %.3f)", res.ID, res.Candidate.Title, res.Score), colorize))
	} else if res.Failure != nil {
		fmt.Fprintln(out, renderStatusLine("Match", statusError, res.Failure.Error(), colorize))
	} else {
		fmt.Fprintln(out, renderStatusLine("Match", statusWarn, fmt.Sprintf("no candidate cleared the threshold (best %.3f)", res.Score), colorize))
	}
	if len(candidates) == 0 {
		return
	}
	rows := make([][]string, 0, len(candidates))
	for _, c := range candidates {
		year := ""
		if c.Year > 0 {
			year = strconv.Itoa(c.Year)
		}
		rows = append(rows, []string{
			c.ID,
			c.Title,
			year,
			fmt.Sprintf("%.3f", textutil.DiceSimilarity(title, c.Title)),
		})
	}
	fmt.Fprintln(out, renderTable([]string{"ID", "Title", "Year", "Similarity"}, rows, []columnAlignment{alignLeft, alignLeft, alignRight, alignRight}))
}
