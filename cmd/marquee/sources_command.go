package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"marquee/internal/engine"
)

func newSourcesCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "sources",
		Short: "Show configured metadata sources and their pacing",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEngine(cmd, func(_ context.Context, e *engine.Engine) error {
				if jsonOutput {
					return writeJSON(cmd, sourceReport(e))
				}
				rows := make([][]string, 0, len(e.Sources))
				for _, status := range e.Sources {
					row := []string{status.Name, yesNo(status.Active), "", "", "", "", status.Detail}
					if stats, ok := e.Limiter.Stats(status.Name); ok {
						row[2] = stats.Interval.String()
						row[3] = dailyCapLabel(stats.DailyCap)
						row[4] = strconv.Itoa(stats.UsedToday)
						row[5] = strconv.Itoa(stats.Queued)
					}
					rows = append(rows, row)
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Source", "Active", "Interval", "Daily Cap", "Used", "Queued", "Detail"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight},
				))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

type sourceRow struct {
	Name       string `json:"name"`
	Active     bool   `json:"active"`
	Detail     string `json:"detail,omitempty"`
	IntervalMS int64  `json:"intervalMs,omitempty"`
	DailyCap   int    `json:"dailyCap,omitempty"`
	UsedToday  int    `json:"usedToday"`
	Queued     int    `json:"queued"`
}

func sourceReport(e *engine.Engine) []sourceRow {
	rows := make([]sourceRow, 0, len(e.Sources))
	for _, status := range e.Sources {
		row := sourceRow{Name: status.Name, Active: status.Active, Detail: status.Detail}
		if stats, ok := e.Limiter.Stats(status.Name); ok {
			row.IntervalMS = stats.Interval.Milliseconds()
			row.DailyCap = stats.DailyCap
			row.UsedToday = stats.UsedToday
			row.Queued = stats.Queued
		}
		rows = append(rows, row)
	}
	return rows
}

func dailyCapLabel(limit int) string {
	if limit <= 0 {
		return "unlimited"
	}
	return strconv.Itoa(limit)
}
