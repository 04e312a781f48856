package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"marquee/internal/metadata"
	"marquee/internal/store"
)

func newShowCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show [imdb-id]",
		Short: "Display stored records",
		Long:  "Display a stored record by IMDb id, or list the most recently enriched records when no id is given.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			runCtx := cmd.Context()
			if runCtx == nil {
				runCtx = context.Background()
			}
			st, err := store.Open(runCtx, cfg)
			if err != nil {
				return fmt.Errorf("open record store: %w", err)
			}
			defer st.Close()

			out := cmd.OutOrStdout()
			if len(args) == 1 {
				id := strings.TrimSpace(args[0])
				rec, ok, err := st.Load(runCtx, id)
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("no stored record for %s (run `marquee enrich %s` first)", id, id)
				}
				if jsonOutput {
					return writeJSON(cmd, rec)
				}
				printRecord(out, rec, shouldColorize(out))
				return nil
			}

			records, err := st.List(runCtx, limit)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, records)
			}
			if len(records) == 0 {
				fmt.Fprintln(out, "No stored records")
				return nil
			}
			fmt.Fprintln(out, renderRecordTable(records))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of records to list")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func renderRecordTable(records []metadata.Record) string {
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		year := ""
		if rec.Year > 0 {
			year = strconv.Itoa(rec.Year)
		}
		updated := ""
		if !rec.UpdatedAt.IsZero() {
			updated = rec.UpdatedAt.Local().Format(time.DateTime)
		}
		rows = append(rows, []string{
			rec.ID,
			rec.Title,
			year,
			string(rec.Kind),
			rec.Stage.String(),
			strings.Join(rec.Sources, ","),
			updated,
		})
	}
	return renderTable(
		[]string{"ID", "Title", "Year", "Kind", "Stage", "Sources", "Updated"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight},
	)
}
