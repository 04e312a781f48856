package engine

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"

	"marquee/internal/enrichment"
	"marquee/internal/logging"
	"marquee/internal/metadata"
	"marquee/internal/sources"
)

// Event is one discovery as emitted by a producer, one JSON object per line.
type Event struct {
	IMDbID       string            `json:"imdbId"`
	SecondaryIDs map[string]string `json:"secondaryIds,omitempty"`
	Title        string            `json:"title"`
	Year         any               `json:"year,omitempty"`
	Type         string            `json:"type,omitempty"`
	Priority     bool              `json:"priority,omitempty"`
}

// Discovery converts the event into an enrichment request.
func (ev Event) Discovery() enrichment.Discovery {
	d := enrichment.Discovery{
		ID:           strings.TrimSpace(ev.IMDbID),
		SecondaryIDs: ev.SecondaryIDs,
		Title:        strings.TrimSpace(ev.Title),
		Year:         sources.Year(ev.Year),
		Priority:     ev.Priority,
	}
	if kind, ok := metadata.ParseKind(ev.Type); ok {
		d.Kind = kind
	}
	return d
}

// ServeOptions tunes Serve.
type ServeOptions struct {
	// Rotate runs the catalog rotator alongside the intake when a feed is
	// configured.
	Rotate bool
}

// Serve reads discovery events from in until EOF or ctx is done, enriching
// them through the intake queue. Each finished record is written to out as
// one JSON line when out is non-nil. Malformed lines are logged and skipped.
func Serve(ctx context.Context, e *Engine, in io.Reader, out io.Writer, opts ServeOptions) error {
	logger := logging.NewComponentLogger(e.Logger, "serve")

	var writeMu sync.Mutex
	var encoder *json.Encoder
	if out != nil {
		encoder = json.NewEncoder(out)
	}
	intake := e.Intake(enrichment.WithResultHandler(func(d enrichment.Discovery, rec metadata.Record, err error) {
		if encoder == nil || err != nil || rec.ID == "" {
			return
		}
		writeMu.Lock()
		defer writeMu.Unlock()
		if encErr := encoder.Encode(rec); encErr != nil {
			logger.Warn("record output failed", logging.RecordID(rec.ID), logging.Error(encErr))
		}
	}))

	if opts.Rotate && e.Config.Catalog.FeedURL != "" {
		rotator, err := e.Rotator("")
		if err != nil {
			return err
		}
		go func() {
			if _, err := rotator.Refresh(ctx); err != nil && ctx.Err() == nil {
				logging.WarnWithContext(logger, "initial catalog refresh failed", "catalog_refresh_failed",
					logging.Error(err),
					logging.String(logging.FieldImpact, "rotation waits for the next scheduled tick"),
				)
			}
		}()
		rotator.Start(ctx)
		defer rotator.Stop()
	}

	runDone := make(chan error, 1)
	go func() { runDone <- intake.Run(ctx) }()

	readDone := make(chan error, 1)
	go func() { readDone <- readEvents(ctx, in, intake, logger) }()
	var readErr error
	select {
	case readErr = <-readDone:
	case <-ctx.Done():
	}
	intake.Close()
	runErr := <-runDone

	logger.Info("serve finished",
		logging.Int64("dropped", intake.Dropped()),
	)
	if readErr != nil {
		return readErr
	}
	if errors.Is(runErr, context.Canceled) {
		return nil
	}
	return runErr
}

func readEvents(ctx context.Context, in io.Reader, intake *enrichment.Intake, logger *slog.Logger) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64<<10), 1<<20)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var ev Event
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			logger.Debug("discovery line skipped", logging.Error(err))
			continue
		}
		intake.Submit(ev.Discovery())
	}
	return scanner.Err()
}
