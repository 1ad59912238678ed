package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/digest/pkg/domain"
)

// Research runs the pipeline for query and persists the record, including
// failed and cancelled ones, so they can be resumed later.
func Research(ctx context.Context, app *App, query string, style domain.Style) (*domain.Record, error) {
	rec, err := app.Engine.Run(ctx, query, style)
	if rec == nil {
		return nil, err
	}
	if serr := app.Sessions.Save(context.WithoutCancel(ctx), rec); serr != nil {
		app.logger.Error("failed to persist run", "run_id", rec.ID, "err", serr)
		err = errors.Join(err, fmt.Errorf("failed to persist run %s: %w", rec.ID, serr))
	}
	return rec, err
}

// Resume loads a stored run, re-enters the pipeline at step and stores the
// outcome under the run lock.
func Resume(ctx context.Context, app *App, runID, step, instructions string) (*domain.Record, error) {
	return app.Sessions.Update(ctx, runID, func(ctx context.Context, rec *domain.Record) (*domain.Record, error) {
		return app.Engine.Resume(ctx, rec, step, instructions)
	})
}

// Runs lists stored run IDs.
func Runs(ctx context.Context, app *App) ([]string, error) {
	return app.Sessions.List(ctx)
}

// WriteJSON writes v as indented JSON followed by a newline.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
