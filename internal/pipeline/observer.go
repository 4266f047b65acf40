package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
)

// Observer is told about run progress. Calls for one run are serialized.
type Observer interface {
	Progress(ctx context.Context, p Progress)
	Completed(ctx context.Context, r *Result)
}

// Observers fans out to every non-nil observer in order.
type Observers []Observer

func (obs Observers) Progress(ctx context.Context, p Progress) {
	for _, o := range obs {
		if o != nil {
			o.Progress(ctx, p)
		}
	}
}

func (obs Observers) Completed(ctx context.Context, r *Result) {
	for _, o := range obs {
		if o != nil {
			o.Completed(ctx, r)
		}
	}
}

// LogObserver prints a progress line per record and logs the completion.
type LogObserver struct {
	out    io.Writer
	logger *slog.Logger
}

func NewLogObserver(out io.Writer, logger *slog.Logger) *LogObserver {
	return &LogObserver{out: out, logger: logger}
}

func (o *LogObserver) Progress(_ context.Context, p Progress) {
	fmt.Fprintf(o.out, "Processing input %d/%d\n", p.Index, p.Total)
}

func (o *LogObserver) Completed(_ context.Context, r *Result) {
	fmt.Fprintf(o.out, "Conversations for %s built: %d records (%d skipped, %d degraded)\n",
		r.Period, len(r.Records), r.Skipped, r.Degraded)
	o.logger.Info("run complete",
		"run_id", r.RunID,
		"period", r.Period,
		"records", len(r.Records),
		"skipped", r.Skipped,
		"degraded", r.Degraded,
		"duration", r.FinishedAt.Sub(r.StartedAt).String(),
	)
}
