package slack

import (
	"context"
	"log/slog"

	"github.com/MikeSquared-Agency/chatreport/internal/pipeline"
)

// MessagePoster is satisfied by *Poster.
type MessagePoster interface {
	PostMessage(ctx context.Context, text string) (string, error)
}

// Notifier posts a summary when a run completes. Progress is ignored.
type Notifier struct {
	poster MessagePoster
	logger *slog.Logger
}

func NewNotifier(poster MessagePoster, logger *slog.Logger) *Notifier {
	return &Notifier{poster: poster, logger: logger}
}

func (n *Notifier) Progress(context.Context, pipeline.Progress) {}

func (n *Notifier) Completed(ctx context.Context, r *pipeline.Result) {
	if _, err := n.poster.PostMessage(ctx, FormatRunSummary(r)); err != nil {
		n.logger.Error("slack run summary failed", "run_id", r.RunID, "error", err)
	}
}
