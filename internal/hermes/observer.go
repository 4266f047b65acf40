package hermes

import (
	"context"
	"log/slog"

	"github.com/MikeSquared-Agency/chatreport/internal/pipeline"
)

// Publisher is satisfied by *Client.
type Publisher interface {
	Publish(subject string, data any) error
}

// Observer mirrors pipeline progress onto NATS. Publish failures are logged
// and never reach the run.
type Observer struct {
	pub    Publisher
	logger *slog.Logger
}

func NewObserver(pub Publisher, logger *slog.Logger) *Observer {
	return &Observer{pub: pub, logger: logger}
}

func (o *Observer) Progress(_ context.Context, p pipeline.Progress) {
	if err := o.pub.Publish(SubjectProgress, NewProgressEvent(p)); err != nil {
		o.logger.Warn("publish progress failed", "run_id", p.RunID, "index", p.Index, "error", err)
	}
}

func (o *Observer) Completed(_ context.Context, r *pipeline.Result) {
	if err := o.pub.Publish(SubjectCompleted, NewCompletedEvent(r)); err != nil {
		o.logger.Error("publish completion failed", "run_id", r.RunID, "error", err)
	}
}
