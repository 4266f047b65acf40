package hermes

import (
	"time"

	"github.com/MikeSquared-Agency/chatreport/internal/pipeline"
)

const (
	SubjectProgress  = "chatreport.run.progress"
	SubjectCompleted = "chatreport.run.completed"
)

// ProgressEvent is published after each input record finishes.
type ProgressEvent struct {
	RunID   string `json:"run_id"`
	Period  string `json:"period"`
	Index   int    `json:"index"`
	Total   int    `json:"total"`
	Skipped bool   `json:"skipped"`
}

// CompletedEvent summarises a finished run.
type CompletedEvent struct {
	RunID      string         `json:"run_id"`
	Period     string         `json:"period"`
	Total      int            `json:"total"`
	Records    int            `json:"records"`
	Skipped    int            `json:"skipped"`
	Degraded   int            `json:"degraded"`
	Labels     map[string]int `json:"labels"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
}

func NewProgressEvent(p pipeline.Progress) ProgressEvent {
	return ProgressEvent{
		RunID:   p.RunID.String(),
		Period:  p.Period,
		Index:   p.Index,
		Total:   p.Total,
		Skipped: p.Skipped,
	}
}

func NewCompletedEvent(r *pipeline.Result) CompletedEvent {
	labels := make(map[string]int)
	for _, lc := range r.LabelCounts() {
		labels[lc.Label] = lc.Count
	}
	return CompletedEvent{
		RunID:      r.RunID.String(),
		Period:     r.Period,
		Total:      r.Total,
		Records:    len(r.Records),
		Skipped:    r.Skipped,
		Degraded:   r.Degraded,
		Labels:     labels,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
	}
}
