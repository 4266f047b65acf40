package api

import (
	"context"
	"sync"
	"time"

	"github.com/MikeSquared-Agency/chatreport/internal/pipeline"
)

const (
	StateIdle    = "idle"
	StateRunning = "running"
	StateDone    = "done"
)

// Snapshot is the status payload.
type Snapshot struct {
	State      string                `json:"state"`
	RunID      string                `json:"run_id,omitempty"`
	Period     string                `json:"period,omitempty"`
	Processed  int                   `json:"processed"`
	Total      int                   `json:"total"`
	Skipped    int                   `json:"skipped"`
	Records    int                   `json:"records"`
	Degraded   int                   `json:"degraded"`
	Labels     []pipeline.LabelCount `json:"labels,omitempty"`
	UpdatedAt  time.Time             `json:"updated_at"`
	FinishedAt *time.Time            `json:"finished_at,omitempty"`
}

// Tracker keeps the latest run state for the status endpoint.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
	now  func() time.Time
}

func NewTracker() *Tracker {
	return &Tracker{snap: Snapshot{State: StateIdle}, now: time.Now}
}

func (t *Tracker) Progress(_ context.Context, p pipeline.Progress) {
	t.mu.Lock()
	defer t.mu.Unlock()

	runID := p.RunID.String()
	if t.snap.RunID != runID {
		t.snap = Snapshot{RunID: runID, Period: p.Period}
	}
	t.snap.State = StateRunning
	t.snap.Processed = p.Index
	t.snap.Total = p.Total
	if p.Skipped {
		t.snap.Skipped++
	}
	t.snap.UpdatedAt = t.now()
}

func (t *Tracker) Completed(_ context.Context, r *pipeline.Result) {
	t.mu.Lock()
	defer t.mu.Unlock()

	finished := r.FinishedAt
	t.snap = Snapshot{
		State:      StateDone,
		RunID:      r.RunID.String(),
		Period:     r.Period,
		Processed:  r.Total,
		Total:      r.Total,
		Skipped:    r.Skipped,
		Records:    len(r.Records),
		Degraded:   r.Degraded,
		Labels:     r.LabelCounts(),
		UpdatedAt:  t.now(),
		FinishedAt: &finished,
	}
}

func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s := t.snap
	s.Labels = append([]pipeline.LabelCount(nil), t.snap.Labels...)
	return s
}
