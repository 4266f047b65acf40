package report

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/MikeSquared-Agency/chatreport/internal/pipeline"
)

// Export is the JSON document written by FilePublisher.
type Export struct {
	RunID      string                    `json:"run_id"`
	Period     string                    `json:"period"`
	StartedAt  time.Time                 `json:"started_at"`
	FinishedAt time.Time                 `json:"finished_at"`
	Total      int                       `json:"total"`
	Skipped    int                       `json:"skipped"`
	Degraded   int                       `json:"degraded"`
	Records    []pipeline.EnrichedRecord `json:"records"`
}

// FilePublisher writes the run as indented JSON.
type FilePublisher struct {
	path string
}

func NewFilePublisher(path string) *FilePublisher {
	return &FilePublisher{path: path}
}

func (p *FilePublisher) Publish(_ context.Context, res *pipeline.Result) error {
	records := res.Records
	if records == nil {
		records = []pipeline.EnrichedRecord{}
	}
	data, err := json.MarshalIndent(Export{
		RunID:      res.RunID.String(),
		Period:     res.Period,
		StartedAt:  res.StartedAt,
		FinishedAt: res.FinishedAt,
		Total:      res.Total,
		Skipped:    res.Skipped,
		Degraded:   res.Degraded,
		Records:    records,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal export: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	if err := os.WriteFile(p.path, data, 0o644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	return nil
}
