package report

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/chatreport/internal/pipeline"
)

// Archive is the part of the Postgres store the publisher needs.
type Archive interface {
	ReplacePeriod(ctx context.Context, runID uuid.UUID, period string, records []pipeline.EnrichedRecord) error
}

// StorePublisher archives the period in Postgres.
type StorePublisher struct {
	archive Archive
}

func NewStorePublisher(a Archive) *StorePublisher {
	return &StorePublisher{archive: a}
}

func (p *StorePublisher) Publish(ctx context.Context, res *pipeline.Result) error {
	if err := p.archive.ReplacePeriod(ctx, res.RunID, res.Period, res.Records); err != nil {
		return fmt.Errorf("archive period %s: %w", res.Period, err)
	}
	return nil
}
