package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/MikeSquared-Agency/chatreport/internal/pipeline"
)

// ReplacePeriod stores a run's records as the period's content, replacing
// whatever an earlier run stored for it.
func (s *Store) ReplacePeriod(ctx context.Context, runID uuid.UUID, period string, records []pipeline.EnrichedRecord) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM enriched_records WHERE period = $1`, period); err != nil {
		return fmt.Errorf("clear period: %w", err)
	}

	batch := &pgx.Batch{}
	for i, r := range records {
		batch.Queue(`
			INSERT INTO enriched_records
				(id, run_id, period, position, created_on, email, location, chat_duration, conversation, type, summarization, degraded)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			uuid.New(), runID, period, i+1, r.CreatedOn, r.Email, r.Location,
			durationValue(r.ChatDuration), r.Conversation, r.Type, r.Summarization, stageNames(r.Degraded),
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert records: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// PeriodRecords returns the stored records of a period in report order.
func (s *Store) PeriodRecords(ctx context.Context, period string) ([]pipeline.EnrichedRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT created_on, email, location, chat_duration, conversation, type, summarization, degraded
		FROM enriched_records
		WHERE period = $1
		ORDER BY position`, period)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var out []pipeline.EnrichedRecord
	for rows.Next() {
		var (
			r        pipeline.EnrichedRecord
			duration *float64
			degraded []string
		)
		if err := rows.Scan(&r.CreatedOn, &r.Email, &r.Location, &duration, &r.Conversation, &r.Type, &r.Summarization, &degraded); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		if duration != nil {
			r.ChatDuration = durationNumber(*duration)
		}
		for _, d := range degraded {
			r.Degraded = append(r.Degraded, pipeline.Stage(d))
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// durationNumber renders a stored duration without an exponent.
func durationNumber(v float64) json.Number {
	return json.Number(strconv.FormatFloat(v, 'f', -1, 64))
}

// durationValue returns nil for a missing or non-numeric duration.
func durationValue(n json.Number) *float64 {
	f, err := n.Float64()
	if err != nil {
		return nil
	}
	return &f
}

func stageNames(stages []pipeline.Stage) []string {
	out := make([]string, len(stages))
	for i, s := range stages {
		out[i] = string(s)
	}
	return out
}
