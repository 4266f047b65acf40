// Package pipeline turns raw chat transcripts into enriched report rows.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/MikeSquared-Agency/chatreport/internal/classifier"
	"github.com/MikeSquared-Agency/chatreport/internal/transcript"
)

// Summarizer produces a one-line title for a conversation.
type Summarizer interface {
	Summarize(ctx context.Context, conversation string) (string, error)
}

// Options configures one run.
type Options struct {
	Period          string
	Workers         int // <= 1 processes records one at a time
	ClassifyPolicy  Policy
	SummarizePolicy Policy
}

// DefaultOptions stops on classification failures and tolerates
// summarization failures.
func DefaultOptions(period string) Options {
	return Options{
		Period:          period,
		Workers:         1,
		ClassifyPolicy:  FailFast,
		SummarizePolicy: BestEffort,
	}
}

// Pipeline orchestrates normalization, classification and summarization.
type Pipeline struct {
	opts       Options
	classifier classifier.Classifier
	summarizer Summarizer
	observer   Observer
	logger     *slog.Logger
}

func New(opts Options, c classifier.Classifier, s Summarizer, obs Observer, logger *slog.Logger) *Pipeline {
	if obs == nil {
		obs = Observers{}
	}
	return &Pipeline{
		opts:       opts,
		classifier: c,
		summarizer: s,
		observer:   obs,
		logger:     logger,
	}
}

// Run enriches every eligible record. Records come back in input order;
// ineligible ones are skipped without error.
func (p *Pipeline) Run(ctx context.Context, records []transcript.Record) (*Result, error) {
	res := &Result{
		RunID:     uuid.New(),
		Period:    p.opts.Period,
		Total:     len(records),
		StartedAt: time.Now().UTC(),
	}

	p.logger.Info("run started",
		"run_id", res.RunID,
		"period", res.Period,
		"records", len(records),
		"workers", p.workers(),
	)

	slots := make([]*EnrichedRecord, len(records))
	var (
		mu   sync.Mutex
		done int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers())
	for i := range records {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out, err := p.process(gctx, i+1, &records[i])
			if err != nil {
				return err
			}

			mu.Lock()
			defer mu.Unlock()
			slots[i] = out
			done++
			if out == nil {
				res.Skipped++
			} else if len(out.Degraded) > 0 {
				res.Degraded++
			}
			p.observer.Progress(gctx, Progress{
				RunID:   res.RunID,
				Period:  res.Period,
				Index:   done,
				Total:   len(records),
				Skipped: out == nil,
			})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		p.logger.Error("run aborted", "run_id", res.RunID, "period", res.Period, "error", err)
		return nil, err
	}

	res.Records = make([]EnrichedRecord, 0, len(records)-res.Skipped)
	for _, out := range slots {
		if out != nil {
			res.Records = append(res.Records, *out)
		}
	}
	res.FinishedAt = time.Now().UTC()

	p.observer.Completed(ctx, res)
	return res, nil
}

func (p *Pipeline) workers() int {
	if p.opts.Workers < 1 {
		return 1
	}
	return p.opts.Workers
}

// process returns nil for an ineligible record.
func (p *Pipeline) process(ctx context.Context, idx int, rec *transcript.Record) (*EnrichedRecord, error) {
	if !rec.Eligible() {
		return nil, nil
	}

	conversation := transcript.Normalize(rec.Messages)
	out := &EnrichedRecord{
		Email:        rec.Visitor.Email,
		Location:     rec.Location.City,
		ChatDuration: rec.ChatDuration,
		CreatedOn:    rec.CreatedOn,
		Conversation: conversation,
	}

	label, err := p.stage(ctx, StageClassify, p.opts.ClassifyPolicy, idx, rec.Path, conversation, p.classifier.Classify)
	if err != nil {
		return nil, err
	}
	out.Type = label.Value
	if !label.OK() {
		out.Type = classifier.Invalid
		out.Degraded = append(out.Degraded, StageClassify)
	}

	title, err := p.stage(ctx, StageSummarize, p.opts.SummarizePolicy, idx, rec.Path, conversation, p.summarizer.Summarize)
	if err != nil {
		return nil, err
	}
	out.Summarization = title.Value
	if !title.OK() {
		out.Summarization = ""
		out.Degraded = append(out.Degraded, StageSummarize)
	}

	return out, nil
}

// stage runs fn and applies the policy. Under FailFast a failure is
// returned as a *StageError; under BestEffort it is logged and carried in
// the StageResult only.
func (p *Pipeline) stage(ctx context.Context, stage Stage, policy Policy, idx int, path, conversation string, fn func(context.Context, string) (string, error)) (StageResult, error) {
	v, err := fn(ctx, conversation)
	r := StageResult{Value: v, Err: err}
	if err == nil {
		return r, nil
	}
	if ctx.Err() != nil || policy == FailFast {
		return r, &StageError{Stage: stage, Index: idx, Path: path, Err: err}
	}

	p.logger.Warn(fmt.Sprintf("%s failed, continuing", stage),
		"index", idx,
		"path", path,
		"error", err,
	)
	return r, nil
}
