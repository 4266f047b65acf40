package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/MikeSquared-Agency/chatreport/internal/classifier"
	"github.com/MikeSquared-Agency/chatreport/internal/config"
	"github.com/MikeSquared-Agency/chatreport/internal/llamaapi"
	"github.com/MikeSquared-Agency/chatreport/internal/nlpcloud"
	"github.com/MikeSquared-Agency/chatreport/internal/ollama"
	"github.com/MikeSquared-Agency/chatreport/internal/report"
	"github.com/MikeSquared-Agency/chatreport/internal/sheets"
	"github.com/MikeSquared-Agency/chatreport/internal/store"
)

// chatter is implemented by both generative backends.
type chatter interface {
	Ask(ctx context.Context, instruction, prompt string) (string, error)
}

func newChatter(cfg config.Config) (chatter, error) {
	switch cfg.GenerativeBackend {
	case config.BackendOllama:
		return ollama.NewClient(cfg.OllamaHost, cfg.OllamaModel), nil
	case config.BackendLlamaAPI:
		c := llamaapi.NewClient(cfg.LlamaAPIKey, cfg.LlamaModel)
		if cfg.LlamaBaseURL != "" {
			c.SetBaseURL(cfg.LlamaBaseURL)
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown generative backend %q", cfg.GenerativeBackend)
	}
}

func newClassifier(cfg config.Config, chat chatter, logger *slog.Logger) (classifier.Classifier, error) {
	var zs classifier.ZeroShotService
	if cfg.Classifier == classifier.StrategyZeroShot {
		var opts []nlpcloud.Option
		if cfg.NLPBaseURL != "" {
			opts = append(opts, nlpcloud.WithBaseURL(cfg.NLPBaseURL))
		}
		zs = nlpcloud.NewClient(cfg.NLPAPIKey, cfg.NLPModel, opts...)
	}
	return classifier.New(cfg.Classifier, zs, chat, cfg.RetryPolicy(), logger)
}

// newPublishers returns every configured destination plus a cleanup func
// that must be called once publishing is done.
func newPublishers(ctx context.Context, cfg config.Config, logger *slog.Logger) (report.Multi, func(), error) {
	var pubs report.Multi
	cleanup := func() {}

	if cfg.SpreadsheetID != "" {
		sc := sheets.NewClient(cfg.SheetsAccessToken, logger)
		if cfg.SheetsBaseURL != "" {
			sc.SetBaseURL(cfg.SheetsBaseURL)
		}
		layout := report.DefaultLayout()
		if cfg.StartRow > 0 {
			layout.StartRow = cfg.StartRow
		}
		pubs = append(pubs, report.NewSheetPublisher(sc, cfg.SpreadsheetID, cfg.BaseSheet, cfg.SheetName, layout, logger))
	}

	if cfg.DatabaseURL != "" {
		db, err := store.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, cleanup, fmt.Errorf("connect database: %w", err)
		}
		if err := db.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, cleanup, err
		}
		cleanup = db.Close
		pubs = append(pubs, report.NewStorePublisher(db))
	}

	if cfg.OutputFile != "" {
		pubs = append(pubs, report.NewFilePublisher(cfg.OutputFile))
	}

	return pubs, cleanup, nil
}
