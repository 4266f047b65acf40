package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/chatreport/internal/api"
	"github.com/MikeSquared-Agency/chatreport/internal/config"
	"github.com/MikeSquared-Agency/chatreport/internal/hermes"
	"github.com/MikeSquared-Agency/chatreport/internal/pipeline"
	"github.com/MikeSquared-Agency/chatreport/internal/report"
	"github.com/MikeSquared-Agency/chatreport/internal/slack"
	"github.com/MikeSquared-Agency/chatreport/internal/summarizer"
	"github.com/MikeSquared-Agency/chatreport/internal/transcript"
)

func newRunCmd(cfg *config.Config) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Build the report for a period and publish it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			applyFlags(cmd, cfg)
			return runReport(cmd, *cfg, dryRun)
		},
	}

	cmd.Flags().String("sheet", "", "Sheet tab to write (default: the period)")
	cmd.Flags().String("out", "", "Also write the run as JSON to this file (default $OUTPUT_FILE)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Build the report without publishing it")
	return cmd
}

func runReport(cmd *cobra.Command, cfg config.Config, dryRun bool) error {
	ctx := cmd.Context()
	logger := slog.Default()

	if err := cfg.Validate(); err != nil {
		return err
	}

	records, err := transcript.LoadDir(cfg.SourceDir, logger)
	if err != nil {
		return err
	}

	chat, err := newChatter(cfg)
	if err != nil {
		return err
	}
	cls, err := newClassifier(cfg, chat, logger)
	if err != nil {
		return err
	}

	observers := pipeline.Observers{pipeline.NewLogObserver(cmd.OutOrStdout(), logger)}

	if cfg.NatsURL != "" {
		hc, err := hermes.NewClient(cfg.NatsURL, cfg.NatsToken, logger)
		if err != nil {
			return err
		}
		defer func() {
			if err := hc.Flush(2 * time.Second); err != nil {
				logger.Warn("nats flush failed", "error", err)
			}
			hc.Close()
		}()
		observers = append(observers, hermes.NewObserver(hc, logger))
		logger.Info("NATS connected", "url", cfg.NatsURL)
	}

	if cfg.SlackBotToken != "" && cfg.SlackChannel != "" {
		poster := slack.NewPoster(cfg.SlackBotToken, cfg.SlackChannel, logger)
		observers = append(observers, slack.NewNotifier(poster, logger))
	}

	if cfg.StatusPort > 0 {
		tracker := api.NewTracker()
		observers = append(observers, tracker)

		srvCtx, stop := context.WithCancel(ctx)
		defer stop()
		srv := api.NewServer(cfg.StatusPort, tracker)
		go func() {
			if err := srv.Start(srvCtx); err != nil {
				logger.Error("HTTP server error", "error", err)
			}
		}()
	}

	// Destinations are opened before the run.
	var pubs report.Multi
	if !dryRun {
		var cleanup func()
		pubs, cleanup, err = newPublishers(ctx, cfg, logger)
		defer cleanup()
		if err != nil {
			return err
		}
	}

	p := pipeline.New(cfg.PipelineOptions(), cls, summarizer.New(chat), observers, logger)
	res, err := p.Run(ctx, records)
	if err != nil {
		return err
	}

	switch {
	case dryRun:
		logger.Info("dry run, skipping publish", "period", res.Period, "records", len(res.Records))
		return nil
	case len(pubs) == 0:
		logger.Warn("no publishers configured, report not saved", "period", res.Period)
		return nil
	}
	return pubs.Publish(ctx, res)
}
