package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/chatreport/internal/config"
	"github.com/MikeSquared-Agency/chatreport/internal/transcript"
)

func newClassifyCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "classify",
		Short: "Print the label of every eligible chat without summarizing or publishing",
		RunE: func(cmd *cobra.Command, _ []string) error {
			applyFlags(cmd, cfg)
			return classifyAll(cmd, *cfg)
		},
	}
}

func classifyAll(cmd *cobra.Command, cfg config.Config) error {
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

	out := cmd.OutOrStdout()
	for i := range records {
		rec := &records[i]
		if !rec.Eligible() {
			continue
		}
		label, err := cls.Classify(ctx, transcript.Normalize(rec.Messages))
		if err != nil {
			return fmt.Errorf("classify %s: %w", rec.Path, err)
		}
		fmt.Fprintf(out, "%s\t%s\n", rec.Path, label)
	}
	return nil
}
