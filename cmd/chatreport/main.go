package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/chatreport/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		slog.Error("chatreport failed", "error", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := &config.Config{}

	root := &cobra.Command{
		Use:           "chatreport",
		Short:         "Classify and summarize support chats into the monthly report",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			loaded, err := config.Load()
			if err != nil {
				return err
			}
			*cfg = loaded
			setupLogging(cfg.LogLevel)
			return nil
		},
	}

	root.PersistentFlags().String("period", "", "Report period, also the sheet tab name (default $PERIOD)")
	root.PersistentFlags().String("source", "", "Directory holding one folder per chat (default $SOURCE_DIR)")
	root.PersistentFlags().Int("workers", 0, "Records processed concurrently (default $WORKERS)")

	root.AddCommand(newRunCmd(cfg), newClassifyCmd(cfg))
	return root
}

// applyFlags overrides loaded settings with flags the user actually set.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("period") {
		cfg.Period, _ = flags.GetString("period")
	}
	if flags.Changed("source") {
		cfg.SourceDir, _ = flags.GetString("source")
	}
	if flags.Changed("workers") {
		cfg.Workers, _ = flags.GetInt("workers")
	}
	if flags.Changed("sheet") {
		cfg.SheetName, _ = flags.GetString("sheet")
	}
	if flags.Changed("out") {
		cfg.OutputFile, _ = flags.GetString("out")
	}
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
