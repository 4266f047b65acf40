package slack

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/MikeSquared-Agency/chatreport/internal/pipeline"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFormatRunSummary(t *testing.T) {
	start := time.Date(2024, 7, 31, 9, 0, 0, 0, time.UTC)
	r := &pipeline.Result{
		Period: "JULIO24",
		Records: []pipeline.EnrichedRecord{
			{Type: "Reporte de un mal funcionamiento"},
			{Type: "Necesidad de capacitacion"},
			{Type: "Reporte de un mal funcionamiento"},
		},
		Skipped:    2,
		Degraded:   1,
		StartedAt:  start,
		FinishedAt: start.Add(95 * time.Second),
	}

	msg := FormatRunSummary(r)

	checks := []string{
		"Chat report JULIO24",
		"3 built, 2 skipped, 1 degraded",
		"Duration: 1m35s",
		"Reporte de un mal funcionamiento: 2",
		"Necesidad de capacitacion: 1",
	}
	for _, check := range checks {
		if !strings.Contains(msg, check) {
			t.Errorf("expected message to contain %q, got:\n%s", check, msg)
		}
	}
	if strings.Index(msg, "Reporte de un mal") > strings.Index(msg, "Necesidad") {
		t.Error("expected most frequent label first")
	}
}

func TestFormatRunSummary_Empty(t *testing.T) {
	msg := FormatRunSummary(&pipeline.Result{Period: "AGOSTO24"})

	if !strings.Contains(msg, "No conversations were classified") {
		t.Errorf("expected empty message, got %q", msg)
	}
	if strings.Contains(msg, "degraded") {
		t.Errorf("did not expect degraded count, got %q", msg)
	}
}

func TestPostMessage_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer xoxb-test" {
			t.Errorf("expected Bearer xoxb-test, got %q", r.Header.Get("Authorization"))
		}

		body, _ := io.ReadAll(r.Body)
		var payload map[string]any
		json.Unmarshal(body, &payload)

		if payload["channel"] != "C123" {
			t.Errorf("expected channel C123, got %v", payload["channel"])
		}
		if payload["text"] != "hola" {
			t.Errorf("expected text hola, got %v", payload["text"])
		}

		json.NewEncoder(w).Encode(map[string]any{
			"ok": true,
			"ts": "1234567890.123456",
		})
	}))
	defer server.Close()

	p := NewPoster("xoxb-test", "C123", discardLogger())
	p.apiURL = server.URL

	ts, err := p.PostMessage(context.Background(), "hola")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ts != "1234567890.123456" {
		t.Errorf("expected ts 1234567890.123456, got %q", ts)
	}
}

func TestPostMessage_SlackError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"ok":    false,
			"error": "channel_not_found",
		})
	}))
	defer server.Close()

	p := NewPoster("xoxb-test", "C123", discardLogger())
	p.apiURL = server.URL

	_, err := p.PostMessage(context.Background(), "hola")
	if err == nil || !strings.Contains(err.Error(), "channel_not_found") {
		t.Fatalf("expected channel_not_found error, got %v", err)
	}
}

type recordingPoster struct {
	texts []string
	err   error
}

func (r *recordingPoster) PostMessage(_ context.Context, text string) (string, error) {
	r.texts = append(r.texts, text)
	return "1.0", r.err
}

func TestNotifier(t *testing.T) {
	rec := &recordingPoster{}
	n := NewNotifier(rec, discardLogger())

	n.Progress(context.Background(), pipeline.Progress{Index: 1, Total: 2})
	if len(rec.texts) != 0 {
		t.Fatalf("progress should not post, got %d messages", len(rec.texts))
	}

	n.Completed(context.Background(), &pipeline.Result{Period: "JULIO24"})
	if len(rec.texts) != 1 || !strings.Contains(rec.texts[0], "JULIO24") {
		t.Fatalf("expected one summary, got %v", rec.texts)
	}

	rec.err = errors.New("rate_limited")
	n.Completed(context.Background(), &pipeline.Result{Period: "JULIO24"})
	if len(rec.texts) != 2 {
		t.Fatalf("expected second attempt, got %d", len(rec.texts))
	}
}
