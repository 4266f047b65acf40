package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/MikeSquared-Agency/chatreport/internal/pipeline"
)

const defaultPostMessageURL = "https://slack.com/api/chat.postMessage"

type Poster struct {
	token   string
	channel string
	client  *http.Client
	logger  *slog.Logger
	apiURL  string
}

func NewPoster(token, channel string, logger *slog.Logger) *Poster {
	return &Poster{
		token:   token,
		channel: channel,
		client:  &http.Client{Timeout: 10 * time.Second},
		apiURL:  defaultPostMessageURL,
		logger:  logger,
	}
}

// PostMessage posts text to the configured channel and returns the message
// timestamp.
func (p *Poster) PostMessage(ctx context.Context, text string) (string, error) {
	body, err := json.Marshal(map[string]any{
		"channel": p.channel,
		"text":    text,
		"blocks": []map[string]any{
			{
				"type": "section",
				"text": map[string]any{
					"type": "mrkdwn",
					"text": text,
				},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal slack payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Authorization", "Bearer "+p.token)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("slack post: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var slackResp struct {
		OK    bool   `json:"ok"`
		TS    string `json:"ts"`
		Error string `json:"error,omitempty"`
	}
	if err := json.Unmarshal(respBody, &slackResp); err != nil {
		return "", fmt.Errorf("parse slack response: %w", err)
	}
	if !slackResp.OK {
		return "", fmt.Errorf("slack error: %s", slackResp.Error)
	}

	p.logger.Info("posted to slack", "ts", slackResp.TS, "channel", p.channel)
	return slackResp.TS, nil
}

// FormatRunSummary renders a finished run for the report channel.
func FormatRunSummary(r *pipeline.Result) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "*Chat report %s*\n", r.Period)
	fmt.Fprintf(&sb, "Conversations: %d built, %d skipped", len(r.Records), r.Skipped)
	if r.Degraded > 0 {
		fmt.Fprintf(&sb, ", %d degraded", r.Degraded)
	}
	sb.WriteString("\n")
	if !r.FinishedAt.IsZero() {
		fmt.Fprintf(&sb, "Duration: %s\n", r.FinishedAt.Sub(r.StartedAt).Round(time.Second))
	}

	counts := r.LabelCounts()
	if len(counts) == 0 {
		sb.WriteString("\n_No conversations were classified._")
		return sb.String()
	}

	sb.WriteString("\n*By type:*\n")
	for _, lc := range counts {
		fmt.Fprintf(&sb, "• %s: %d\n", lc.Label, lc.Count)
	}
	return sb.String()
}
