// Package nlpcloud is a minimal client for the NLP Cloud zero-shot
// classification endpoint.
package nlpcloud

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.nlpcloud.io/v1"

// DefaultModel is the multilingual NLI model used for Spanish transcripts.
const DefaultModel = "xlm-roberta-large-xnli"

type Client struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

type Option func(*Client)

// WithBaseURL points the client at another deployment (or a test server).
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if u := strings.TrimRight(strings.TrimSpace(baseURL), "/"); u != "" {
			c.baseURL = u
		}
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.client = hc
	}
}

func NewClient(apiKey, model string, opts ...Option) *Client {
	if model == "" {
		model = DefaultModel
	}
	c := &Client{
		apiKey:  apiKey,
		model:   model,
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type classificationRequest struct {
	Text       string   `json:"text"`
	Labels     []string `json:"labels"`
	MultiClass bool     `json:"multi_class"`
}

// Classification is the service's answer: one score per label. The service
// orders labels by descending score, not by request order.
type Classification struct {
	Labels []string  `json:"labels"`
	Scores []float64 `json:"scores"`
}

// HTTPStatusError is returned for any non-2xx response.
type HTTPStatusError struct {
	StatusCode int
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("nlpcloud: unexpected status %d: %s", e.StatusCode, e.Body)
}

// RateLimited reports whether the service rejected the call for capacity.
func (e *HTTPStatusError) RateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

// IsRateLimited reports whether err carries a 429 from the service.
func IsRateLimited(err error) bool {
	var se *HTTPStatusError
	return errors.As(err, &se) && se.RateLimited()
}

// Classification scores text against every candidate label. With multiClass
// set, each label is scored independently.
func (c *Client) Classification(ctx context.Context, text string, labels []string, multiClass bool) (*Classification, error) {
	if len(labels) == 0 {
		return nil, errors.New("nlpcloud: at least one label is required")
	}

	body, err := json.Marshal(classificationRequest{
		Text:       text,
		Labels:     labels,
		MultiClass: multiClass,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s/classification", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Token "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("api call: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPStatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}

	var out Classification
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if len(out.Labels) != len(out.Scores) {
		return nil, fmt.Errorf("nlpcloud: %d labels but %d scores", len(out.Labels), len(out.Scores))
	}
	return &out, nil
}
