package classifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/MikeSquared-Agency/chatreport/internal/nlpcloud"
)

// ErrRateLimitExhausted is returned when MaxAttempts calls were all refused
// with 429.
var ErrRateLimitExhausted = errors.New("rate limit retries exhausted")

// ZeroShotService scores a text against candidate labels.
type ZeroShotService interface {
	Classification(ctx context.Context, text string, labels []string, multiClass bool) (*nlpcloud.Classification, error)
}

// RetryPolicy paces calls to a rate-limited service. The service allows
// about ten requests per minute.
type RetryPolicy struct {
	Throttle    time.Duration // wait after every successful call
	Cooldown    time.Duration // wait after a 429 before retrying
	MaxAttempts int           // 0 retries 429s forever
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Throttle: 6 * time.Second,
		Cooldown: 60 * time.Second,
	}
}

// Sleeper blocks for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// ZeroShot classifies through an external zero-shot NLI service.
type ZeroShot struct {
	svc    ZeroShotService
	labels []string
	policy RetryPolicy
	sleep  Sleeper
	logger *slog.Logger

	// Held across the call and its throttle so that concurrent callers share
	// one pacing budget.
	mu sync.Mutex
}

type ZeroShotOption func(*ZeroShot)

func WithSleeper(s Sleeper) ZeroShotOption {
	return func(z *ZeroShot) { z.sleep = s }
}

func WithLabels(labels []string) ZeroShotOption {
	return func(z *ZeroShot) { z.labels = labels }
}

func NewZeroShot(svc ZeroShotService, policy RetryPolicy, logger *slog.Logger, opts ...ZeroShotOption) *ZeroShot {
	z := &ZeroShot{
		svc:    svc,
		labels: DefaultLabels(),
		policy: policy,
		sleep:  sleepCtx,
		logger: logger,
	}
	for _, opt := range opts {
		opt(z)
	}
	return z
}

// Classify submits the conversation with every label and returns the
// highest scoring one. 429 responses are retried after the cooldown; any
// other failure is returned.
func (z *ZeroShot) Classify(ctx context.Context, conversation string) (string, error) {
	z.mu.Lock()
	defer z.mu.Unlock()

	for attempt := 1; ; attempt++ {
		res, err := z.svc.Classification(ctx, conversation, z.labels, true)
		if err == nil {
			label, err := MostLikely(z.labels, alignScores(z.labels, res))
			if err != nil {
				return "", fmt.Errorf("resolve label: %w", err)
			}
			if err := z.sleep(ctx, z.policy.Throttle); err != nil {
				return "", err
			}
			return label, nil
		}

		if !nlpcloud.IsRateLimited(err) {
			return "", fmt.Errorf("zero-shot classification: %w", err)
		}
		if z.policy.MaxAttempts > 0 && attempt >= z.policy.MaxAttempts {
			return "", fmt.Errorf("%w after %d attempts: %v", ErrRateLimitExhausted, attempt, err)
		}

		z.logger.Warn("classification rate limited, cooling down",
			"attempt", attempt,
			"cooldown", z.policy.Cooldown,
		)
		if err := z.sleep(ctx, z.policy.Cooldown); err != nil {
			return "", err
		}
	}
}

// alignScores reorders the service scores to follow labels. Labels the
// service did not score get -Inf.
func alignScores(labels []string, res *nlpcloud.Classification) []float64 {
	byLabel := make(map[string]float64, len(res.Labels))
	for i, l := range res.Labels {
		if i < len(res.Scores) {
			byLabel[l] = res.Scores[i]
		}
	}
	out := make([]float64, len(labels))
	for i, l := range labels {
		s, ok := byLabel[l]
		if !ok {
			s = math.Inf(-1)
		}
		out[i] = s
	}
	return out
}
