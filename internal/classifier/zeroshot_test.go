package classifier

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/chatreport/internal/nlpcloud"
)

type scriptedService struct {
	mu        sync.Mutex
	responses []func() (*nlpcloud.Classification, error)
	calls     int
	texts     []string
}

func (s *scriptedService) Classification(_ context.Context, text string, labels []string, multiClass bool) (*nlpcloud.Classification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.texts = append(s.texts, text)
	i := s.calls
	s.calls++
	if i >= len(s.responses) {
		return &nlpcloud.Classification{Labels: labels, Scores: make([]float64, len(labels))}, nil
	}
	return s.responses[i]()
}

func ok(labels []string, scores []float64) func() (*nlpcloud.Classification, error) {
	return func() (*nlpcloud.Classification, error) {
		return &nlpcloud.Classification{Labels: labels, Scores: scores}, nil
	}
}

func tooMany() (*nlpcloud.Classification, error) {
	return nil, &nlpcloud.HTTPStatusError{StatusCode: http.StatusTooManyRequests}
}

type recordedSleeps struct {
	mu     sync.Mutex
	sleeps []time.Duration
}

func (r *recordedSleeps) sleep(ctx context.Context, d time.Duration) error {
	r.mu.Lock()
	r.sleeps = append(r.sleeps, d)
	r.mu.Unlock()
	return ctx.Err()
}

func testPolicy() RetryPolicy {
	return RetryPolicy{Throttle: 6 * time.Second, Cooldown: 60 * time.Second}
}

func TestZeroShot_PicksHighestScoreAndThrottles(t *testing.T) {
	svc := &scriptedService{responses: []func() (*nlpcloud.Classification, error){
		ok([]string{LabelTraining, LabelReport, LabelMalfunction}, []float64{0.7, 0.2, 0.1}),
	}}
	rec := &recordedSleeps{}
	z := NewZeroShot(svc, testPolicy(), discardLogger(), WithSleeper(rec.sleep))

	got, err := z.Classify(context.Background(), "necesito una capacitacion")
	require.NoError(t, err)
	require.Equal(t, LabelTraining, got)
	require.Equal(t, []time.Duration{6 * time.Second}, rec.sleeps)
	require.Equal(t, []string{"necesito una capacitacion"}, svc.texts)
}

func TestZeroShot_TieFollowsSuppliedOrder(t *testing.T) {
	// The service sorts by score; a tie must still resolve by our label order.
	svc := &scriptedService{responses: []func() (*nlpcloud.Classification, error){
		ok([]string{"C", "B", "A"}, []float64{0.5, 0.5, 0.0}),
	}}
	z := NewZeroShot(svc, testPolicy(), discardLogger(),
		WithSleeper((&recordedSleeps{}).sleep),
		WithLabels([]string{"A", "B", "C"}),
	)

	got, err := z.Classify(context.Background(), "x")
	require.NoError(t, err)
	require.Equal(t, "B", got)
}

func TestZeroShot_RetriesAfterRateLimit(t *testing.T) {
	svc := &scriptedService{responses: []func() (*nlpcloud.Classification, error){
		tooMany,
		tooMany,
		ok([]string{LabelReport, LabelMalfunction, LabelTraining}, []float64{0.8, 0.1, 0.1}),
	}}
	rec := &recordedSleeps{}
	z := NewZeroShot(svc, testPolicy(), discardLogger(), WithSleeper(rec.sleep))

	got, err := z.Classify(context.Background(), "quiero el informe")
	require.NoError(t, err)
	require.Equal(t, LabelReport, got)
	require.Equal(t, 3, svc.calls)
	require.Equal(t, []time.Duration{60 * time.Second, 60 * time.Second, 6 * time.Second}, rec.sleeps)
	require.Equal(t, []string{"quiero el informe", "quiero el informe", "quiero el informe"}, svc.texts)
}

func TestZeroShot_UnboundedByDefault(t *testing.T) {
	responses := make([]func() (*nlpcloud.Classification, error), 0, 51)
	for i := 0; i < 50; i++ {
		responses = append(responses, tooMany)
	}
	responses = append(responses, ok(DefaultLabels(), []float64{0.9, 0.05, 0.05}))
	svc := &scriptedService{responses: responses}
	z := NewZeroShot(svc, testPolicy(), discardLogger(), WithSleeper((&recordedSleeps{}).sleep))

	got, err := z.Classify(context.Background(), "x")
	require.NoError(t, err)
	require.Equal(t, LabelMalfunction, got)
	require.Equal(t, 51, svc.calls)
}

func TestZeroShot_MaxAttempts(t *testing.T) {
	svc := &scriptedService{responses: []func() (*nlpcloud.Classification, error){tooMany, tooMany, tooMany}}
	policy := testPolicy()
	policy.MaxAttempts = 2
	rec := &recordedSleeps{}
	z := NewZeroShot(svc, policy, discardLogger(), WithSleeper(rec.sleep))

	_, err := z.Classify(context.Background(), "x")
	require.ErrorIs(t, err, ErrRateLimitExhausted)
	require.Equal(t, 2, svc.calls)
	require.Len(t, rec.sleeps, 1)
}

func TestZeroShot_OtherErrorsPropagate(t *testing.T) {
	boom := &nlpcloud.HTTPStatusError{StatusCode: http.StatusUnauthorized, Body: "bad token"}
	svc := &scriptedService{responses: []func() (*nlpcloud.Classification, error){
		func() (*nlpcloud.Classification, error) { return nil, boom },
	}}
	rec := &recordedSleeps{}
	z := NewZeroShot(svc, testPolicy(), discardLogger(), WithSleeper(rec.sleep))

	_, err := z.Classify(context.Background(), "x")
	require.Error(t, err)
	var se *nlpcloud.HTTPStatusError
	require.True(t, errors.As(err, &se))
	require.Equal(t, http.StatusUnauthorized, se.StatusCode)
	require.Equal(t, 1, svc.calls)
	require.Empty(t, rec.sleeps)
}

func TestZeroShot_CancelledDuringCooldown(t *testing.T) {
	svc := &scriptedService{responses: []func() (*nlpcloud.Classification, error){tooMany, tooMany}}
	ctx, cancel := context.WithCancel(context.Background())
	z := NewZeroShot(svc, testPolicy(), discardLogger(), WithSleeper(func(ctx context.Context, d time.Duration) error {
		cancel()
		return ctx.Err()
	}))

	_, err := z.Classify(ctx, "x")
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, svc.calls)
}

func TestZeroShot_RealSleeperHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start := time.Now()
	err := sleepCtx(ctx, time.Hour)
	require.ErrorIs(t, err, context.Canceled)
	require.Less(t, time.Since(start), time.Second)

	require.NoError(t, sleepCtx(context.Background(), time.Millisecond))
}
