// Package classifier assigns each support conversation one of the request
// categories.
package classifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
)

// Request categories, in the order the services are asked about them.
const (
	LabelMalfunction = "Reporte de un mal funcionamiento"
	LabelTraining    = "Necesidad de capacitacion"
	LabelReport      = "Solicitud de informe o reporte"
)

// Invalid is recorded when a classifier could not map the service output to
// a category.
const Invalid = "invalid classification"

// DefaultLabels returns the category set in canonical order.
func DefaultLabels() []string {
	return []string{LabelMalfunction, LabelTraining, LabelReport}
}

// Classifier resolves a normalized conversation to exactly one label.
type Classifier interface {
	Classify(ctx context.Context, conversation string) (string, error)
}

const (
	StrategyZeroShot   = "zeroshot"
	StrategyGenerative = "generative"
)

// New builds the classifier for the named strategy.
func New(strategy string, zs ZeroShotService, chat Chatter, policy RetryPolicy, logger *slog.Logger) (Classifier, error) {
	switch strategy {
	case "", StrategyZeroShot:
		if zs == nil {
			return nil, errors.New("zeroshot classifier needs a classification service")
		}
		return NewZeroShot(zs, policy, logger), nil
	case StrategyGenerative:
		if chat == nil {
			return nil, errors.New("generative classifier needs a chat service")
		}
		return NewGenerative(chat, logger), nil
	default:
		return nil, fmt.Errorf("unknown classifier strategy %q", strategy)
	}
}

// MostLikely returns the label with the highest score. Ties go to the label
// that appears first.
func MostLikely(labels []string, scores []float64) (string, error) {
	if len(labels) == 0 {
		return "", errors.New("no labels to choose from")
	}
	if len(labels) != len(scores) {
		return "", fmt.Errorf("%d labels but %d scores", len(labels), len(scores))
	}

	best := 0
	for i := 1; i < len(scores); i++ {
		if scores[i] > scores[best] {
			best = i
		}
	}
	if math.IsInf(scores[best], -1) || math.IsNaN(scores[best]) {
		return "", errors.New("no usable scores")
	}
	return labels[best], nil
}
