package classifier

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// Chatter sends one instruction plus one prompt to a chat model.
type Chatter interface {
	Ask(ctx context.Context, instruction, prompt string) (string, error)
}

// Generative classifies by asking a chat model for the category number.
// It never fails: unusable replies become Invalid.
type Generative struct {
	chat        Chatter
	labels      []string
	instruction string
	logger      *slog.Logger
}

func NewGenerative(chat Chatter, logger *slog.Logger) *Generative {
	labels := DefaultLabels()
	return &Generative{
		chat:        chat,
		labels:      labels,
		instruction: buildInstruction(labels),
		logger:      logger,
	}
}

func buildInstruction(labels []string) string {
	var sb strings.Builder
	sb.WriteString("Clasifica el siguiente chat de soporte de software en una de estas categorías:\n")
	for i, l := range labels {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, l)
	}
	fmt.Fprintf(&sb, "Responde únicamente con el número de la categoría (1 a %d), sin ningún otro texto.", len(labels))
	return sb.String()
}

func (g *Generative) Classify(ctx context.Context, conversation string) (string, error) {
	reply, err := g.chat.Ask(ctx, g.instruction, conversation)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		g.logger.Warn("generative classification failed", "error", err)
		return Invalid, nil
	}

	label, ok := ParseDigit(g.labels, reply)
	if !ok {
		g.logger.Warn("unexpected classification response", "response", reply)
		return Invalid, nil
	}
	return label, nil
}

// ParseDigit maps a one-based category number to its label. Surrounding
// whitespace is ignored; anything else fails.
func ParseDigit(labels []string, reply string) (string, bool) {
	s := strings.TrimSpace(reply)
	if len(s) != 1 {
		return "", false
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > len(labels) {
		return "", false
	}
	return labels[n-1], true
}
