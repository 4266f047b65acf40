// Package summarizer produces a one-line title for a support conversation.
package summarizer

import (
	"context"
	"fmt"
	"strings"
)

// SystemPrompt casts the model as an expert condensing a software-support
// chat of a public-safety platform into a single sentence.
const SystemPrompt = "Eres un experto identificando el concepto principal de un chat de soporte de software de una plataforma de seguridad ciudadana para resumirlo en una frase. Sólo devuelve la frase que resume el chat."

// Chatter sends one instruction plus one prompt to a chat model.
type Chatter interface {
	Ask(ctx context.Context, instruction, prompt string) (string, error)
}

type Summarizer struct {
	chat Chatter
}

func New(chat Chatter) *Summarizer {
	return &Summarizer{chat: chat}
}

// Summarize returns the model's title for the conversation.
func (s *Summarizer) Summarize(ctx context.Context, conversation string) (string, error) {
	title, err := s.chat.Ask(ctx, SystemPrompt, conversation)
	if err != nil {
		return "", fmt.Errorf("summarize: %w", err)
	}
	return strings.TrimSpace(title), nil
}
