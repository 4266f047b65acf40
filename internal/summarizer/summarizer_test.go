package summarizer

import (
	"context"
	"errors"
	"testing"
)

type fakeChat struct {
	instruction string
	prompt      string
	reply       string
	err         error
}

func (f *fakeChat) Ask(_ context.Context, instruction, prompt string) (string, error) {
	f.instruction = instruction
	f.prompt = prompt
	return f.reply, f.err
}

func TestSummarize_Success(t *testing.T) {
	chat := &fakeChat{reply: "  El usuario no puede iniciar sesión en la app.\n"}
	s := New(chat)

	got, err := s.Summarize(context.Background(), "no puedo entrar")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "El usuario no puede iniciar sesión en la app." {
		t.Errorf("unexpected title %q", got)
	}
	if chat.instruction != SystemPrompt {
		t.Errorf("expected system prompt, got %q", chat.instruction)
	}
	if chat.prompt != "no puedo entrar" {
		t.Errorf("expected conversation as prompt, got %q", chat.prompt)
	}
}

func TestSummarize_Error(t *testing.T) {
	cause := errors.New("model not found")
	s := New(&fakeChat{err: cause})

	_, err := s.Summarize(context.Background(), "x")
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
}
