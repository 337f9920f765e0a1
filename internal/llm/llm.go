// Package llm holds the text-generation providers behind the narration relay.
package llm

import (
	"context"
	"fmt"
)

// Provider names accepted in configuration.
const (
	ProviderGemini = "gemini"
	ProviderOllama = "ollama"
)

// Generator turns a prompt into plain text. Implementations do not retry;
// the relay answers with a fallback instead.
type Generator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
	Name() string
}

// GenerationError wraps a provider failure.
type GenerationError struct {
	Provider string
	Err      error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s generation failed: %v", e.Provider, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }
