// Package llm defines the text-generation backend contract shared by the Claude and Gemini adapters.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Name identifies a generation backend.
type Name string

const (
	NameClaude Name = "claude"
	NameGemini Name = "gemini"
)

// Names lists the supported backends.
func Names() []Name { return []Name{NameClaude, NameGemini} }

// ParseName normalizes raw into a supported backend name.
func ParseName(raw string) (Name, error) {
	n := Name(strings.ToLower(strings.TrimSpace(raw)))
	switch n {
	case NameClaude, NameGemini:
		return n, nil
	}
	return "", fmt.Errorf(`invalid provider %q: must be "claude" or "gemini"`, raw)
}

// Provider turns a prompt plus optional local attachment files into generated text.
type Provider interface {
	Execute(ctx context.Context, prompt string, attachments []string) (string, error)
	Name() Name
}

var (
	// ErrProvider matches every normalized backend failure.
	ErrProvider = errors.New("llm provider error")
	// ErrNotConfigured reports missing credentials for a backend.
	ErrNotConfigured = errors.New("llm provider not configured")
)

// ProviderError wraps a backend failure with the backend that produced it.
type ProviderError struct {
	Provider Name
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s API error", e.Provider)
	}
	return fmt.Sprintf("%s API error: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

func (e *ProviderError) Is(target error) bool { return target == ErrProvider }

// Wrap normalizes err into a *ProviderError unless it already is one or is a context error.
func Wrap(name Name, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var pe *ProviderError
	if errors.As(err, &pe) {
		return err
	}
	return &ProviderError{Provider: name, Err: err}
}

// Usage reports token consumption of a single call.
type Usage struct {
	InputTokens  int64
	OutputTokens int64
}
