package problemsets

import (
	"context"
	"strings"

	"mathgen-backend/internal/llm"
	"mathgen-backend/internal/prompts"
)

// ProviderSource resolves a backend by name.
type ProviderSource interface {
	Get(ctx context.Context, name llm.Name) (llm.Provider, error)
}

// ProviderTranscriber asks a configured backend to transcribe the attached PDF.
type ProviderTranscriber struct {
	Providers ProviderSource
	Provider  llm.Name
}

func (t *ProviderTranscriber) Transcribe(ctx context.Context, pdfPath string) (string, error) {
	p, err := t.Providers.Get(ctx, t.Provider)
	if err != nil {
		return "", err
	}
	out, err := p.Execute(ctx, prompts.TranscribePrompt(), []string{pdfPath})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(llm.StripFences(out)), nil
}
