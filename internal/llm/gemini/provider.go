// Package gemini adapts the Gemini API to llm.Provider.
// Attachments are read locally: PDFs are reduced to text, images are sent inline.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"mathgen-backend/internal/extract"
	"mathgen-backend/internal/llm"
)

const DefaultModel = "gemini-2.0-flash"

// noFences is appended to every prompt; StripFences still runs on the reply.
const noFences = "\n\nReturn raw LaTeX only. Do not wrap the answer in markdown code fences."

// models maps friendly names to Gemini model IDs.
var models = map[string]string{
	"gemini-flash": "gemini-2.0-flash",
	"gemini-pro":   "gemini-2.0-pro",
}

// Config configures the Gemini adapter. BaseURL overrides the API endpoint.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
}

// Provider implements llm.Provider with the Google GenAI SDK.
type Provider struct {
	client *genai.Client
	model  string
}

// New returns a Gemini provider. A missing API key yields llm.ErrNotConfigured.
func New(ctx context.Context, cfg Config) (*Provider, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("%w: GOOGLE_API_KEY is required", llm.ErrNotConfigured)
	}
	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}
	if id, ok := models[model]; ok {
		model = id
	}
	return &Provider{client: client, model: model}, nil
}

func (p *Provider) Name() llm.Name { return llm.NameGemini }

// Model returns the resolved model ID.
func (p *Provider) Model() string { return p.model }

func (p *Provider) Execute(ctx context.Context, prompt string, attachments []string) (string, error) {
	start := time.Now()
	text, usage, err := p.execute(ctx, prompt, attachments)
	llm.LogCall(llm.NameGemini, p.model, start, usage, err)
	return text, err
}

func (p *Provider) execute(ctx context.Context, prompt string, attachments []string) (string, llm.Usage, error) {
	files, err := llm.ClassifyAll(llm.NameGemini, attachments)
	if err != nil {
		return "", llm.Usage{}, err
	}

	var text strings.Builder
	text.WriteString(prompt)
	var inline []*genai.Part
	for _, f := range files {
		switch f.Kind {
		case llm.KindImage:
			inline = append(inline, &genai.Part{InlineData: &genai.Blob{MIMEType: f.MediaType, Data: f.Data}})
		case llm.KindDocument:
			body, err := extract.ExtractTextFromBytes(ctx, f.Data)
			if err != nil {
				return "", llm.Usage{}, llm.Wrap(llm.NameGemini, fmt.Errorf("read %s: %w", f.Name(), err))
			}
			appendFile(&text, f.Name(), body)
		default:
			appendFile(&text, f.Name(), string(f.Data))
		}
	}
	text.WriteString(noFences)

	parts := append([]*genai.Part{{Text: text.String()}}, inline...)
	result, err := p.client.Models.GenerateContent(ctx, p.model,
		[]*genai.Content{{Role: "user", Parts: parts}}, &genai.GenerateContentConfig{})
	if err != nil {
		return "", llm.Usage{}, mapError(err)
	}

	var usage llm.Usage
	if result.UsageMetadata != nil {
		usage = llm.Usage{
			InputTokens:  int64(result.UsageMetadata.PromptTokenCount),
			OutputTokens: int64(result.UsageMetadata.CandidatesTokenCount),
		}
	}
	if fb := result.PromptFeedback; fb != nil && fb.BlockReason != "" && fb.BlockReason != genai.BlockedReasonUnspecified {
		return "", usage, llm.Wrap(llm.NameGemini, fmt.Errorf("response blocked: %s", fb.BlockReason))
	}
	out := llm.StripFences(result.Text())
	if out == "" {
		return "", usage, llm.Wrap(llm.NameGemini, errors.New("no valid response content found"))
	}
	return out, usage, nil
}

func appendFile(b *strings.Builder, name, body string) {
	b.WriteString("\n\n--- ")
	b.WriteString(name)
	b.WriteString(" ---\n")
	b.WriteString(strings.TrimSpace(body))
}

func mapError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return llm.Wrap(llm.NameGemini, fmt.Errorf("status %d: %w", apiErr.Code, err))
	}
	return llm.Wrap(llm.NameGemini, err)
}
