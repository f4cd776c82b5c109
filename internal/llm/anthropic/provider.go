// Package anthropic adapts the Claude Messages API to llm.Provider.
// Attachments travel as base64 content blocks next to the prompt.
package anthropic

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"mathgen-backend/internal/llm"
)

const (
	DefaultModel     = "claude-sonnet-4-20250514"
	DefaultMaxTokens = 8192
)

// models maps friendly names to Anthropic model IDs.
var models = map[string]string{
	"claude-sonnet": "claude-sonnet-4-20250514",
	"claude-haiku":  "claude-haiku-4-5-20251001",
}

// Config configures the Claude adapter.
type Config struct {
	APIKey    string
	Model     string
	MaxTokens int64
}

// Provider implements llm.Provider with the Anthropic SDK.
type Provider struct {
	client    *sdk.Client
	model     string
	maxTokens int64
}

// New returns a Claude provider. A missing API key yields llm.ErrNotConfigured.
func New(cfg Config, opts ...option.RequestOption) (*Provider, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("%w: ANTHROPIC_API_KEY is required", llm.ErrNotConfigured)
	}
	client := sdk.NewClient(append([]option.RequestOption{option.WithAPIKey(cfg.APIKey)}, opts...)...)

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}
	if id, ok := models[model]; ok {
		model = id
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	return &Provider{client: &client, model: model, maxTokens: maxTokens}, nil
}

func (p *Provider) Name() llm.Name { return llm.NameClaude }

// Model returns the resolved model ID.
func (p *Provider) Model() string { return p.model }

func (p *Provider) Execute(ctx context.Context, prompt string, attachments []string) (string, error) {
	start := time.Now()
	text, usage, err := p.execute(ctx, prompt, attachments)
	llm.LogCall(llm.NameClaude, p.model, start, usage, err)
	return text, err
}

func (p *Provider) execute(ctx context.Context, prompt string, attachments []string) (string, llm.Usage, error) {
	files, err := llm.ClassifyAll(llm.NameClaude, attachments)
	if err != nil {
		return "", llm.Usage{}, err
	}

	blocks := make([]sdk.ContentBlockParamUnion, 0, len(files)+1)
	blocks = append(blocks, sdk.NewTextBlock(prompt))
	for _, f := range files {
		blocks = append(blocks, attachmentBlock(f))
	}

	msg, err := p.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:     sdk.Model(p.model),
		MaxTokens: p.maxTokens,
		Messages: []sdk.MessageParam{{
			Role:    sdk.MessageParamRoleUser,
			Content: blocks,
		}},
	})
	if err != nil {
		return "", llm.Usage{}, mapError(err)
	}

	usage := llm.Usage{InputTokens: msg.Usage.InputTokens, OutputTokens: msg.Usage.OutputTokens}
	for _, block := range msg.Content {
		if block.Type == "text" && strings.TrimSpace(block.Text) != "" {
			return block.Text, usage, nil
		}
	}
	return "", usage, llm.Wrap(llm.NameClaude, errors.New("no text content in response"))
}

func attachmentBlock(a llm.Attachment) sdk.ContentBlockParamUnion {
	switch a.Kind {
	case llm.KindDocument:
		return sdk.NewDocumentBlock(sdk.Base64PDFSourceParam{
			Data: base64.StdEncoding.EncodeToString(a.Data),
		})
	case llm.KindImage:
		return sdk.NewImageBlockBase64(a.MediaType, base64.StdEncoding.EncodeToString(a.Data))
	default:
		return sdk.NewDocumentBlock(sdk.PlainTextSourceParam{Data: string(a.Data)})
	}
}

func mapError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var apiErr *sdk.Error
	if errors.As(err, &apiErr) {
		return llm.Wrap(llm.NameClaude, fmt.Errorf("status %d: %w", apiErr.StatusCode, err))
	}
	return llm.Wrap(llm.NameClaude, err)
}
