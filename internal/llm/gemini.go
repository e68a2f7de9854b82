package llm

import (
	"context"
	"fmt"
	"net/http"

	"google.golang.org/genai"
)

// geminiGenerator issues single-turn generateContent calls carrying the
// reviewer persona as the system instruction.
type geminiGenerator struct {
	client      *genai.Client
	model       string
	instruction string
}

// GeminiOptions configures a Gemini generator.
type GeminiOptions struct {
	APIKey      string
	Model       string
	Instruction string
	BaseURL     string
	HTTPClient  *http.Client
}

// NewGemini creates a Generator backed by the Gemini API.
func NewGemini(ctx context.Context, opts GeminiOptions) (Generator, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is not set")
	}

	clientCfg := &genai.ClientConfig{
		APIKey:     opts.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: opts.HTTPClient,
	}
	if opts.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &geminiGenerator{
		client:      client,
		model:       opts.Model,
		instruction: opts.Instruction,
	}, nil
}

func (g *geminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(g.instruction, genai.RoleUser),
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
