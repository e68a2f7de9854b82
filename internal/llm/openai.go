package llm

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sashabaranov/go-openai"
)

// openAIGenerator issues chat completions with a system and a user message.
type openAIGenerator struct {
	client      *openai.Client
	model       string
	instruction string
	maxTokens   int
	temperature float32
}

// OpenAIOptions configures an OpenAI chat generator.
type OpenAIOptions struct {
	APIKey      string
	BaseURL     string
	Model       string
	Instruction string
	MaxTokens   int
	Temperature float32
	HTTPClient  *http.Client
}

// NewOpenAI creates a Generator backed by the OpenAI chat completion API.
func NewOpenAI(opts OpenAIOptions) (Generator, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("openai API key is not set")
	}

	config := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		config.BaseURL = opts.BaseURL
	}
	if opts.HTTPClient != nil {
		config.HTTPClient = opts.HTTPClient
	}

	return &openAIGenerator{
		client:      openai.NewClientWithConfig(config),
		model:       opts.Model,
		instruction: opts.Instruction,
		maxTokens:   opts.MaxTokens,
		temperature: opts.Temperature,
	}, nil
}

func (o *openAIGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: o.instruction},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   o.maxTokens,
		Temperature: o.temperature,
	}

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}
