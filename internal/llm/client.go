// Package llm wraps the external generative-AI services behind a single
// "generate text from prompt" operation keyed by model identifier.
package llm

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/sevigo/code-reviewer/internal/config"
	"github.com/sevigo/code-reviewer/internal/core"
)

// Generator produces text for a prompt with one fixed model.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// Client routes a request to the generator registered for its model.
// It implements core.Provider.
type Client struct {
	mu         sync.RWMutex
	generators map[core.ModelID]Generator
	logger     *slog.Logger
}

var _ core.Provider = (*Client)(nil)

// NewClient creates an empty Client. Register generators before use.
func NewClient(logger *slog.Logger) *Client {
	return &Client{
		generators: make(map[core.ModelID]Generator),
		logger:     logger,
	}
}

// Register binds a generator to a model identifier, replacing any previous one.
func (c *Client) Register(model core.ModelID, g Generator) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generators[model] = g
}

// Models returns the configured models in the order of core.KnownModels.
func (c *Client) Models() []core.ModelID {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []core.ModelID
	for _, m := range core.KnownModels() {
		if _, ok := c.generators[m]; ok {
			out = append(out, m)
		}
	}
	return out
}

// Generate sends prompt to the generator for model. A model with no
// registered generator fails with core.ErrUnsupportedProvider.
func (c *Client) Generate(ctx context.Context, model core.ModelID, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", ErrEmptyPrompt
	}

	c.mu.RLock()
	g, ok := c.generators[model]
	c.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("%w: %q", core.ErrUnsupportedProvider, model)
	}

	c.logger.Debug("calling provider", "model", model, "prompt_chars", len(prompt))
	return g.Generate(ctx, prompt)
}

// NewClientFromConfig registers a generator for every model whose provider
// has credentials (or, for Ollama, a host) configured.
func NewClientFromConfig(ctx context.Context, cfg *config.Config, pm *PromptManager, logger *slog.Logger) (*Client, error) {
	ai := cfg.AI
	client := NewClient(logger)
	httpClient := &http.Client{}

	wrap := func(model core.ModelID, g Generator) Generator {
		if !ai.BreakerEnabled {
			return g
		}
		return WithCircuitBreaker(string(model), g, ai.BreakerThreshold, ai.BreakerCooldown, logger)
	}

	if ai.GeminiAPIKey != "" {
		instruction := pm.SystemInstruction(core.KindGenerative)
		for _, model := range []core.ModelID{core.ModelGemini20Flash, core.ModelGeminiPro} {
			g, err := NewGemini(ctx, GeminiOptions{
				APIKey:      ai.GeminiAPIKey,
				Model:       string(model),
				Instruction: instruction,
				HTTPClient:  httpClient,
			})
			if err != nil {
				return nil, err
			}
			client.Register(model, wrap(model, g))
		}
	} else {
		logger.Warn("gemini API key is not set, gemini models are disabled")
	}

	if ai.OpenAIAPIKey != "" {
		instruction := pm.SystemInstruction(core.KindChat)
		g, err := NewOpenAI(OpenAIOptions{
			APIKey:      ai.OpenAIAPIKey,
			BaseURL:     ai.OpenAIBaseURL,
			Model:       ai.OpenAIModel,
			Instruction: instruction,
			MaxTokens:   ai.MaxTokens,
			Temperature: ai.Temperature,
			HTTPClient:  httpClient,
		})
		if err != nil {
			return nil, err
		}
		client.Register(core.ModelOpenAIGPT35, wrap(core.ModelOpenAIGPT35, g))
	} else {
		logger.Warn("openai API key is not set, openai models are disabled")
	}

	if ai.OllamaHost != "" {
		instruction := pm.SystemInstruction(core.KindLocal)
		g, err := NewOllama(ai.OllamaHost, ai.OllamaModel, instruction, logger)
		if err != nil {
			return nil, err
		}
		client.Register(core.ModelOllamaLocal, wrap(core.ModelOllamaLocal, g))
	}

	logger.Info("provider client initialized", "models", client.Models())
	return client, nil
}
