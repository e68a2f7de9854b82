package llm

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/sevigo/goframe/llms"
	"github.com/sevigo/goframe/llms/ollama"
)

// ollamaGenerator calls a local model. Ollama's generate call has no
// separate system slot here, so the persona is sent ahead of the prompt.
type ollamaGenerator struct {
	model       llms.Model
	instruction string
}

// NewOllama creates a Generator backed by a local Ollama server.
func NewOllama(host, model, instruction string, logger *slog.Logger) (Generator, error) {
	m, err := newOllamaModel(host, model, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create ollama model: %w", err)
	}
	return &ollamaGenerator{model: m, instruction: instruction}, nil
}

func newOllamaModel(host, model string, logger *slog.Logger) (llms.Model, error) {
	return ollama.New(
		ollama.WithServerURL(host),
		ollama.WithModel(model),
		ollama.WithHTTPClient(newOllamaHTTPClient()),
		ollama.WithLogger(logger),
	)
}

func (o *ollamaGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := o.model.Call(ctx, o.instruction+"\n\n"+prompt)
	if err != nil {
		return "", fmt.Errorf("ollama call: %w", err)
	}
	if resp == "" {
		return "", ErrEmptyResponse
	}
	return resp, nil
}

// newOllamaHTTPClient creates an HTTP client with longer timeouts for Ollama requests.
// Local models can take a while on the first request while weights load.
func newOllamaHTTPClient() *http.Client {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		MaxConnsPerHost:     10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   5 * time.Minute,
	}
}
