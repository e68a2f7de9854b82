package app

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/code-reviewer/internal/config"
	"github.com/sevigo/code-reviewer/internal/llm"
	"github.com/sevigo/code-reviewer/internal/server"
	"github.com/sevigo/code-reviewer/internal/storage"
)

func TestApp_RunStopsOnCancel(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &config.Config{
		Server:   config.ServerConfig{Port: "0", RequestTimeout: time.Second},
		Database: &config.DBConfig{Driver: config.DriverMemory},
	}
	srv := server.NewServer(cfg, server.Deps{Store: storage.NewMemoryStore()}, logger)
	a := NewApp(cfg, srv, llm.NewClient(logger), logger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		assert.Fail(t, "Run did not return after cancel")
	}
}
