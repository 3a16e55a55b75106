package app

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sanogenic/internal/config"
	"sanogenic/internal/credential"
	"sanogenic/internal/journal"
)

func TestApp_ServesAndShutsDown(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &config.Config{
		Server: config.ServerConfig{Port: "127.0.0.1:0", ShutdownTimeout: time.Second},
		LLM:    config.LLMConfig{Fake: true},
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := New(ctx, cfg, log)
	require.NoError(t, err)
	_, isMemory := a.journal.(*journal.MemoryStore)
	assert.True(t, isMemory)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	done := make(chan error, 1)
	go func() { done <- a.RunListener(ctx, ln) }()

	res, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	require.NoError(t, err)
	_ = res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not shut down")
	}
}

func TestNewClient_FakeChain(t *testing.T) {
	c, err := NewClient(config.LLMConfig{Fake: true, RPS: 5, Burst: 1}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	defer c.Close()
	assert.Equal(t, "FakeLLM", c.Name())
}

func TestNewResolver_FakeNeedsNoKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	cred, err := NewResolver(config.LLMConfig{Fake: true}).Resolve()
	require.NoError(t, err)
	assert.Equal(t, "offline", cred.Token())

	_, err = NewResolver(config.LLMConfig{}).Resolve()
	assert.ErrorIs(t, err, credential.ErrMissing)
}

func TestNewResolver_FakeSkipsPrefixCheck(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "local-dev-key")

	_, err := NewResolver(config.LLMConfig{Fake: true}).Resolve()
	require.NoError(t, err)

	_, err = NewResolver(config.LLMConfig{}).Resolve()
	assert.ErrorIs(t, err, credential.ErrMalformed)
}
