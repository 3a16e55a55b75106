package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sanogenic/internal/config"
)

func TestNewWriter_JSONWithServiceAndRequestID(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(config.LogConfig{Level: "info", Format: "json"}, &buf)

	ctx := WithRequestID(context.Background(), "req-1")
	l.InfoContext(ctx, "hello", "k", "v")
	l.DebugContext(ctx, "dropped")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &rec))
	assert.Equal(t, "hello", rec["msg"])
	assert.Equal(t, "sanogenic", rec["service"])
	assert.Equal(t, "req-1", rec["request_id"])
	assert.Equal(t, "v", rec["k"])
}

func TestNewWriter_Text(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(config.LogConfig{Level: "debug", Format: "text"}, &buf)
	l.WithGroup("g").Debug("x", "a", 1)
	assert.Contains(t, buf.String(), "service=sanogenic")
	assert.Contains(t, buf.String(), "g.a=1")
}

func TestParseLevel(t *testing.T) {
	cases := map[string]string{
		"debug":   "DEBUG",
		"info":    "INFO",
		"warn":    "WARN",
		"warning": "WARN",
		"error":   "ERROR",
		"unknown": "INFO",
		"":        "INFO",
	}
	for in, want := range cases {
		assert.Equal(t, want, parseLevel(in).String(), in)
	}
}

func TestRequestID(t *testing.T) {
	assert.Empty(t, RequestID(context.Background()))
	assert.Equal(t, "abc", RequestID(WithRequestID(context.Background(), "abc")))
}
