package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sanogenic/internal/config"
	"sanogenic/internal/logger"
)

func serveWithRequestID(t *testing.T, incoming string) (header, seen string) {
	t.Helper()
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = logger.RequestID(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	if incoming != "" {
		req.Header.Set(HeaderRequestID, incoming)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec.Header().Get(HeaderRequestID), seen
}

func TestRequestID_EchoesIncoming(t *testing.T) {
	header, seen := serveWithRequestID(t, "  req-42 ")
	assert.Equal(t, "req-42", header)
	assert.Equal(t, "req-42", seen)
}

func TestRequestID_GeneratesWhenMissing(t *testing.T) {
	header, seen := serveWithRequestID(t, "")
	_, err := uuid.Parse(header)
	require.NoError(t, err)
	assert.Equal(t, header, seen)
}

func TestRequestID_ReplacesOversized(t *testing.T) {
	long := strings.Repeat("a", 129)
	header, seen := serveWithRequestID(t, long)
	assert.NotEqual(t, long, header)
	_, err := uuid.Parse(header)
	require.NoError(t, err)
	assert.Equal(t, header, seen)

	exact := strings.Repeat("b", 128)
	header, _ = serveWithRequestID(t, exact)
	assert.Equal(t, exact, header)
}

func TestAccessLog_WritesOneLine(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWriter(config.LogConfig{Level: "info", Format: "json"}, &buf)
	h := RequestID(AccessLog(log)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short"))
	})))

	req := httptest.NewRequest(http.MethodPost, "/sanogenic.v1.InsightService/AnalyzeThought", nil)
	req.Header.Set(HeaderRequestID, "trace-1")
	h.ServeHTTP(httptest.NewRecorder(), req)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "http request", rec["msg"])
	assert.Equal(t, "POST", rec["method"])
	assert.Equal(t, "/sanogenic.v1.InsightService/AnalyzeThought", rec["path"])
	assert.EqualValues(t, http.StatusTeapot, rec["status"])
	assert.EqualValues(t, 5, rec["bytes"])
	assert.Equal(t, "trace-1", rec["request_id"])
	assert.Equal(t, "sanogenic", rec["service"])
}

func TestOriginAllowed(t *testing.T) {
	listed := OriginAllowed([]string{"https://app.example", " https://b.example "})
	assert.True(t, listed("https://app.example"))
	assert.True(t, listed("https://b.example"))
	assert.False(t, listed("https://evil.example"))
	assert.False(t, listed(""))

	for _, list := range [][]string{nil, {"*"}, {"https://app.example", "*"}} {
		assert.True(t, OriginAllowed(list)("https://evil.example"), "%v", list)
	}
}

func TestCORS_Preflight(t *testing.T) {
	h := CORS([]string{"https://app.example"})(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Fatal("preflight reached the handler")
	}))
	req := httptest.NewRequest(http.MethodOptions, "/ws/tasks", nil)
	req.Header.Set("Origin", "https://app.example")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://app.example", rec.Header().Get("Access-Control-Allow-Origin"))
}
