package rpc

import (
	"errors"
	"fmt"
	"testing"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sanogenic/internal/journal"
	"sanogenic/internal/task"
)

func TestCodeFor(t *testing.T) {
	want := map[task.ErrorKind]connect.Code{
		task.ErrorKindEmptyInput:    connect.CodeInvalidArgument,
		task.ErrorKindInvalidInput:  connect.CodeInvalidArgument,
		task.ErrorKindNoCredential:  connect.CodeFailedPrecondition,
		task.ErrorKindUnauthorized:  connect.CodeUnauthenticated,
		task.ErrorKindRateLimited:   connect.CodeResourceExhausted,
		task.ErrorKindRegionBlocked: connect.CodePermissionDenied,
		task.ErrorKindUnknown:       connect.CodeUnavailable,
		task.ErrorKindBadResponse:   connect.CodeInternal,
	}
	for _, k := range task.ErrorKinds() {
		assert.Equal(t, want[k], CodeFor(k), k)
	}
	assert.Equal(t, connect.CodeInternal, CodeFor("other"))
}

func TestToTaskError(t *testing.T) {
	src := &task.Error{Kind: task.ErrorKindRateLimited, Diagnostic: "quota\nexceeded"}

	var cerr *connect.Error
	require.True(t, errors.As(toTaskError(src, false), &cerr))
	assert.Equal(t, connect.CodeResourceExhausted, cerr.Code())
	assert.NotContains(t, cerr.Message(), "quota")
	assert.Equal(t, "rate_limited", cerr.Meta().Get(HeaderErrorKind))
	assert.Empty(t, cerr.Meta().Get(HeaderDiagnostic))

	require.True(t, errors.As(toTaskError(src, true), &cerr))
	assert.Equal(t, "quota exceeded", cerr.Meta().Get(HeaderDiagnostic))
}

func TestToJournalError(t *testing.T) {
	assert.Equal(t, connect.CodeNotFound, connect.CodeOf(toJournalError(fmt.Errorf("x: %w", journal.ErrNotFound))))
	assert.Equal(t, connect.CodeInternal, connect.CodeOf(toJournalError(errors.New("db down"))))
}

func TestJSONCodec(t *testing.T) {
	c := jsonCodec{name: "json"}
	b, err := c.Marshal(&AdviseEmotionRequest{Emotion: "<злость>", Intensity: 7})
	require.NoError(t, err)
	assert.Equal(t, `{"emotion":"<злость>","intensity":7,"context":""}`, string(b))

	var req AdviseEmotionRequest
	require.NoError(t, c.Unmarshal(nil, &req))
	assert.Zero(t, req)
	require.NoError(t, c.Unmarshal(b, &req))
	assert.Equal(t, 7, req.Intensity)
}
