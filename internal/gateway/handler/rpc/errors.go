package rpc

import (
	"errors"
	"strings"

	"connectrpc.com/connect"

	"sanogenic/internal/journal"
	"sanogenic/internal/task"
	"sanogenic/internal/viewstate"
)

const (
	HeaderErrorKind  = "X-Sanogenic-Error-Kind"
	HeaderDiagnostic = "X-Sanogenic-Diagnostic"
)

var codeByKind = map[task.ErrorKind]connect.Code{
	task.ErrorKindEmptyInput:    connect.CodeInvalidArgument,
	task.ErrorKindInvalidInput:  connect.CodeInvalidArgument,
	task.ErrorKindNoCredential:  connect.CodeFailedPrecondition,
	task.ErrorKindUnauthorized:  connect.CodeUnauthenticated,
	task.ErrorKindRateLimited:   connect.CodeResourceExhausted,
	task.ErrorKindRegionBlocked: connect.CodePermissionDenied,
	task.ErrorKindUnknown:       connect.CodeUnavailable,
	task.ErrorKindBadResponse:   connect.CodeInternal,
}

// CodeFor maps a task error kind to its Connect code.
func CodeFor(kind task.ErrorKind) connect.Code {
	if c, ok := codeByKind[kind]; ok {
		return c
	}
	return connect.CodeInternal
}

// toTaskError converts an orchestrator error into a Connect error whose
// message is the classified user message. Diagnostics travel as metadata and
// only when enabled.
func toTaskError(err error, showDiagnostics bool) error {
	kind := task.KindOf(err)
	cerr := connect.NewError(CodeFor(kind), errors.New(viewstate.Message(err, false)))
	cerr.Meta().Set(HeaderErrorKind, string(kind))
	if showDiagnostics {
		if d := viewstate.Diagnostic(err); d != "" {
			cerr.Meta().Set(HeaderDiagnostic, headerSafe(d))
		}
	}
	return cerr
}

func toJournalError(err error) error {
	if errors.Is(err, journal.ErrNotFound) {
		return connect.NewError(connect.CodeNotFound, err)
	}
	return connect.NewError(connect.CodeInternal, err)
}

// headerSafe drops control characters that net/http rejects in header values.
func headerSafe(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return ' '
		}
		return r
	}, s)
}
