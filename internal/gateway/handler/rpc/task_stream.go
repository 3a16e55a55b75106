package rpc

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"sanogenic/internal/gateway/middleware"
	"sanogenic/internal/task"
	"sanogenic/internal/viewstate"
)

// TaskStreamHandler serves one view-state controller per websocket
// connection. Clients submit tasks and receive every state transition.
type TaskStreamHandler struct {
	runner          viewstate.Runner
	showDiagnostics bool
	upgrader        websocket.Upgrader
	log             *slog.Logger
}

// NewTaskStreamHandler accepts upgrades without an Origin header or from an
// origin in allowedOrigins; "*" or an empty list accepts any origin.
func NewTaskStreamHandler(runner viewstate.Runner, showDiagnostics bool, allowedOrigins []string, log *slog.Logger) *TaskStreamHandler {
	if log == nil {
		log = slog.Default()
	}
	allow := middleware.OriginAllowed(allowedOrigins)
	return &TaskStreamHandler{
		runner:          runner,
		showDiagnostics: showDiagnostics,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allow(origin)
			},
		},
		log: log,
	}
}

const (
	taskWSWriteWait    = 10 * time.Second
	taskWSPongWait     = 60 * time.Second
	taskWSPingEvery    = (taskWSPongWait * 9) / 10
	taskWSMaxReadBytes = MaxMessageBytes
)

type taskWSInbound struct {
	Type      string `json:"type"`
	Kind      string `json:"kind,omitempty"`
	Text      string `json:"text,omitempty"`
	Intensity int    `json:"intensity,omitempty"`
	Context   string `json:"context,omitempty"`
}

type taskWSOutbound struct {
	Type       string      `json:"type"`
	Seq        uint64      `json:"seq,omitempty"`
	State      string      `json:"state,omitempty"`
	Kind       string      `json:"kind,omitempty"`
	Result     task.Result `json:"result,omitempty"`
	ErrorKind  string      `json:"errorKind,omitempty"`
	Code       string      `json:"code,omitempty"`
	Message    string      `json:"message,omitempty"`
	Diagnostic string      `json:"diagnostic,omitempty"`
}

func stateMessage(s viewstate.Snapshot) taskWSOutbound {
	return taskWSOutbound{
		Type:       "state",
		Seq:        s.Seq,
		State:      string(s.State),
		Kind:       string(s.Kind),
		Result:     s.Result,
		ErrorKind:  string(s.ErrorKind),
		Message:    s.Message,
		Diagnostic: s.Diagnostic,
	}
}

func (h *TaskStreamHandler) HandleTaskWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WarnContext(r.Context(), "task ws upgrade rejected", "origin", r.Header.Get("Origin"), "err", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(taskWSMaxReadBytes)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	if err := conn.SetReadDeadline(time.Now().Add(taskWSPongWait)); err != nil {
		h.log.WarnContext(ctx, "task ws set read deadline failed", "err", err)
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(taskWSPongWait))
	})

	writeCh := make(chan taskWSOutbound, 32)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		ticker := time.NewTicker(taskWSPingEvery)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case out := <-writeCh:
				if err := conn.SetWriteDeadline(time.Now().Add(taskWSWriteWait)); err != nil {
					return
				}
				if err := conn.WriteJSON(out); err != nil {
					return
				}
			case <-ticker.C:
				if err := conn.SetWriteDeadline(time.Now().Add(taskWSWriteWait)); err != nil {
					return
				}
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	ctrl := viewstate.New(h.runner, viewstate.WithDiagnostics(h.showDiagnostics))
	unsubscribe := ctrl.Subscribe(func(s viewstate.Snapshot) {
		pushTaskWS(writeCh, stateMessage(s))
	})
	defer unsubscribe()

	pushTaskWS(writeCh, stateMessage(ctrl.Snapshot()))

	for {
		var in taskWSInbound
		if err := conn.ReadJSON(&in); err != nil {
			cancel()
			<-writerDone
			return
		}
		msgType := strings.ToLower(strings.TrimSpace(in.Type))
		switch msgType {
		case "":
			pushTaskWS(writeCh, taskWSOutbound{Type: "error", Code: "invalid_argument", Message: "type is required"})
		case "ping":
			pushTaskWS(writeCh, taskWSOutbound{Type: "pong"})
		case "reset":
			ctrl.Reset()
		case "submit":
			kind, err := task.ParseKind(in.Kind)
			if err != nil {
				pushTaskWS(writeCh, taskWSOutbound{Type: "error", Code: "invalid_argument", Message: err.Error()})
				continue
			}
			req, err := task.Fields{Text: in.Text, Intensity: in.Intensity, Context: in.Context}.For(kind)
			if err != nil {
				pushTaskWS(writeCh, taskWSOutbound{Type: "error", Code: "invalid_argument", Message: err.Error()})
				continue
			}
			go func() {
				if _, err := ctrl.Submit(ctx, req); errors.Is(err, viewstate.ErrBusy) {
					pushTaskWS(writeCh, taskWSOutbound{Type: "error", Code: "busy", Message: err.Error()})
				}
			}()
		default:
			pushTaskWS(writeCh, taskWSOutbound{Type: "error", Code: "invalid_argument", Message: "unsupported type: " + msgType})
		}
	}
}

// pushTaskWS never blocks: when the buffer is full the oldest message is
// dropped.
func pushTaskWS(writeCh chan taskWSOutbound, out taskWSOutbound) {
	if writeCh == nil {
		return
	}
	select {
	case writeCh <- out:
		return
	default:
	}
	select {
	case <-writeCh:
	default:
	}
	select {
	case writeCh <- out:
	default:
	}
}
