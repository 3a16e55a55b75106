package rpc

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"sanogenic/internal/task"
)

const (
	InsightServiceName = "sanogenic.v1.InsightService"

	InsightServiceAnalyzeThoughtProcedure   = "/" + InsightServiceName + "/AnalyzeThought"
	InsightServiceAdviseEmotionProcedure    = "/" + InsightServiceName + "/AdviseEmotion"
	InsightServiceGenerateMetaphorProcedure = "/" + InsightServiceName + "/GenerateMetaphor"
)

type AnalyzeThoughtRequest struct {
	Thought string `json:"thought"`
}

type AdviseEmotionRequest struct {
	Emotion   string `json:"emotion"`
	Intensity int    `json:"intensity"`
	Context   string `json:"context"`
}

type GenerateMetaphorRequest struct {
	Situation string `json:"situation"`
}

// TaskService is satisfied by *orchestrator.Service.
type TaskService interface {
	AnalyzeThought(ctx context.Context, thought string) (task.Insight, error)
	AdviseEmotion(ctx context.Context, emotion string, intensity int, details string) (task.EmotionEntry, error)
	GenerateMetaphor(ctx context.Context, situation string) (task.Metaphor, error)
}

type InsightHandler struct {
	svc             TaskService
	showDiagnostics bool
}

func NewInsightHandler(svc TaskService, showDiagnostics bool) *InsightHandler {
	return &InsightHandler{svc: svc, showDiagnostics: showDiagnostics}
}

func (h *InsightHandler) AnalyzeThought(ctx context.Context, req *connect.Request[AnalyzeThoughtRequest]) (*connect.Response[task.Insight], error) {
	out, err := h.svc.AnalyzeThought(ctx, req.Msg.Thought)
	if err != nil {
		return nil, toTaskError(err, h.showDiagnostics)
	}
	return connect.NewResponse(&out), nil
}

func (h *InsightHandler) AdviseEmotion(ctx context.Context, req *connect.Request[AdviseEmotionRequest]) (*connect.Response[task.EmotionEntry], error) {
	out, err := h.svc.AdviseEmotion(ctx, req.Msg.Emotion, req.Msg.Intensity, req.Msg.Context)
	if err != nil {
		return nil, toTaskError(err, h.showDiagnostics)
	}
	return connect.NewResponse(&out), nil
}

func (h *InsightHandler) GenerateMetaphor(ctx context.Context, req *connect.Request[GenerateMetaphorRequest]) (*connect.Response[task.Metaphor], error) {
	out, err := h.svc.GenerateMetaphor(ctx, req.Msg.Situation)
	if err != nil {
		return nil, toTaskError(err, h.showDiagnostics)
	}
	return connect.NewResponse(&out), nil
}

// NewInsightServiceHandler returns the mount path and handler for the
// insight procedures.
func NewInsightServiceHandler(h *InsightHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append(CodecOptions(), opts...)
	mux := http.NewServeMux()
	mux.Handle(InsightServiceAnalyzeThoughtProcedure, connect.NewUnaryHandler(
		InsightServiceAnalyzeThoughtProcedure, h.AnalyzeThought, opts...))
	mux.Handle(InsightServiceAdviseEmotionProcedure, connect.NewUnaryHandler(
		InsightServiceAdviseEmotionProcedure, h.AdviseEmotion, opts...))
	mux.Handle(InsightServiceGenerateMetaphorProcedure, connect.NewUnaryHandler(
		InsightServiceGenerateMetaphorProcedure, h.GenerateMetaphor, opts...))
	return "/" + InsightServiceName + "/", mux
}
