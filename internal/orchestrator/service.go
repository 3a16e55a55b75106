// Package orchestrator runs one task end to end: validate, resolve the
// credential, build the prompt, call the model once and decode the answer.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"sanogenic/internal/credential"
	"sanogenic/internal/decode"
	"sanogenic/internal/llm"
	"sanogenic/internal/prompt"
	"sanogenic/internal/task"
)

// CredentialSource is satisfied by *credential.Resolver.
type CredentialSource interface {
	Resolve() (credential.Credential, error)
}

// Recorder observes successful runs. Record errors are logged and never
// change the result of Run.
type Recorder interface {
	Record(ctx context.Context, req task.Request, res task.Result) error
}

// RecorderFunc adapts a function to Recorder.
type RecorderFunc func(ctx context.Context, req task.Request, res task.Result) error

func (f RecorderFunc) Record(ctx context.Context, req task.Request, res task.Result) error {
	return f(ctx, req, res)
}

type Option func(*Service)

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.rec = r }
}

// Service holds only read-only collaborators; Run is safe for concurrent use.
type Service struct {
	creds  CredentialSource
	client llm.Client
	log    *slog.Logger
	rec    Recorder
}

func New(creds CredentialSource, client llm.Client, opts ...Option) *Service {
	if creds == nil {
		creds = credential.NewResolver()
	}
	s := &Service{creds: creds, client: client, log: slog.Default()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Run executes req. Every failure is a *task.Error; no step is retried and at
// most one Generate call is made.
func (s *Service) Run(ctx context.Context, req task.Request) (task.Result, error) {
	if req == nil {
		return nil, &task.Error{Kind: task.ErrorKindInvalidInput, Diagnostic: "request is nil"}
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	cred, err := s.creds.Resolve()
	if err != nil {
		return nil, &task.Error{Kind: task.ErrorKindNoCredential, Diagnostic: err.Error(), Err: err}
	}

	p, err := prompt.Build(req)
	if err != nil {
		return nil, &task.Error{Kind: task.ErrorKindInvalidInput, Diagnostic: err.Error(), Err: err}
	}

	if s.client == nil {
		return nil, &task.Error{Kind: task.ErrorKindUnknown, Diagnostic: "no generation client configured"}
	}
	ctx = llm.WithPhase(ctx, string(req.Kind()))
	raw, err := s.client.Generate(ctx, cred, p.Instruction, p.Schema)
	if err != nil {
		return nil, fromTransport(err)
	}

	res, err := decode.Decode(raw, p.Schema)
	if err != nil {
		s.log.WarnContext(ctx, "undecodable model response",
			"kind", string(req.Kind()),
			"bytes", len(raw),
			"err", err,
		)
		return nil, &task.Error{Kind: task.ErrorKindBadResponse, Diagnostic: err.Error(), Err: err}
	}

	if s.rec != nil {
		if rerr := s.rec.Record(ctx, req, res); rerr != nil {
			s.log.WarnContext(ctx, "record result failed", "kind", string(req.Kind()), "err", rerr)
		}
	}
	return res, nil
}

func fromTransport(err error) *task.Error {
	te := llm.Classify(err)
	kind := task.ErrorKindUnknown
	switch te.Kind {
	case llm.TransportUnauthorized:
		kind = task.ErrorKindUnauthorized
	case llm.TransportRateLimited:
		kind = task.ErrorKindRateLimited
	case llm.TransportRegionBlocked:
		kind = task.ErrorKindRegionBlocked
	}
	diag := te.Message
	if diag == "" {
		diag = te.Error()
	}
	return &task.Error{Kind: kind, Diagnostic: diag, Err: te}
}

// AnalyzeThought runs a thought analysis.
func (s *Service) AnalyzeThought(ctx context.Context, thought string) (task.Insight, error) {
	return runAs[task.Insight](ctx, s, task.ThoughtAnalysisRequest{Thought: thought})
}

// AdviseEmotion runs an emotion advice request.
func (s *Service) AdviseEmotion(ctx context.Context, emotion string, intensity int, details string) (task.EmotionEntry, error) {
	return runAs[task.EmotionEntry](ctx, s, task.EmotionAdviceRequest{Emotion: emotion, Intensity: intensity, Context: details})
}

// GenerateMetaphor runs a metaphor request.
func (s *Service) GenerateMetaphor(ctx context.Context, situation string) (task.Metaphor, error) {
	return runAs[task.Metaphor](ctx, s, task.MetaphorRequest{Situation: situation})
}

func runAs[R task.Result](ctx context.Context, s *Service, req task.Request) (R, error) {
	var zero R
	res, err := s.Run(ctx, req)
	if err != nil {
		return zero, err
	}
	out, ok := res.(R)
	if !ok {
		return zero, &task.Error{Kind: task.ErrorKindBadResponse, Diagnostic: fmt.Sprintf("got %T, want %T", res, zero)}
	}
	return out, nil
}

// IsCredentialMalformed reports whether a NoCredential error came from a
// value that is present but not a valid key.
func IsCredentialMalformed(err error) bool {
	return errors.Is(err, task.ErrNoCredential) && errors.Is(err, credential.ErrMalformed)
}
