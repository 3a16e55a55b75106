// Package task holds the request, result and error records exchanged with the
// orchestrator. All values are immutable once constructed.
package task

import (
	"fmt"
	"strings"
)

// Kind identifies one of the supported task variants.
type Kind string

const (
	KindThoughtAnalysis Kind = "thought_analysis"
	KindEmotionAdvice   Kind = "emotion_advice"
	KindMetaphor        Kind = "metaphor"
)

const (
	MinIntensity = 1
	MaxIntensity = 10
)

// Kinds lists every task kind in a stable order.
func Kinds() []Kind {
	return []Kind{KindThoughtAnalysis, KindEmotionAdvice, KindMetaphor}
}

// ParseKind accepts the canonical kind name and the short aliases used by the
// CLI and websocket clients.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(KindThoughtAnalysis), "thought", "analysis":
		return KindThoughtAnalysis, nil
	case string(KindEmotionAdvice), "emotion", "journal":
		return KindEmotionAdvice, nil
	case string(KindMetaphor), "parable":
		return KindMetaphor, nil
	default:
		return "", fmt.Errorf("task: unknown kind %q", s)
	}
}

// Request is implemented by the three request variants only.
type Request interface {
	Kind() Kind
	// PrimaryText is the field that must be non-empty after trimming.
	PrimaryText() string
	Validate() error
	isRequest()
}

type ThoughtAnalysisRequest struct {
	Thought string `json:"thought"`
}

type EmotionAdviceRequest struct {
	Emotion   string `json:"emotion"`
	Intensity int    `json:"intensity"`
	Context   string `json:"context"`
}

type MetaphorRequest struct {
	Situation string `json:"situation"`
}

func (ThoughtAnalysisRequest) Kind() Kind { return KindThoughtAnalysis }
func (EmotionAdviceRequest) Kind() Kind   { return KindEmotionAdvice }
func (MetaphorRequest) Kind() Kind        { return KindMetaphor }

func (r ThoughtAnalysisRequest) PrimaryText() string { return r.Thought }
func (r EmotionAdviceRequest) PrimaryText() string   { return r.Emotion }
func (r MetaphorRequest) PrimaryText() string        { return r.Situation }

func (ThoughtAnalysisRequest) isRequest() {}
func (EmotionAdviceRequest) isRequest()   {}
func (MetaphorRequest) isRequest()        {}

func (r ThoughtAnalysisRequest) Validate() error {
	return validatePrimary(r.Kind(), r.Thought)
}

func (r EmotionAdviceRequest) Validate() error {
	if err := validatePrimary(r.Kind(), r.Emotion); err != nil {
		return err
	}
	if r.Intensity < MinIntensity || r.Intensity > MaxIntensity {
		return &Error{
			Kind:       ErrorKindInvalidInput,
			Diagnostic: fmt.Sprintf("intensity must be in [%d,%d], got %d", MinIntensity, MaxIntensity, r.Intensity),
			Err:        ErrIntensityOutOfRange,
		}
	}
	return nil
}

func (r MetaphorRequest) Validate() error {
	return validatePrimary(r.Kind(), r.Situation)
}

func validatePrimary(kind Kind, text string) error {
	if strings.TrimSpace(text) == "" {
		return &Error{Kind: ErrorKindEmptyInput, Diagnostic: fmt.Sprintf("%s: primary text is empty", kind)}
	}
	return nil
}

// NewThoughtAnalysis builds a validated thought-analysis request.
func NewThoughtAnalysis(thought string) (ThoughtAnalysisRequest, error) {
	r := ThoughtAnalysisRequest{Thought: thought}
	if err := r.Validate(); err != nil {
		return ThoughtAnalysisRequest{}, err
	}
	return r, nil
}

// NewEmotionAdvice builds a validated emotion-advice request. Intensity
// outside [1,10] is rejected here, before any prompt is built.
func NewEmotionAdvice(emotion string, intensity int, context string) (EmotionAdviceRequest, error) {
	r := EmotionAdviceRequest{Emotion: emotion, Intensity: intensity, Context: context}
	if err := r.Validate(); err != nil {
		return EmotionAdviceRequest{}, err
	}
	return r, nil
}

func NewMetaphor(situation string) (MetaphorRequest, error) {
	r := MetaphorRequest{Situation: situation}
	if err := r.Validate(); err != nil {
		return MetaphorRequest{}, err
	}
	return r, nil
}

// Fields is the loosely typed input accepted by front-ends that dispatch on a
// kind name (CLI flags, websocket messages).
type Fields struct {
	Text      string
	Intensity int
	Context   string
}

// For dispatches on kind without validating, so that a front-end can hand
// the request to the orchestrator and surface validation failures the same
// way as any other task error. Only an unknown kind fails here.
func (f Fields) For(kind Kind) (Request, error) {
	switch kind {
	case KindThoughtAnalysis:
		return ThoughtAnalysisRequest{Thought: f.Text}, nil
	case KindEmotionAdvice:
		return EmotionAdviceRequest{Emotion: f.Text, Intensity: f.Intensity, Context: f.Context}, nil
	case KindMetaphor:
		return MetaphorRequest{Situation: f.Text}, nil
	default:
		return nil, &Error{Kind: ErrorKindInvalidInput, Diagnostic: fmt.Sprintf("unknown task kind %q", kind)}
	}
}

// NewRequest dispatches on kind and validates the result.
func NewRequest(kind Kind, f Fields) (Request, error) {
	req, err := f.For(kind)
	if err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return req, nil
}
