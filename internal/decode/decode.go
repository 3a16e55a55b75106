// Package decode validates a raw model payload against an output schema and
// converts it into the matching task result.
package decode

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"sanogenic/internal/prompt"
	"sanogenic/internal/task"
	"sanogenic/internal/util/jsonutil"
)

// Kind classifies a decode failure.
type Kind string

const (
	KindEmpty          Kind = "empty"
	KindInvalidJSON    Kind = "invalid_json"
	KindSchemaMismatch Kind = "schema_mismatch"
)

// Error is returned by Decode. Field is set for schema mismatches tied to a
// single field.
type Error struct {
	Kind   Kind
	Field  string
	Detail string
	Err    error
}

var (
	ErrEmpty          = &Error{Kind: KindEmpty}
	ErrInvalidJSON    = &Error{Kind: KindInvalidJSON}
	ErrSchemaMismatch = &Error{Kind: KindSchemaMismatch}
)

func (e *Error) Error() string {
	msg := "decode: " + string(e.Kind)
	if e.Field != "" {
		msg += ": field " + e.Field
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func mismatch(field, format string, args ...any) *Error {
	return &Error{Kind: KindSchemaMismatch, Field: field, Detail: fmt.Sprintf(format, args...)}
}

// Decode parses raw and returns the result variant of schema.Task. Required
// fields must be present, non-null and of the declared kind; unknown fields
// are ignored. Values are copied verbatim.
func Decode(raw string, schema prompt.Schema) (task.Result, error) {
	body := jsonutil.StripFence(raw)
	if body == "" {
		return nil, &Error{Kind: KindEmpty}
	}

	dec := json.NewDecoder(strings.NewReader(body))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, &Error{Kind: KindInvalidJSON, Err: err}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, &Error{Kind: KindInvalidJSON, Detail: "trailing data after JSON value"}
	}

	obj, ok := v.(map[string]any)
	if !ok {
		return nil, mismatch("", "top-level value is %s, want object", typeName(v))
	}
	if err := check(obj, schema); err != nil {
		return nil, err
	}
	return build(obj, schema)
}

func check(obj map[string]any, schema prompt.Schema) error {
	for _, f := range schema.Fields {
		val, present := obj[f.Name]
		if !present || val == nil {
			if f.Required {
				return mismatch(f.Name, "required field is missing")
			}
			continue
		}
		switch f.Kind {
		case prompt.KindString:
			if _, ok := val.(string); !ok {
				return mismatch(f.Name, "got %s, want string", typeName(val))
			}
		case prompt.KindNumber:
			if _, ok := val.(json.Number); !ok {
				return mismatch(f.Name, "got %s, want number", typeName(val))
			}
		case prompt.KindStringArray:
			arr, ok := val.([]any)
			if !ok {
				return mismatch(f.Name, "got %s, want array<string>", typeName(val))
			}
			for i, el := range arr {
				if _, ok := el.(string); !ok {
					return mismatch(f.Name, "element %d is %s, want string", i, typeName(el))
				}
			}
		default:
			return mismatch(f.Name, "unsupported field kind %q", f.Kind)
		}
	}
	return nil
}

func build(obj map[string]any, schema prompt.Schema) (task.Result, error) {
	switch schema.Task {
	case task.KindThoughtAnalysis:
		return task.Insight{
			OriginalThought: str(obj, "originalThought"),
			Distortions:     strs(obj, "distortions"),
			Analysis:        str(obj, "analysis"),
			ReframedThought: str(obj, "reframedThought"),
			SuggestedAction: str(obj, "suggestedAction"),
			ShieldTechnique: str(obj, "shieldTechnique"),
		}, nil
	case task.KindEmotionAdvice:
		intensity, err := integer(obj, "intensity")
		if err != nil {
			return nil, err
		}
		return task.EmotionEntry{
			Emotion:    str(obj, "emotion"),
			Intensity:  intensity,
			Reflection: str(obj, "reflection"),
			Advice:     str(obj, "advice"),
		}, nil
	case task.KindMetaphor:
		return task.Metaphor{
			Title: str(obj, "title"),
			Story: str(obj, "story"),
			Moral: str(obj, "moral"),
		}, nil
	default:
		return nil, mismatch("", "schema %q has no result type", schema.Name)
	}
}

func str(obj map[string]any, name string) string {
	s, _ := obj[name].(string)
	return s
}

// strs never returns nil so an empty array stays distinguishable from absent.
func strs(obj map[string]any, name string) []string {
	arr, _ := obj[name].([]any)
	out := make([]string, 0, len(arr))
	for _, el := range arr {
		s, _ := el.(string)
		out = append(out, s)
	}
	return out
}

func integer(obj map[string]any, name string) (int, error) {
	n, ok := obj[name].(json.Number)
	if !ok {
		return 0, mismatch(name, "required field is missing")
	}
	f, err := n.Float64()
	if err != nil || math.IsInf(f, 0) || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, mismatch(name, "%s is not an integer", n.String())
	}
	return int(f), nil
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case json.Number:
		return "number"
	case bool:
		return "boolean"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
