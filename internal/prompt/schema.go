package prompt

import (
	"fmt"
	"reflect"
	"strings"

	"sanogenic/internal/task"
)

// FieldKind is the primitive kind of a schema field.
type FieldKind string

const (
	KindString      FieldKind = "string"
	KindNumber      FieldKind = "number"
	KindStringArray FieldKind = "array<string>"
)

// Field describes a single output field.
type Field struct {
	Name        string
	Kind        FieldKind
	Required    bool
	Description string
}

// Schema is the ordered description of a result shape.
type Schema struct {
	Name   string
	Task   task.Kind
	Fields []Field
}

// Required returns the required field names in declaration order.
func (s Schema) Required() []string {
	out := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		if f.Required {
			out = append(out, f.Name)
		}
	}
	return out
}

// Names returns every field name in declaration order.
func (s Schema) Names() []string {
	out := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		out = append(out, f.Name)
	}
	return out
}

// Field looks a field up by name.
func (s Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

var (
	InsightSchema  = mustSchema("insight", task.KindThoughtAnalysis, task.Insight{})
	EmotionSchema  = mustSchema("emotion_entry", task.KindEmotionAdvice, task.EmotionEntry{})
	MetaphorSchema = mustSchema("metaphor", task.KindMetaphor, task.Metaphor{})
)

// SchemaFor returns the fixed schema of a task kind.
func SchemaFor(kind task.Kind) (Schema, error) {
	switch kind {
	case task.KindThoughtAnalysis:
		return InsightSchema, nil
	case task.KindEmotionAdvice:
		return EmotionSchema, nil
	case task.KindMetaphor:
		return MetaphorSchema, nil
	default:
		return Schema{}, fmt.Errorf("prompt: no schema for kind %q", kind)
	}
}

// Tag names read by SchemaFromStruct.
const (
	tagName     = "json"
	tagDesc     = "prompt_desc"
	tagType     = "prompt_type"
	tagOptional = "prompt"
)

// SchemaFromStruct derives a schema from struct tags. Every field is required
// unless tagged `prompt:"optional"`; `prompt:"-"` skips a field.
func SchemaFromStruct(name string, kind task.Kind, v any) (Schema, error) {
	if v == nil {
		return Schema{}, fmt.Errorf("prompt: struct is nil")
	}
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return Schema{}, fmt.Errorf("prompt: expected struct, got %s", t.Kind())
	}
	fields := make([]Field, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		opts := strings.Split(f.Tag.Get(tagOptional), ",")
		if hasOpt(opts, "-") {
			continue
		}
		fname := strings.Split(f.Tag.Get(tagName), ",")[0]
		if fname == "-" {
			continue
		}
		if fname == "" {
			fname = f.Name
		}
		fk, err := fieldKind(f)
		if err != nil {
			return Schema{}, fmt.Errorf("prompt: field %s: %w", f.Name, err)
		}
		fields = append(fields, Field{
			Name:        fname,
			Kind:        fk,
			Required:    !hasOpt(opts, "optional"),
			Description: strings.TrimSpace(f.Tag.Get(tagDesc)),
		})
	}
	if len(fields) == 0 {
		return Schema{}, fmt.Errorf("prompt: %s has no fields", t.Name())
	}
	return Schema{Name: name, Task: kind, Fields: fields}, nil
}

func mustSchema(name string, kind task.Kind, v any) Schema {
	s, err := SchemaFromStruct(name, kind, v)
	if err != nil {
		panic(err)
	}
	return s
}

func fieldKind(f reflect.StructField) (FieldKind, error) {
	if tag := strings.TrimSpace(f.Tag.Get(tagType)); tag != "" {
		switch FieldKind(tag) {
		case KindString, KindNumber, KindStringArray:
			return FieldKind(tag), nil
		}
		return "", fmt.Errorf("unsupported prompt_type %q", tag)
	}
	t := f.Type
	switch t.Kind() {
	case reflect.String:
		return KindString, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return KindNumber, nil
	case reflect.Slice:
		if t.Elem().Kind() == reflect.String {
			return KindStringArray, nil
		}
	}
	return "", fmt.Errorf("unsupported type %s", t)
}

func hasOpt(opts []string, want string) bool {
	for _, o := range opts {
		if strings.TrimSpace(o) == want {
			return true
		}
	}
	return false
}
