package llm

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"sanogenic/internal/credential"
	"sanogenic/internal/prompt"
	"sanogenic/internal/task"
)

// FakeClient returns deterministic, schema-conforming JSON for offline use.
type FakeClient struct{}

func NewFakeClient() *FakeClient { return &FakeClient{} }

func (f *FakeClient) Name() string { return "FakeLLM" }
func (f *FakeClient) Close() error { return nil }

func (f *FakeClient) Generate(ctx context.Context, _ credential.Credential, instruction string, schema prompt.Schema) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", Classify(err)
	}
	var obj any
	switch schema.Task {
	case task.KindThoughtAnalysis:
		obj = task.Insight{
			OriginalThought: inputLine(instruction),
			Distortions:     []string{"долженствование", "обобщение"},
			Analysis:        "Обида возникает из несовпадения ожиданий и реальности.",
			ReframedThought: "Коллега не обязан соответствовать моим ожиданиям.",
			SuggestedAction: "Запишите три своих ожидания и проверьте, высказывали ли вы их.",
			ShieldTechnique: "Заметить ожидание до того, как оно станет требованием.",
		}
	case task.KindEmotionAdvice:
		intensity := 5
		if v, err := strconv.Atoi(strings.TrimSuffix(inputValue(instruction, "Интенсивность"), " из 10")); err == nil {
			intensity = v
		}
		obj = map[string]any{
			"emotion":    inputLine(instruction),
			"intensity":  intensity,
			"reflection": "Эмоция указывает на то, что для вас важно.",
			"advice":     "Назовите чувство и дайте ему пройти, не раздувая его мыслями.",
		}
	case task.KindMetaphor:
		obj = task.Metaphor{
			Title: "Река и камень",
			Story: "Река встретила камень.\nОна не спорила с ним, а обошла его.",
			Moral: "Гибкость сильнее упорства.",
		}
	default:
		out := map[string]any{}
		for _, fld := range schema.Fields {
			switch fld.Kind {
			case prompt.KindNumber:
				out[fld.Name] = 0
			case prompt.KindStringArray:
				out[fld.Name] = []string{}
			default:
				out[fld.Name] = "fake " + fld.Name
			}
		}
		obj = out
	}
	b, err := json.Marshal(obj)
	if err != nil {
		return "", Classify(err)
	}
	return string(b), nil
}

// inputLine extracts the value of the first line of the [INPUT] section.
func inputLine(instruction string) string {
	_, rest, ok := strings.Cut(instruction, "[INPUT]\n")
	if !ok {
		return ""
	}
	line, _, _ := strings.Cut(rest, "\n")
	if _, v, ok := strings.Cut(line, ": "); ok {
		return v
	}
	return line
}

// inputValue finds "label: value" within the [INPUT] section.
func inputValue(instruction, label string) string {
	_, rest, ok := strings.Cut(instruction, "[INPUT]\n")
	if !ok {
		return ""
	}
	section, _, _ := strings.Cut(rest, "\n\n")
	for _, line := range strings.Split(section, "\n") {
		if v, ok := strings.CutPrefix(line, label+": "); ok {
			return v
		}
	}
	return ""
}
