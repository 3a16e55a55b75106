package prompt

import (
	"bytes"
	"fmt"
	"strings"
)

// Outline holds the sections of an instruction before rendering.
type Outline struct {
	Purpose     string
	Background  string
	Input       string
	Fields      []Field
	Constraints []string
	Rules       []string
	Language    string
}

// Preset holds reusable constraints and rules.
type Preset struct {
	Constraints []string
	Rules       []string
}

// ApplyPresets prepends preset constraints and rules to outline.
func ApplyPresets(outline Outline, presets ...Preset) Outline {
	if len(presets) == 0 {
		return outline
	}
	var merged Preset
	for _, p := range presets {
		merged.Constraints = append(merged.Constraints, p.Constraints...)
		merged.Rules = append(merged.Rules, p.Rules...)
	}
	outline.Constraints = append(merged.Constraints, outline.Constraints...)
	outline.Rules = append(merged.Rules, outline.Rules...)
	return outline
}

// PresetStrictJSON enforces JSON-only output.
func PresetStrictJSON() Preset {
	return Preset{
		Constraints: []string{
			"Верни только JSON-объект строго по схеме OUTPUT.",
			"Без markdown, комментариев и лишних полей.",
		},
	}
}

// PresetSupportive keeps the tone non-clinical.
func PresetSupportive() Preset {
	return Preset{
		Rules: []string{
			"Пиши бережно и без оценок; не ставь диагнозов.",
			"Не придумывай факты о человеке сверх того, что он написал.",
		},
	}
}

// Render produces the sectioned instruction text.
func Render(outline Outline) (string, error) {
	if strings.TrimSpace(outline.Purpose) == "" {
		return "", fmt.Errorf("prompt: purpose is empty")
	}
	if len(outline.Fields) == 0 {
		return "", fmt.Errorf("prompt: output fields are empty")
	}
	var buf bytes.Buffer
	writeSection(&buf, "PURPOSE", outline.Purpose)
	writeSection(&buf, "BACKGROUND", outline.Background)
	writeSection(&buf, "INPUT", outline.Input)
	writeSection(&buf, "OUTPUT", formatFields(outline.Fields))
	writeSection(&buf, "CONSTRAINTS", formatList(outline.Constraints))
	writeSection(&buf, "RULES", formatList(outline.Rules))
	writeSection(&buf, "LANGUAGE", outline.Language)
	return strings.TrimSpace(buf.String()) + "\n", nil
}

func formatFields(fields []Field) string {
	var buf strings.Builder
	for _, f := range fields {
		req := "optional"
		if f.Required {
			req = "required"
		}
		if f.Description != "" {
			fmt.Fprintf(&buf, "- %s (%s, %s): %s\n", f.Name, f.Kind, req, f.Description)
		} else {
			fmt.Fprintf(&buf, "- %s (%s, %s)\n", f.Name, f.Kind, req)
		}
	}
	return strings.TrimRight(buf.String(), "\n")
}

func formatList(items []string) string {
	var buf strings.Builder
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		fmt.Fprintf(&buf, "- %s\n", item)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func writeSection(buf *bytes.Buffer, title, body string) {
	if strings.TrimSpace(body) == "" {
		return
	}
	buf.WriteString("[")
	buf.WriteString(title)
	buf.WriteString("]\n")
	buf.WriteString(body)
	if !strings.HasSuffix(body, "\n") {
		buf.WriteString("\n")
	}
	buf.WriteString("\n")
}
