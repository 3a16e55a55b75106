// Package prompt turns a task request into an instruction string and the
// output schema the model must follow.
package prompt

import (
	"fmt"
	"strconv"

	"sanogenic/internal/task"
)

// Prompt is the builder output handed to the generation client.
type Prompt struct {
	Instruction string
	Schema      Schema
}

const (
	languageRU = "Русский. Имена полей JSON оставь как в OUTPUT."
	background = "Саногенное мышление (Ю. М. Орлов): осознание и разбор мыслей, " +
		"порождающих обиду, вину, стыд, чтобы снизить самопричиняемое страдание."
)

// Build is deterministic: the same request always yields the same
// instruction and schema. User fields are embedded verbatim; the request is
// assumed to be validated already.
func Build(req task.Request) (Prompt, error) {
	var (
		outline Outline
		schema  Schema
	)
	switch r := req.(type) {
	case task.ThoughtAnalysisRequest:
		schema = InsightSchema
		outline = Outline{
			Purpose:    "Разбери мысль по саногенному мышлению Орлова.",
			Background: background,
			Input:      "Мысль: " + r.Thought,
			Rules: []string{
				"originalThought повторяет мысль пользователя.",
				"distortions: короткие ярлыки искажений; пустой массив, если их нет.",
				"shieldTechnique: конкретный «саногенный щит» против повторения.",
			},
		}
	case task.EmotionAdviceRequest:
		schema = EmotionSchema
		outline = Outline{
			Purpose:    "Дай саногенный совет для переживаемой эмоции.",
			Background: background,
			Input: "Эмоция: " + r.Emotion + "\n" +
				"Интенсивность: " + strconv.Itoa(r.Intensity) + " из 10\n" +
				"Контекст: " + r.Context,
			Rules: []string{
				"emotion и intensity повторяют ввод пользователя.",
				"reflection: что эта эмоция сообщает о ситуации.",
			},
		}
	case task.MetaphorRequest:
		schema = MetaphorSchema
		outline = Outline{
			Purpose:    "Сочини терапевтическую притчу для ситуации пользователя.",
			Background: background,
			Input:      "Ситуация: " + r.Situation,
			Rules: []string{
				"story: от 3 до 6 абзацев, разделённых переводом строки.",
				"moral: одно предложение.",
			},
		}
	default:
		return Prompt{}, fmt.Errorf("prompt: unsupported request %T", req)
	}
	outline.Fields = schema.Fields
	outline.Language = languageRU
	outline = ApplyPresets(outline, PresetStrictJSON(), PresetSupportive())

	text, err := Render(outline)
	if err != nil {
		return Prompt{}, err
	}
	return Prompt{Instruction: text, Schema: schema}, nil
}
