package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sanogenic/internal/task"
)

func TestBuild_EmotionAdvice(t *testing.T) {
	p, err := Build(task.EmotionAdviceRequest{Emotion: "anger", Intensity: 7, Context: "deadline"})
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"emotion", "intensity", "reflection", "advice"}, p.Schema.Required())
	assert.Equal(t, []string{"emotion", "intensity", "reflection", "advice"}, p.Schema.Names())
	for _, sub := range []string{"anger", "7", "deadline"} {
		assert.Contains(t, p.Instruction, sub)
	}
}

func TestBuild_Deterministic(t *testing.T) {
	req := task.ThoughtAnalysisRequest{Thought: "I resent my colleague for missing the deadline"}
	a, err := Build(req)
	require.NoError(t, err)
	b, err := Build(req)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestBuild_EmbedsFieldsVerbatim(t *testing.T) {
	odd := `{{.Secret}} "quoted" %s \n <b>`
	p, err := Build(task.MetaphorRequest{Situation: odd})
	require.NoError(t, err)
	assert.Contains(t, p.Instruction, odd)
	assert.Equal(t, MetaphorSchema, p.Schema)
}

func TestBuild_Sections(t *testing.T) {
	p, err := Build(task.ThoughtAnalysisRequest{Thought: "x"})
	require.NoError(t, err)
	for _, sec := range []string{"[PURPOSE]", "[BACKGROUND]", "[INPUT]", "[OUTPUT]", "[CONSTRAINTS]", "[RULES]", "[LANGUAGE]"} {
		assert.Contains(t, p.Instruction, sec)
	}
	assert.Contains(t, p.Instruction, "- distortions (array<string>, required)")
	assert.True(t, strings.HasSuffix(p.Instruction, "\n"))
}

func TestBuild_RejectsNil(t *testing.T) {
	_, err := Build(nil)
	assert.Error(t, err)
}

func TestSchemas(t *testing.T) {
	assert.Equal(t,
		[]string{"originalThought", "distortions", "analysis", "reframedThought", "suggestedAction", "shieldTechnique"},
		InsightSchema.Required())
	assert.Equal(t, []string{"title", "story", "moral"}, MetaphorSchema.Required())

	f, ok := InsightSchema.Field("distortions")
	require.True(t, ok)
	assert.Equal(t, KindStringArray, f.Kind)
	assert.True(t, f.Required)

	f, ok = EmotionSchema.Field("intensity")
	require.True(t, ok)
	assert.Equal(t, KindNumber, f.Kind)

	for _, k := range task.Kinds() {
		s, err := SchemaFor(k)
		require.NoError(t, err)
		assert.Equal(t, k, s.Task)
	}
	_, err := SchemaFor("poem")
	assert.Error(t, err)
}

func TestSchemaFromStruct_Tags(t *testing.T) {
	type sample struct {
		Name    string   `json:"name"`
		Tags    []string `json:"tags" prompt:"optional"`
		Skipped string   `json:"skipped" prompt:"-"`
		Score   float64  `json:"score,omitempty"`
		hidden  string
	}
	s, err := SchemaFromStruct("sample", task.KindMetaphor, sample{})
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "tags", "score"}, s.Names())
	assert.Equal(t, []string{"name", "score"}, s.Required())

	_, err = SchemaFromStruct("bad", task.KindMetaphor, struct {
		M map[string]int `json:"m"`
	}{})
	assert.Error(t, err)

	_, err = SchemaFromStruct("nil", task.KindMetaphor, nil)
	assert.Error(t, err)
}

func TestRender_RequiresPurposeAndFields(t *testing.T) {
	_, err := Render(Outline{Fields: InsightSchema.Fields})
	assert.ErrorContains(t, err, "purpose")
	_, err = Render(Outline{Purpose: "x"})
	assert.ErrorContains(t, err, "output fields")
}

func TestApplyPresets_Prepends(t *testing.T) {
	outline := ApplyPresets(Outline{Constraints: []string{"own"}, Rules: []string{"own-rule"}},
		Preset{Constraints: []string{"preset"}, Rules: []string{"preset-rule"}})
	assert.Equal(t, []string{"preset", "own"}, outline.Constraints)
	assert.Equal(t, []string{"preset-rule", "own-rule"}, outline.Rules)
}
