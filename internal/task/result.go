package task

// Result is implemented by the three result variants only.
type Result interface {
	Kind() Kind
	isResult()
}

// Insight is the sanogenic analysis of a single thought.
type Insight struct {
	OriginalThought string   `json:"originalThought" prompt_desc:"the user's thought, restated"`
	Distortions     []string `json:"distortions" prompt_desc:"short labels of thinking distortions; may be empty"`
	Analysis        string   `json:"analysis" prompt_desc:"sanogenic breakdown of the thought per Y. M. Orlov"`
	ReframedThought string   `json:"reframedThought" prompt_desc:"the thought reformulated without self-generated distress"`
	SuggestedAction string   `json:"suggestedAction" prompt_desc:"one concrete practice for today"`
	ShieldTechnique string   `json:"shieldTechnique" prompt_desc:"a sanogenic shield technique against recurrence"`
}

// EmotionEntry is the reflection and advice for a named emotion.
type EmotionEntry struct {
	Emotion    string `json:"emotion" prompt_desc:"the emotion as named by the user"`
	Intensity  int    `json:"intensity" prompt_type:"number" prompt_desc:"intensity from 1 to 10 as given"`
	Reflection string `json:"reflection" prompt_desc:"a short reflection on what the emotion signals"`
	Advice     string `json:"advice" prompt_desc:"sanogenic advice for working through the emotion"`
}

// Metaphor is a short therapeutic parable.
type Metaphor struct {
	Title string `json:"title" prompt_desc:"parable title"`
	Story string `json:"story" prompt_desc:"the parable; paragraphs separated by newlines"`
	Moral string `json:"moral" prompt_desc:"one-sentence moral"`
}

func (Insight) Kind() Kind      { return KindThoughtAnalysis }
func (EmotionEntry) Kind() Kind { return KindEmotionAdvice }
func (Metaphor) Kind() Kind     { return KindMetaphor }

func (Insight) isResult()      {}
func (EmotionEntry) isResult() {}
func (Metaphor) isResult()     {}
