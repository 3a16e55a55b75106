package jsonutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripFence(t *testing.T) {
	cases := map[string]string{
		"```json\n{\"a\":1}\n```": `{"a":1}`,
		"```\n{\"a\":1}\n```":     `{"a":1}`,
		"  {\"a\":1}  ":           `{"a":1}`,
		"```{\"a\":1}```":         `{"a":1}`,
		"```json\n{\"a\":1}":      "```json\n{\"a\":1}",
		"":                        "",
	}
	for in, want := range cases {
		assert.Equal(t, want, StripFence(in), "input %q", in)
	}
}

func TestMarshalNoEscape(t *testing.T) {
	b, err := MarshalNoEscape(map[string]string{"s": "a<b & c>d"})
	require.NoError(t, err)
	assert.Equal(t, `{"s":"a<b & c>d"}`, string(b))

	b, err = MarshalNoEscapeIndent(map[string]int{"n": 1}, "", "  ")
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"n\": 1\n}", string(b))
}
