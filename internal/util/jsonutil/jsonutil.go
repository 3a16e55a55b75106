package jsonutil

import (
	"bytes"
	"encoding/json"
	"strings"
)

// MarshalNoEscape encodes v into JSON without escaping <, >, & into \u003c and friends.
func MarshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	// Remove trailing newline from json.Encoder.Encode
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// MarshalNoEscapeIndent is MarshalNoEscape with indentation.
func MarshalNoEscapeIndent(v any, prefix, indent string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent(prefix, indent)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// StripFence removes one surrounding markdown code fence such as
// "```json\n{...}\n```". Input without a complete fence is returned trimmed
// but otherwise unchanged.
func StripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") || len(s) < 6 || !strings.HasSuffix(s, "```") {
		return s
	}
	body := strings.TrimSuffix(s[3:], "```")
	// drop the info string ("json", "JSON", ...) on the opening line
	if nl := strings.IndexByte(body, '\n'); nl >= 0 {
		if info := strings.TrimSpace(body[:nl]); !strings.ContainsAny(info, "{[\"") {
			body = body[nl+1:]
		}
	}
	return strings.TrimSpace(body)
}
