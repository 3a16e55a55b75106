// Package credential resolves the Gemini API key from the process
// environment at call time.
package credential

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// EnvKey is the only configuration slot the key is read from.
const EnvKey = "GEMINI_API_KEY"

// GeminiKeyPrefix is the prefix every Google AI Studio key carries.
const GeminiKeyPrefix = "AIza"

var (
	ErrMissing   = errors.New("credential: missing")
	ErrMalformed = errors.New("credential: malformed")
)

var placeholders = map[string]struct{}{
	"placeholder_api_key": {},
	"your_api_key":        {},
	"your-api-key":        {},
	"your_api_key_here":   {},
	"api_key":             {},
	"undefined":           {},
	"null":                {},
	"changeme":            {},
}

// Credential is an opaque API token. Its String form is always masked.
type Credential struct {
	token string
}

// New wraps a raw token without validation. Prefer Resolver.Resolve.
func New(token string) Credential { return Credential{token: token} }

// Token returns the raw value for the transport layer. Do not log it.
func (c Credential) Token() string { return c.token }

func (c Credential) IsZero() bool { return c.token == "" }

// Mask shows the first and last four characters only.
func (c Credential) Mask() string {
	return Mask(c.token)
}

func (c Credential) String() string   { return c.Mask() }
func (c Credential) GoString() string { return "credential.Credential{" + c.Mask() + "}" }

// Mask hides everything but the edges of s. Short values are fully hidden.
func Mask(s string) string {
	const edge = 4
	if s == "" {
		return "<empty>"
	}
	if len(s) <= edge*2 {
		return strings.Repeat("*", len(s))
	}
	return s[:edge] + strings.Repeat("*", len(s)-edge*2) + s[len(s)-edge:]
}

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// Resolver reads and validates the credential. The zero value reads
// GEMINI_API_KEY from the process environment and enforces the Gemini prefix.
type Resolver struct {
	Key    string
	Lookup LookupFunc
	// Prefix is the provider's key prefix. Set NoPrefixCheck to skip the check
	// for providers with no known format.
	Prefix        string
	NoPrefixCheck bool
}

// NewResolver returns a resolver for GEMINI_API_KEY backed by os.LookupEnv.
func NewResolver() *Resolver {
	return &Resolver{Key: EnvKey, Lookup: os.LookupEnv, Prefix: GeminiKeyPrefix}
}

// Static returns a resolver that always sees token, useful for tests and for
// embedding callers that already hold a key.
func Static(token string) *Resolver {
	return &Resolver{
		Key: EnvKey,
		Lookup: func(string) (string, bool) {
			return token, token != ""
		},
		Prefix: GeminiKeyPrefix,
	}
}

// Resolve performs the lookup and validation. It has no side effects.
func (r *Resolver) Resolve() (Credential, error) {
	key := EnvKey
	lookup := LookupFunc(os.LookupEnv)
	prefix := GeminiKeyPrefix
	noPrefix := false
	if r != nil {
		if r.Key != "" {
			key = r.Key
		}
		if r.Lookup != nil {
			lookup = r.Lookup
		}
		if r.Prefix != "" {
			prefix = r.Prefix
		}
		noPrefix = r.NoPrefixCheck
	}

	raw, ok := lookup(key)
	if !ok {
		return Credential{}, fmt.Errorf("%w: %s is not set", ErrMissing, key)
	}
	token := strings.TrimSpace(raw)
	if token == "" {
		return Credential{}, fmt.Errorf("%w: %s is empty", ErrMissing, key)
	}
	if isPlaceholder(token) {
		return Credential{}, fmt.Errorf("%w: %s holds a placeholder value", ErrMissing, key)
	}
	if !noPrefix && !strings.HasPrefix(token, prefix) {
		return Credential{}, fmt.Errorf("%w: %s=%s does not start with %q", ErrMalformed, key, Mask(token), prefix)
	}
	return Credential{token: token}, nil
}

func isPlaceholder(token string) bool {
	_, ok := placeholders[strings.ToLower(token)]
	return ok
}
