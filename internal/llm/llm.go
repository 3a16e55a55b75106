// Package llm sends a single schema-constrained generation request to the
// hosted model and returns the raw text payload.
package llm

import (
	"context"

	"sanogenic/internal/credential"
	"sanogenic/internal/prompt"
)

// Client issues exactly one provider request per Generate call. Retries,
// if any, are the caller's business.
type Client interface {
	Name() string
	Generate(ctx context.Context, cred credential.Credential, instruction string, schema prompt.Schema) (string, error)
	Close() error
}
