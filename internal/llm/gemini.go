package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	genai "google.golang.org/genai"

	"sanogenic/internal/credential"
	"sanogenic/internal/prompt"
)

const (
	DefaultModel    = "gemini-2.5-flash"
	clientCacheSize = 16
)

// GeminiConfig configures GeminiClient. Zero values select the public Gemini
// API endpoint and DefaultModel.
type GeminiConfig struct {
	Model string
	// BaseURL overrides the API endpoint (tests, proxies).
	BaseURL string
	// Timeout bounds a single request; zero leaves it to the caller's context.
	Timeout    time.Duration
	HTTPClient *http.Client
}

// GeminiClient is a thin wrapper around the official genai client. It only
// focuses on the API call; logging and throttling are applied via Middleware.
//
// The key arrives per call, so genai clients are cached by key fingerprint.
// The cache is the only shared state and is safe for concurrent use.
type GeminiClient struct {
	cfg     GeminiConfig
	clients *lru.Cache[string, *genai.Client]
}

func NewGeminiClient(cfg GeminiConfig) (*GeminiClient, error) {
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = DefaultModel
	}
	cache, err := lru.New[string, *genai.Client](clientCacheSize)
	if err != nil {
		return nil, err
	}
	return &GeminiClient{cfg: cfg, clients: cache}, nil
}

func (g *GeminiClient) Name() string { return "Gemini:" + g.cfg.Model }

func (g *GeminiClient) Close() error {
	g.clients.Purge()
	return nil
}

// Generate asks for application/json constrained to schema and returns the
// model's text.
func (g *GeminiClient) Generate(ctx context.Context, cred credential.Credential, instruction string, schema prompt.Schema) (string, error) {
	cli, err := g.client(ctx, cred)
	if err != nil {
		return "", Classify(err)
	}
	if g.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.cfg.Timeout)
		defer cancel()
	}

	resp, err := cli.Models.GenerateContent(ctx, g.cfg.Model,
		genai.Text(instruction),
		&genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   ToGenaiSchema(schema),
		},
	)
	if err != nil {
		return "", Classify(err)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		msg := "no candidates"
		if resp != nil && resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			msg = "blocked: " + string(resp.PromptFeedback.BlockReason)
		}
		return "", &TransportError{Kind: TransportUnknown, Message: msg, Err: ErrEmptyResponse}
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && !part.Thought {
			b.WriteString(part.Text)
		}
	}
	return b.String(), nil
}

func (g *GeminiClient) client(ctx context.Context, cred credential.Credential) (*genai.Client, error) {
	key := fingerprint(cred.Token())
	if cli, ok := g.clients.Get(key); ok {
		return cli, nil
	}
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cred.Token(),
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  g.cfg.HTTPClient,
		HTTPOptions: genai.HTTPOptions{BaseURL: g.cfg.BaseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("llm: new genai client for %s: %w", cred.Mask(), err)
	}
	g.clients.Add(key, cli)
	return cli, nil
}

func fingerprint(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:8])
}

// ToGenaiSchema converts an output schema into the provider's declarative
// schema, keeping field order and the required set.
func ToGenaiSchema(s prompt.Schema) *genai.Schema {
	props := make(map[string]*genai.Schema, len(s.Fields))
	order := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		props[f.Name] = fieldSchema(f)
		order = append(order, f.Name)
	}
	return &genai.Schema{
		Type:             genai.TypeObject,
		Properties:       props,
		PropertyOrdering: order,
		Required:         s.Required(),
	}
}

func fieldSchema(f prompt.Field) *genai.Schema {
	var out *genai.Schema
	switch f.Kind {
	case prompt.KindNumber:
		out = &genai.Schema{Type: genai.TypeNumber}
	case prompt.KindStringArray:
		out = &genai.Schema{Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}}
	default:
		out = &genai.Schema{Type: genai.TypeString}
	}
	out.Description = f.Description
	return out
}
