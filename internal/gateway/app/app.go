package app

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"sanogenic/internal/config"
	"sanogenic/internal/credential"
	"sanogenic/internal/gateway/handler/rpc"
	"sanogenic/internal/gateway/server"
	"sanogenic/internal/journal"
	"sanogenic/internal/llm"
	"sanogenic/internal/orchestrator"
)

type App struct {
	cfg     *config.Config
	log     *slog.Logger
	server  *server.Server
	client  llm.Client
	journal journal.Store
}

// New wires config, the generation client, the journal store and the
// gateway handlers.
func New(ctx context.Context, cfg *config.Config, log *slog.Logger) (*App, error) {
	if log == nil {
		log = slog.Default()
	}

	client, err := NewClient(cfg.LLM, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize llm client: %w", err)
	}
	store, err := initJournalStore(ctx, cfg.Journal, log)
	if err != nil {
		_ = client.Close()
		return nil, err
	}

	svc := orchestrator.New(
		NewResolver(cfg.LLM),
		client,
		orchestrator.WithLogger(log),
		orchestrator.WithRecorder(orchestrator.RecorderFunc(journal.Recorder(store, time.Now))),
	)

	router := server.NewRouter(server.Handlers{
		Insight:        rpc.NewInsightHandler(svc, cfg.Server.ShowDiagnostics),
		Journal:        rpc.NewJournalHandler(store),
		TaskStream:     rpc.NewTaskStreamHandler(svc, cfg.Server.ShowDiagnostics, cfg.CORS.Origins(), log),
		AllowedOrigins: cfg.CORS.Origins(),
		Log:            log,
	})

	return &App{
		cfg:     cfg,
		log:     log,
		server:  server.New(cfg.Server.Port, router, log),
		client:  client,
		journal: store,
	}, nil
}

// NewResolver reads GEMINI_API_KEY at call time. With the fake client no real
// key is needed: the prefix check is off and a missing key resolves to
// "offline".
func NewResolver(cfg config.LLMConfig) *credential.Resolver {
	r := credential.NewResolver()
	if !cfg.Fake {
		return r
	}
	r.NoPrefixCheck = true
	r.Lookup = func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			return v, true
		}
		return "offline", true
	}
	return r
}

// NewClient builds the generation client chain: Gemini (or the offline fake)
// behind logging, hooks and client-side rate limiting. Nothing in the chain
// retries.
func NewClient(cfg config.LLMConfig, log *slog.Logger) (llm.Client, error) {
	var base llm.Client
	if cfg.Fake {
		base = llm.NewFakeClient()
	} else {
		g, err := llm.NewGeminiClient(llm.GeminiConfig{
			Model:   cfg.Model,
			BaseURL: cfg.BaseURL,
			Timeout: cfg.Timeout,
		})
		if err != nil {
			return nil, err
		}
		base = g
	}
	return llm.Wrap(base,
		llm.WithLogging(log),
		llm.WithHooks(),
		llm.RateLimit(cfg.RPS, cfg.Burst),
	), nil
}

// Run serves until ctx is canceled, then shuts down within the configured
// timeout.
func (a *App) Run(ctx context.Context) error {
	return a.run(ctx, func() error { return a.server.Start() })
}

// RunListener is Run on an existing listener.
func (a *App) RunListener(ctx context.Context, ln net.Listener) error {
	return a.run(ctx, func() error { return a.server.Serve(ln) })
}

func (a *App) run(ctx context.Context, serve func() error) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(serve)
	g.Go(func() error {
		<-gctx.Done()
		a.log.Info("shutting down gateway")
		sctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
		defer cancel()
		return a.server.Shutdown(sctx)
	})
	err := g.Wait()
	if cerr := a.Close(); err == nil {
		err = cerr
	}
	return err
}

func (a *App) Close() error {
	jerr := a.journal.Close()
	cerr := a.client.Close()
	if jerr != nil {
		return jerr
	}
	return cerr
}
