package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"sanogenic/internal/config"
	"sanogenic/internal/journal"
)

func initJournalStore(ctx context.Context, cfg config.JournalConfig, log *slog.Logger) (journal.Store, error) {
	dsn := strings.TrimSpace(cfg.PostgresDSN)
	if dsn == "" {
		log.Info("journal store: memory")
		return journal.NewMemoryStore(), nil
	}
	s, err := journal.NewPostgresStore(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize journal postgres store: %w", err)
	}
	log.Info("journal store: postgres")
	return s, nil
}
