package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	_ "github.com/jackc/pgx/v5/stdlib"
)

const entryCacheSize = 256

// PostgresStore keeps entries in a single auto-created table.
type PostgresStore struct {
	db *sql.DB

	schemaOnce sync.Once
	schemaErr  error

	cache *lru.Cache[string, Entry]
}

func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", strings.TrimSpace(dsn))
	if err != nil {
		return nil, fmt.Errorf("journal: open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("journal: ping: %w", err)
	}
	cache, err := lru.New[string, Entry](entryCacheSize)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	s := &PostgresStore{db: db, cache: cache}
	if err := s.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	s.schemaOnce.Do(func() {
		_, err := s.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS journal_entries (
  id UUID PRIMARY KEY,
  emotion TEXT NOT NULL,
  intensity INTEGER NOT NULL,
  context TEXT NOT NULL DEFAULT '',
  reflection TEXT NOT NULL,
  advice TEXT NOT NULL,
  created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_journal_entries_created_at ON journal_entries (created_at DESC);
`)
		if err != nil {
			s.schemaErr = fmt.Errorf("journal: ensure schema: %w", err)
		}
	})
	return s.schemaErr
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (Entry, error) {
	var e Entry
	if err := row.Scan(&e.ID, &e.Emotion, &e.Intensity, &e.Context, &e.Reflection, &e.Advice, &e.CreatedAt); err != nil {
		return Entry{}, err
	}
	e.CreatedAt = e.CreatedAt.UTC()
	return e, nil
}

func (s *PostgresStore) Add(ctx context.Context, e Entry) (Entry, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO journal_entries (id, emotion, intensity, context, reflection, advice, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		e.ID, e.Emotion, e.Intensity, e.Context, e.Reflection, e.Advice, e.CreatedAt)
	if err != nil {
		return Entry{}, fmt.Errorf("journal: add: %w", err)
	}
	s.cache.Add(e.ID, e)
	return e, nil
}

func (s *PostgresStore) List(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, emotion, intensity, context, reflection, advice, created_at
FROM journal_entries ORDER BY created_at DESC, id DESC LIMIT $1`, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("journal: list: %w", err)
	}
	defer rows.Close()
	out := make([]Entry, 0, 16)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("journal: list: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Get(ctx context.Context, id string) (Entry, error) {
	id, err := normalizeID(id)
	if err != nil {
		return Entry{}, err
	}
	if e, ok := s.cache.Get(id); ok {
		return e, nil
	}
	row := s.db.QueryRowContext(ctx, `
SELECT id, emotion, intensity, context, reflection, advice, created_at
FROM journal_entries WHERE id = $1`, id)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, fmt.Errorf("journal: get: %w", err)
	}
	s.cache.Add(id, e)
	return e, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	id, err := normalizeID(id)
	if err != nil {
		return err
	}
	s.cache.Remove(id)
	res, err := s.db.ExecContext(ctx, `DELETE FROM journal_entries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("journal: delete: %w", err)
	}
	return deleted(res)
}

func deleted(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("journal: delete: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Close() error {
	s.cache.Purge()
	return s.db.Close()
}
