// Package journal keeps the emotion diary: every successful emotion-advice
// result becomes an Entry.
package journal

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"sanogenic/internal/task"
)

// DefaultListLimit caps List when the caller passes limit <= 0.
const DefaultListLimit = 50

var ErrNotFound = errors.New("journal: entry not found")

type Entry struct {
	ID         string    `json:"id"`
	Emotion    string    `json:"emotion"`
	Intensity  int       `json:"intensity"`
	Context    string    `json:"context"`
	Reflection string    `json:"reflection"`
	Advice     string    `json:"advice"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Store persists entries. List returns newest first.
type Store interface {
	Add(ctx context.Context, e Entry) (Entry, error)
	List(ctx context.Context, limit int) ([]Entry, error)
	Get(ctx context.Context, id string) (Entry, error)
	Delete(ctx context.Context, id string) error
	Close() error
}

// NewEntry combines the request context with the model's reflection.
func NewEntry(req task.EmotionAdviceRequest, res task.EmotionEntry, now time.Time) Entry {
	return Entry{
		ID:         uuid.NewString(),
		Emotion:    res.Emotion,
		Intensity:  res.Intensity,
		Context:    req.Context,
		Reflection: res.Reflection,
		Advice:     res.Advice,
		CreatedAt:  now.UTC(),
	}
}

// Recorder returns a function suitable for orchestrator.RecorderFunc that
// journals emotion-advice results and ignores every other kind.
func Recorder(s Store, now func() time.Time) func(ctx context.Context, req task.Request, res task.Result) error {
	if now == nil {
		now = time.Now
	}
	return func(ctx context.Context, req task.Request, res task.Result) error {
		r, ok := req.(task.EmotionAdviceRequest)
		if !ok {
			return nil
		}
		e, ok := res.(task.EmotionEntry)
		if !ok {
			return nil
		}
		_, err := s.Add(ctx, NewEntry(r, e, now()))
		return err
	}
}

func normalizeID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if _, err := uuid.Parse(id); err != nil {
		return "", ErrNotFound
	}
	return id, nil
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > DefaultListLimit {
		return DefaultListLimit
	}
	return limit
}
