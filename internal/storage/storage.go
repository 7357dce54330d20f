package storage

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates that a generation record could not be located.
var ErrNotFound = errors.New("generation not found")

// listLimit caps how many generation records are retained or returned.
const listLimit = 50

// Generation records one completed style transformation.
type Generation struct {
	ID            string    `json:"id"`
	StyleName     string    `json:"style_name"`
	Prompt        string    `json:"prompt"`
	SourceSummary string    `json:"source_summary,omitempty"`
	OutputURL     string    `json:"output_url"`
	CreatedAt     time.Time `json:"created_at"`
}

// Store defines the persistence behaviors the application relies on.
type Store interface {
	RecordGeneration(ctx context.Context, input Generation) (Generation, error)
	ListGenerations(ctx context.Context) ([]Generation, error)
	Close()
}

// NewStore selects a backing store based on whether a database URL is provided.
func NewStore(ctx context.Context, databaseURL string) (Store, error) {
	if databaseURL == "" {
		return NewInMemoryStore(), nil
	}

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	return NewPostgresStore(ctx, pool)
}
