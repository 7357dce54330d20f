package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists generation records in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore wires a store over the given pool, creating the
// generations table if it does not exist yet.
func NewPostgresStore(ctx context.Context, pool *pgxpool.Pool) (*PostgresStore, error) {
	if _, err := pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS generations (
		id TEXT PRIMARY KEY,
		style_name TEXT NOT NULL,
		prompt TEXT NOT NULL,
		source_summary TEXT NOT NULL DEFAULT '',
		output_url TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`); err != nil {
		return nil, fmt.Errorf("ensure generations table: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// RecordGeneration stores the record in PostgreSQL.
func (s *PostgresStore) RecordGeneration(ctx context.Context, input Generation) (Generation, error) {
	if input.ID == "" {
		input.ID = uuid.NewString()
	}
	if input.CreatedAt.IsZero() {
		input.CreatedAt = time.Now()
	}

	if _, err := s.pool.Exec(ctx,
		`INSERT INTO generations (id, style_name, prompt, source_summary, output_url, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		input.ID, input.StyleName, input.Prompt, input.SourceSummary, input.OutputURL, input.CreatedAt); err != nil {
		return Generation{}, fmt.Errorf("insert generation: %w", err)
	}

	return input, nil
}

// ListGenerations returns the most recent records.
func (s *PostgresStore) ListGenerations(ctx context.Context) ([]Generation, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, style_name, prompt, source_summary, output_url, created_at FROM generations ORDER BY created_at DESC LIMIT $1`, listLimit)
	if err != nil {
		return nil, fmt.Errorf("query generations: %w", err)
	}
	defer rows.Close()

	generations := []Generation{}
	for rows.Next() {
		var item Generation
		if err := rows.Scan(&item.ID, &item.StyleName, &item.Prompt, &item.SourceSummary, &item.OutputURL, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan generation: %w", err)
		}
		generations = append(generations, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate generations: %w", err)
	}

	return generations, nil
}

// Close releases database resources.
func (s *PostgresStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}
