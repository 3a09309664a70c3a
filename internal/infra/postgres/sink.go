// Package postgres implements the optional remote mirror. The core treats
// it as an opaque best-effort sink and never depends on it for correctness.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
)

// Sink mirrors test and result records into Postgres JSONB tables.
type Sink struct {
	pool *pgxpool.Pool
}

func NewSink(pool *pgxpool.Pool) *Sink {
	return &Sink{pool: pool}
}

func (s *Sink) SaveRecord(ctx context.Context, collection, id string, record any) error {
	table, err := tableFor(collection)
	if err != nil {
		return err
	}
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO `+table+` (id, data) VALUES ($1, $2::jsonb)
		 ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data`,
		id, string(data))
	if err != nil {
		return fmt.Errorf("mirror save: %w", err)
	}
	return nil
}

func (s *Sink) DeleteRecord(ctx context.Context, collection, id string) error {
	table, err := tableFor(collection)
	if err != nil {
		return err
	}
	if _, err := s.pool.Exec(ctx, `DELETE FROM `+table+` WHERE id = $1`, id); err != nil {
		return fmt.Errorf("mirror delete: %w", err)
	}
	return nil
}

func (s *Sink) DeleteSubmissionsForTest(ctx context.Context, testID string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM results WHERE data->>'testId' = $1`, testID)
	if err != nil {
		return fmt.Errorf("mirror submissions delete: %w", err)
	}
	return nil
}

// tableFor whitelists the two mirror tables; collection names reach us from
// callers, never from user input, but string-built SQL stays guarded anyway.
func tableFor(collection string) (string, error) {
	switch collection {
	case "tests", "results":
		return collection, nil
	default:
		return "", fmt.Errorf("unknown collection %q", collection)
	}
}
