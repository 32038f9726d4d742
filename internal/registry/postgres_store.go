package registry

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"
)

const createRostersTable = `
	CREATE TABLE IF NOT EXISTS activity_rosters (
		activity_name TEXT PRIMARY KEY,
		participants  JSONB NOT NULL DEFAULT '[]'::jsonb,
		updated_at    TIMESTAMPTZ NOT NULL
	)`

// PostgresStore keeps one row per activity in activity_rosters.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the rosters table if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createRostersTable); err != nil {
		return fmt.Errorf("create activity_rosters: %w", err)
	}
	return nil
}

func (s *PostgresStore) LoadParticipants(ctx context.Context, activity string) ([]string, bool, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT participants FROM activity_rosters
		WHERE activity_name = $1`, activity).Scan(&raw)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("query roster: %w", err)
	}

	var participants []string
	if err := json.Unmarshal(raw, &participants); err != nil {
		return nil, false, fmt.Errorf("decode roster for %s: %w", activity, err)
	}
	if participants == nil {
		participants = []string{}
	}
	return participants, true, nil
}

func (s *PostgresStore) SaveParticipants(ctx context.Context, activity string, participants []string) error {
	if participants == nil {
		participants = []string{}
	}
	data, err := json.Marshal(participants)
	if err != nil {
		return fmt.Errorf("encode roster for %s: %w", activity, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO activity_rosters (activity_name, participants, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (activity_name)
		DO UPDATE SET participants = EXCLUDED.participants, updated_at = EXCLUDED.updated_at`,
		activity,
		data,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("upsert roster: %w", err)
	}
	return nil
}
