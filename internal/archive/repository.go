package archive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/outlierline/internal/contracts"
)

// ErrNotFound is returned when a game has not been archived
var ErrNotFound = errors.New("game not archived")

// Entry is one archived game
type Entry struct {
	GameID     string         `json:"game_id"`
	Teams      []string       `json:"teams"`
	FinalScore map[string]int `json:"final_score,omitempty"`
	ArchivedAt time.Time      `json:"archived_at"`
}

// Repository stores the payloads of finished games
// ⭐ SSOT: 종료된 경기 payload 저장/조회는 여기서만
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new archive repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const schema = `
	CREATE SCHEMA IF NOT EXISTS archive;
	CREATE TABLE IF NOT EXISTS archive.game_payloads (
		game_id     TEXT PRIMARY KEY,
		teams       TEXT[] NOT NULL,
		final_score JSONB,
		payload     JSONB NOT NULL,
		archived_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS game_payloads_archived_at_idx
		ON archive.game_payloads (archived_at DESC);
`

// EnsureSchema creates the archive table if it does not exist
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create archive schema: %w", err)
	}
	return nil
}

// Save stores a payload, replacing any previous copy
func (r *Repository) Save(ctx context.Context, payload *contracts.GamePayload) error {
	if payload == nil || payload.GameID == "" {
		return fmt.Errorf("payload without game id")
	}

	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	var scoreJSON []byte
	if len(payload.FinalScore) > 0 {
		if scoreJSON, err = json.Marshal(payload.FinalScore); err != nil {
			return fmt.Errorf("failed to marshal final score: %w", err)
		}
	}

	query := `
		INSERT INTO archive.game_payloads (game_id, teams, final_score, payload)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (game_id) DO UPDATE SET
			teams = EXCLUDED.teams,
			final_score = EXCLUDED.final_score,
			payload = EXCLUDED.payload,
			archived_at = NOW()
	`

	_, err = r.pool.Exec(ctx, query, payload.GameID, payload.Teams, scoreJSON, payloadJSON)
	if err != nil {
		return fmt.Errorf("failed to save payload %s: %w", payload.GameID, err)
	}

	return nil
}

// IsArchived reports whether the game is already stored
func (r *Repository) IsArchived(ctx context.Context, gameID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM archive.game_payloads WHERE game_id = $1)`,
		gameID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check archive for %s: %w", gameID, err)
	}
	return exists, nil
}

// Get returns the stored payload
func (r *Repository) Get(ctx context.Context, gameID string) (*contracts.GamePayload, error) {
	var payloadJSON []byte
	err := r.pool.QueryRow(ctx,
		`SELECT payload FROM archive.game_payloads WHERE game_id = $1`,
		gameID,
	).Scan(&payloadJSON)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payload %s: %w", gameID, err)
	}

	var payload contracts.GamePayload
	if err := json.Unmarshal(payloadJSON, &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal payload %s: %w", gameID, err)
	}

	return &payload, nil
}

// Delete removes a game so the watcher archives it again
func (r *Repository) Delete(ctx context.Context, gameID string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM archive.game_payloads WHERE game_id = $1`, gameID); err != nil {
		return fmt.Errorf("failed to delete payload %s: %w", gameID, err)
	}
	return nil
}

// Recent lists the most recently archived games
func (r *Repository) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT game_id, teams, final_score, archived_at
		FROM archive.game_payloads
		ORDER BY archived_at DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list archive: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var scoreJSON []byte
		if err := rows.Scan(&e.GameID, &e.Teams, &scoreJSON, &e.ArchivedAt); err != nil {
			return nil, fmt.Errorf("failed to scan archive row: %w", err)
		}
		if len(scoreJSON) > 0 {
			if err := json.Unmarshal(scoreJSON, &e.FinalScore); err != nil {
				return nil, fmt.Errorf("failed to unmarshal final score: %w", err)
			}
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}
