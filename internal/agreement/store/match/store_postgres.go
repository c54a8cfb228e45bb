package match

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"nestly/internal/domain"
	id "nestly/pkg/domain"
	"nestly/pkg/platform/sentinel"
)

// PostgresReader reads match snapshots published by the marketplace. The
// marketplace writes each accepted match as a denormalized JSONB snapshot;
// this engine never mutates the row.
type PostgresReader struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresReader {
	return &PostgresReader{db: db}
}

func (r *PostgresReader) FindByID(ctx context.Context, matchID id.MatchID) (*domain.Match, error) {
	var snapshot []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT snapshot FROM matches WHERE id = $1`, matchID.String()).Scan(&snapshot)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("load match: %w", err)
	}

	var m domain.Match
	if err := json.Unmarshal(snapshot, &m); err != nil {
		return nil, fmt.Errorf("unmarshal match snapshot: %w", err)
	}
	m.ID = matchID
	return &m, nil
}
