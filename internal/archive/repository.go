// Package archive stores finished games in Postgres for analysis outside the
// tournament state file. The archive is write-only during a run; losing it
// never affects resumption.
package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/knvmhra/promptchess/internal/domain"
	"github.com/knvmhra/promptchess/internal/pgnexport"
)

// Repository archives finished game records.
type Repository interface {
	SaveGame(ctx context.Context, seq int, rec domain.GameRecord) error
	Close() error
}

type postgresRepo struct {
	db *sql.DB
}

// NewPostgres connects to the archive database and ensures the games table
// exists.
func NewPostgres(databaseURL string) (Repository, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("database url is required")
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, createGamesTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure arena_games table: %w", err)
	}
	return &postgresRepo{db: db}, nil
}

const createGamesTable = `CREATE TABLE IF NOT EXISTS arena_games (
	game_id       TEXT PRIMARY KEY,
	seq           INT NOT NULL,
	white_id      TEXT NOT NULL,
	black_id      TEXT NOT NULL,
	white_rating  DOUBLE PRECISION NOT NULL,
	black_rating  DOUBLE PRECISION NOT NULL,
	result        TEXT NOT NULL,
	reason        TEXT NOT NULL,
	forfeit_by    TEXT,
	forfeit_cause TEXT,
	white_delta   DOUBLE PRECISION NOT NULL,
	black_delta   DOUBLE PRECISION NOT NULL,
	moves_san     TEXT NOT NULL,
	moves_uci     TEXT NOT NULL,
	pgn           TEXT NOT NULL,
	started_at    TIMESTAMPTZ NOT NULL,
	ended_at      TIMESTAMPTZ NOT NULL,
	duration_ms   BIGINT NOT NULL
)`

func (r *postgresRepo) SaveGame(ctx context.Context, seq int, rec domain.GameRecord) error {
	movesSAN, _ := json.Marshal(rec.MovesSAN)
	movesUCI, _ := json.Marshal(rec.MovesUCI)
	duration := rec.EndedAt.Sub(rec.StartedAt).Milliseconds()
	if duration < 0 {
		duration = 0
	}

	q := `INSERT INTO arena_games (
	    game_id, seq, white_id, black_id, white_rating, black_rating,
	    result, reason, forfeit_by, forfeit_cause, white_delta, black_delta,
	    moves_san, moves_uci, pgn, started_at, ended_at, duration_ms
	  ) VALUES (
	    $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18
	  ) ON CONFLICT (game_id) DO NOTHING`

	_, err := r.db.ExecContext(ctx, q,
		rec.ID, seq,
		rec.WhiteID, rec.BlackID, rec.WhiteRating, rec.BlackRating,
		string(rec.Result), string(rec.Reason), string(rec.ForfeitBy), string(rec.ForfeitCause),
		rec.WhiteDelta, rec.BlackDelta,
		string(movesSAN), string(movesUCI), pgnexport.Render(seq, rec),
		rec.StartedAt, rec.EndedAt, duration,
	)
	return err
}

func (r *postgresRepo) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}
