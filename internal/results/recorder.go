package results

import (
	"database/sql"
	"log"

	"github.com/jmoiron/sqlx"

	"github.com/playvolley/backend/internal/game"
)

// Recorder persists finished matches. It is a pure sink: failures are
// logged, never surfaced to the session, and the match outcome on the wire
// is unaffected.
type Recorder struct {
	db *sqlx.DB
}

// NewRecorder wires the recorder. db may be nil, in which case results are
// only logged (dev mode without Postgres).
func NewRecorder(db *sqlx.DB) *Recorder {
	return &Recorder{db: db}
}

// Record inserts one match_results row. Safe to call from any goroutine.
func (r *Recorder) Record(o game.Outcome) {
	if r.db == nil {
		log.Printf("[DB] no database configured, match %s result not persisted", o.MatchToken)
		return
	}

	winner := sql.NullString{String: o.WinnerID, Valid: o.WinnerID != ""}

	_, err := r.db.Exec(`
		INSERT INTO match_results
			(match_token, mode, winner_ref, winner_side, end_reason,
			 score_left, score_right, match_time_seconds, seed, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
	`, o.MatchToken, string(o.Mode), winner, string(o.WinnerSide), string(o.Reason),
		o.ScoreLeft, o.ScoreRight, o.MatchTimeSeconds, o.Seed)
	if err != nil {
		log.Printf("[DB] failed to record result for match %s: %v", o.MatchToken, err)
		return
	}

	log.Printf("[DB] recorded result for match %s (%s %d-%d, %s)",
		o.MatchToken, o.WinnerSide, o.ScoreLeft, o.ScoreRight, o.Reason)
}
