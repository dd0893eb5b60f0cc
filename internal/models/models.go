package models

import (
	"database/sql"
	"time"
)

// MatchResult is the persistent record of a finished match. Rating and
// history computation happen downstream; this row is the only thing the
// match server writes.
type MatchResult struct {
	ID               int            `db:"id" json:"id"`
	MatchToken       string         `db:"match_token" json:"match_token"`
	Mode             string         `db:"mode" json:"mode"`
	WinnerRef        sql.NullString `db:"winner_ref" json:"winner_ref,omitempty"`
	WinnerSide       string         `db:"winner_side" json:"winner_side"`
	EndReason        string         `db:"end_reason" json:"end_reason"`
	ScoreLeft        int            `db:"score_left" json:"score_left"`
	ScoreRight       int            `db:"score_right" json:"score_right"`
	MatchTimeSeconds int            `db:"match_time_seconds" json:"match_time_seconds"`
	Seed             int64          `db:"seed" json:"seed"`
	CreatedAt        time.Time      `db:"created_at" json:"created_at"`
}
