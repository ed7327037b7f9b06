package store

import (
	"database/sql"
	"math"
	"time"

	"gtrack/internal/model"
)

// Class is the persistence verdict for one session candidate.
type Class int

const (
	// ClassInserted means a new activity row was written.
	ClassInserted Class = iota
	// ClassDuplicate means an activity with the same (game, start) exists.
	ClassDuplicate
	// ClassBelowThreshold means the candidate's total playtime did not
	// exceed the minimum session duration.
	ClassBelowThreshold
)

// startTimeFormat keys activity rows. Re-deriving the same source events
// yields the same instant, so formatting must be deterministic: UTC,
// fraction trimmed by RFC3339Nano the same way every run.
const startTimeFormat = time.RFC3339Nano

// SaveCandidate classifies and, when new and long enough, persists one
// session candidate inside the given transaction. Playtime is rounded to
// millisecond precision first. A candidate whose total exactly equals the
// threshold is discarded.
func (s *Store) SaveCandidate(tx *sql.Tx, c model.Candidate, minSessionSecs float64) (Class, error) {
	playtime := math.Round(c.Playtime*1000) / 1000

	if playtime <= minSessionSecs {
		return ClassBelowThreshold, nil
	}

	start := c.Start.UTC().Format(startTimeFormat)

	var n int
	err := tx.QueryRow("SELECT COUNT(*) FROM activity WHERE game_id = ? AND start_time = ?",
		c.GameID, start).Scan(&n)
	if err != nil {
		return ClassDuplicate, err
	}
	if n > 0 {
		return ClassDuplicate, nil
	}

	_, err = tx.Exec("INSERT INTO activity (game_id, start_time, playtime) VALUES (?, ?, ?)",
		c.GameID, start, playtime)
	if err != nil {
		return ClassInserted, err
	}
	return ClassInserted, nil
}

// Activities returns all stored sessions ordered by game then start time.
// Mostly a test and debugging helper; reports go through the query builder.
func (s *Store) Activities() ([]model.Activity, error) {
	rows, err := s.db.Query("SELECT game_id, start_time, playtime FROM activity ORDER BY game_id ASC, start_time ASC")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []model.Activity
	for rows.Next() {
		var a model.Activity
		var start string
		if err := rows.Scan(&a.GameID, &start, &a.Playtime); err != nil {
			return nil, err
		}
		a.Start, _ = time.Parse(startTimeFormat, start)
		out = append(out, a)
	}
	return out, rows.Err()
}

// ActivityCount returns the number of stored sessions.
func (s *Store) ActivityCount() (int, error) {
	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM activity").Scan(&n)
	return n, err
}
