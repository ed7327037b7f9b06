// Package model defines the domain types shared across gtrack.
package model

import "time"

// Game is one catalog entry. Executable name is the natural key: it is
// matched trimmed and lower-cased against telemetry app identifiers and is
// treated as immutable once stored.
type Game struct {
	ID             int64
	DisplayName    string
	ExecutableName string
}

// Flag is a named boolean attribute assignable to every game.
type Flag struct {
	ID   int64
	Name string
}

// FlagValue is one game/flag association row.
type FlagValue struct {
	GameID int64
	FlagID int64
	Value  bool
}

// RawEvent is one normalized telemetry record. Raw events are ephemeral:
// they exist only between normalization and consolidation.
type RawEvent struct {
	GameID    int64
	Timestamp time.Time
	Duration  float64 // seconds
}

// End returns the instant the event stopped.
func (e RawEvent) End() time.Time {
	return e.Timestamp.Add(time.Duration(e.Duration * float64(time.Second)))
}

// Activity is a persisted play session: one or more temporally-contiguous
// raw events merged into a single block of playtime. Identity is
// (GameID, Start); at most one stored activity begins at a given instant
// for a given game.
type Activity struct {
	GameID   int64
	Start    time.Time
	Playtime float64 // seconds
}

// Candidate is a session candidate produced by the consolidator, not yet
// classified by the persistence layer. Events counts the raw events the
// candidate absorbed; it weights the duplicate/below-threshold counters.
type Candidate struct {
	GameID   int64
	Start    time.Time
	Playtime float64
	Events   int
}
