// Package query assembles playtime report queries from composable
// fragments: date scope, game identity, compiled tag predicate, output
// shape, granularity, cross-game aggregation and sort order.
package query

import (
	"time"

	"gtrack/internal/filter"
)

// Granularity selects the time bucketing of a report.
type Granularity int

const (
	// GranNone reports one row per game over the whole scope.
	GranNone Granularity = iota
	// GranDaily reports one row per game per calendar day.
	GranDaily
	// GranMonthly reports one row per game per calendar month.
	GranMonthly
)

// Aggregate selects a cross-game reduction. Mutually exclusive with
// granularity and with each other.
type Aggregate int

const (
	// AggNone disables cross-game aggregation.
	AggNone Aggregate = iota
	// AggSum yields a single playtime total across all matching games.
	AggSum
	// AggMean yields that total divided by the elapsed days in scope.
	AggMean
)

// SortKey orders report rows.
type SortKey int

const (
	// SortPlaytimeDesc is the default ordering.
	SortPlaytimeDesc SortKey = iota
	// SortNameAsc orders by display name.
	SortNameAsc
	// SortFirstPlayedAsc orders by the oldest stored session.
	SortFirstPlayedAsc
	// SortLastPlayedDesc orders by the newest stored session.
	SortLastPlayedDesc
)

// Scope bounds the report in time. With Total set no date bound applies;
// otherwise From defaults to the start of the current year and To, when
// set, closes the interval inclusively. Bounds compare against the
// session's local calendar date.
type Scope struct {
	Total bool
	From  time.Time
	To    time.Time
}

// Identity restricts the report to specific games: either an explicit
// id set (OR-combined) or a case-insensitive substring of the display
// name. At most one is set; neither means all games.
type Identity struct {
	IDs           []int64
	NameSubstring string
}

// Request describes one report. The tag expression, when present, has
// already been parsed; compilation happens during assembly.
type Request struct {
	Scope       Scope
	Identity    Identity
	Tag         filter.Expr // nil when no tag restriction
	Verbose     bool
	Granularity Granularity
	Aggregate   Aggregate
	Sort        SortKey
}

// Row is one line of a report result.
type Row struct {
	GameID      int64
	DisplayName string
	Executable  string // populated in verbose shape
	Bucket      string // day or month label when granularity applies
	Playtime    float64
	FirstPlayed time.Time
	LastPlayed  time.Time
}

// effectiveFrom resolves the scope's lower bound.
func (s Scope) effectiveFrom(now time.Time) time.Time {
	if !s.From.IsZero() {
		return s.From
	}
	return time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
}

// ElapsedDays counts the inclusive days covered by the scope, via
// day-of-year arithmetic. The upper bound defaults to today.
func (s Scope) ElapsedDays(now time.Time) int {
	from := s.effectiveFrom(now)
	to := s.To
	if to.IsZero() {
		to = now
	}
	if to.Before(from) {
		return 0
	}

	if from.Year() == to.Year() {
		return to.YearDay() - from.YearDay() + 1
	}

	days := daysInYear(from.Year()) - from.YearDay() + 1
	for y := from.Year() + 1; y < to.Year(); y++ {
		days += daysInYear(y)
	}
	return days + to.YearDay()
}

func daysInYear(y int) int {
	return time.Date(y, time.December, 31, 0, 0, 0, 0, time.UTC).YearDay()
}
