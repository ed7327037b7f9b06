package telemetry

import (
	"sort"
	"time"

	"gtrack/internal/model"
)

// Consolidate collapses normalized raw events into session candidates.
//
// Events are stably sorted by (game, timestamp) and swept once. A candidate
// stays open while consecutive events belong to the same game and start no
// more than mergeGap after the previous event's end; the gap is measured
// between neighbouring raw events, not against the candidate's own start,
// so a run of closely-spaced events can stretch a session arbitrarily far.
// Crossing either boundary closes the candidate and seeds a fresh one.
func Consolidate(events []model.RawEvent, mergeGap time.Duration) []model.Candidate {
	if len(events) == 0 {
		return nil
	}

	sorted := make([]model.RawEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].GameID != sorted[j].GameID {
			return sorted[i].GameID < sorted[j].GameID
		}
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	var (
		out     []model.Candidate
		open    model.Candidate
		lastEnd time.Time
		hasOpen bool
	)

	for _, e := range sorted {
		switch {
		case !hasOpen:
			open = seed(e)
			hasOpen = true

		case e.GameID != open.GameID || e.Timestamp.Sub(lastEnd) > mergeGap:
			out = append(out, open)
			open = seed(e)

		default:
			open.Playtime += e.Duration
			open.Events++
		}

		// Tracks the end of the most recent individual event, not the
		// accumulated session span.
		lastEnd = e.End()
	}

	out = append(out, open)
	return out
}

// seed starts a fresh candidate from a single event. The returned value is
// a copy; merging mutates only the currently open candidate.
func seed(e model.RawEvent) model.Candidate {
	return model.Candidate{
		GameID:   e.GameID,
		Start:    e.Timestamp,
		Playtime: e.Duration,
		Events:   1,
	}
}
