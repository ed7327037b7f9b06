package telemetry

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"gtrack/internal/model"
)

// Timestamp layouts tried in order. ActivityWatch usually emits fractional
// seconds but sometimes drops them entirely.
const (
	tsLayoutFrac   = time.RFC3339Nano
	tsLayoutNoFrac = time.RFC3339
)

// TimestampError reports an event timestamp that matched neither layout.
// It aborts the containing document, not just the event.
type TimestampError struct {
	Value string
	Err   error
}

func (e *TimestampError) Error() string {
	return fmt.Sprintf("unparseable event timestamp %q: %v", e.Value, e.Err)
}

func (e *TimestampError) Unwrap() error { return e.Err }

// Normalize maps the raw events of one document into canonical
// (game, timestamp, duration) tuples. Buckets are processed in name order
// and events in document order within each bucket, so the same document
// always yields the same event sequence; the consolidator's tie handling
// for equal timestamps depends on that.
//
// Events are dropped silently when the application identifier resolves to
// nothing in the catalog (trimmed, lower-cased match) or when the duration
// is not positive. Structural defects (a missing duration or application
// field) abort the whole document. The catalog is consulted, never mutated.
func Normalize(doc Document, catalog map[string]int64) ([]model.RawEvent, error) {
	var events []model.RawEvent

	names := make([]string, 0, len(doc.Buckets))
	for name := range doc.Buckets {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		bucket := doc.Buckets[name]
		for i, ev := range bucket.Events {
			if ev.Data == nil || ev.Data.App == nil {
				return nil, fmt.Errorf("bucket %s event %d: missing application field", name, i)
			}
			if ev.Duration == nil {
				return nil, fmt.Errorf("bucket %s event %d: missing duration field", name, i)
			}

			gameID, ok := resolveApp(*ev.Data.App, catalog)
			if !ok {
				continue // not a known game
			}
			if *ev.Duration <= 0 {
				continue
			}

			ts, err := parseEventTime(ev.Timestamp)
			if err != nil {
				return nil, err
			}

			events = append(events, model.RawEvent{
				GameID:    gameID,
				Timestamp: ts,
				Duration:  *ev.Duration,
			})
		}
	}

	return events, nil
}

// resolveApp matches an application identifier against the catalog.
func resolveApp(app string, catalog map[string]int64) (int64, bool) {
	app = strings.ToLower(strings.TrimSpace(app))
	if app == "" {
		return 0, false
	}
	id, ok := catalog[app]
	return id, ok
}

// parseEventTime parses an ISO-8601 timestamp, trying the fractional-seconds
// layout first and falling back to the plain one.
func parseEventTime(s string) (time.Time, error) {
	ts, err := time.Parse(tsLayoutFrac, s)
	if err == nil {
		return ts, nil
	}
	ts, err2 := time.Parse(tsLayoutNoFrac, s)
	if err2 == nil {
		return ts, nil
	}
	return time.Time{}, &TimestampError{Value: s, Err: err}
}
