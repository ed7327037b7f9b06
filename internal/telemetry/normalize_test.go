package telemetry

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func strptr(s string) *string   { return &s }
func f64ptr(v float64) *float64 { return &v }

func docWith(events ...BucketEvent) Document {
	return Document{Buckets: map[string]Bucket{
		"aw-watcher-window-#1": {Events: events},
	}}
}

var testCatalog = map[string]int64{"game.exe": 1, "other.exe": 2}

func TestNormalize_ResolvesTrimmedLowercase(t *testing.T) {
	doc := docWith(BucketEvent{
		Timestamp: "2022-12-18T14:28:29.802000+00:00",
		Duration:  f64ptr(10.5),
		Data:      &EventData{App: strptr("  Game.EXE ")},
	})

	events, err := Normalize(doc, testCatalog)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("events = %d, want 1", len(events))
	}
	if events[0].GameID != 1 {
		t.Errorf("GameID = %d, want 1", events[0].GameID)
	}
	if events[0].Duration != 10.5 {
		t.Errorf("Duration = %v, want 10.5", events[0].Duration)
	}

	want := time.Date(2022, 12, 18, 14, 28, 29, 802000000, time.UTC)
	if !events[0].Timestamp.Equal(want) {
		t.Errorf("Timestamp = %v, want %v", events[0].Timestamp, want)
	}
}

func TestNormalize_SkipsUnknownApp(t *testing.T) {
	doc := docWith(BucketEvent{
		Timestamp: "2022-12-18T14:28:29+00:00",
		Duration:  f64ptr(10),
		Data:      &EventData{App: strptr("firefox")},
	})

	events, err := Normalize(doc, testCatalog)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("events = %d, want 0 for an unknown application", len(events))
	}
}

func TestNormalize_SkipsNonPositiveDuration(t *testing.T) {
	for _, d := range []float64{0, -3.5} {
		doc := docWith(BucketEvent{
			Timestamp: "2022-12-18T14:28:29+00:00",
			Duration:  f64ptr(d),
			Data:      &EventData{App: strptr("game.exe")},
		})

		events, err := Normalize(doc, testCatalog)
		if err != nil {
			t.Fatalf("duration %v: unexpected error: %v", d, err)
		}
		if len(events) != 0 {
			t.Errorf("duration %v: events = %d, want 0", d, len(events))
		}
	}
}

func TestNormalize_TimestampWithoutFraction(t *testing.T) {
	doc := docWith(BucketEvent{
		Timestamp: "2022-12-18T14:28:29+00:00",
		Duration:  f64ptr(10),
		Data:      &EventData{App: strptr("game.exe")},
	})

	events, err := Normalize(doc, testCatalog)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("events = %d, want 1", len(events))
	}
}

func TestNormalize_MissingFieldsAbortDocument(t *testing.T) {
	cases := []struct {
		name string
		ev   BucketEvent
	}{
		{"no data", BucketEvent{Timestamp: "2022-12-18T14:28:29+00:00", Duration: f64ptr(10)}},
		{"no app", BucketEvent{Timestamp: "2022-12-18T14:28:29+00:00", Duration: f64ptr(10), Data: &EventData{}}},
		{"no duration", BucketEvent{Timestamp: "2022-12-18T14:28:29+00:00", Data: &EventData{App: strptr("game.exe")}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Normalize(docWith(tc.ev), testCatalog)
			if err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestNormalize_BadTimestampAbortsDocument(t *testing.T) {
	doc := docWith(
		BucketEvent{
			Timestamp: "2022-12-18T14:28:29+00:00",
			Duration:  f64ptr(10),
			Data:      &EventData{App: strptr("game.exe")},
		},
		BucketEvent{
			Timestamp: "not-a-timestamp",
			Duration:  f64ptr(10),
			Data:      &EventData{App: strptr("game.exe")},
		},
	)

	_, err := Normalize(doc, testCatalog)
	var tsErr *TimestampError
	if !errors.As(err, &tsErr) {
		t.Fatalf("error = %v, want a TimestampError", err)
	}
	if tsErr.Value != "not-a-timestamp" {
		t.Errorf("Value = %q, want the offending string", tsErr.Value)
	}
}

// Buckets must be processed in name order: with equal-timestamp events in
// different buckets, the consolidator's gap handling depends on which
// duration it sees last, so a run-to-run order change would repartition
// the sessions and defeat duplicate detection on re-ingest.
func TestNormalize_BucketOrderDeterministic(t *testing.T) {
	doc := Document{Buckets: map[string]Bucket{
		"aw-watcher-window-#2": {Events: []BucketEvent{{
			Timestamp: "2024-03-10T00:00:00+00:00",
			Duration:  f64ptr(10),
			Data:      &EventData{App: strptr("game.exe")},
		}}},
		"aw-watcher-window-#1": {Events: []BucketEvent{
			{
				Timestamp: "2024-03-10T00:00:00+00:00",
				Duration:  f64ptr(100),
				Data:      &EventData{App: strptr("game.exe")},
			},
			{
				Timestamp: "2024-03-10T00:08:20+00:00",
				Duration:  f64ptr(60),
				Data:      &EventData{App: strptr("game.exe")},
			},
		}},
	}}

	first, err := Normalize(doc, testCatalog)
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != 3 {
		t.Fatalf("events = %d, want 3", len(first))
	}
	// Bucket #1 sorts before #2, so its 100s event comes first.
	if first[0].Duration != 100 || first[1].Duration != 60 || first[2].Duration != 10 {
		t.Fatalf("event order = %v, %v, %v, want 100, 60, 10",
			first[0].Duration, first[1].Duration, first[2].Duration)
	}

	wantSessions := Consolidate(first, 400*time.Second)

	for run := 0; run < 200; run++ {
		events, err := Normalize(doc, testCatalog)
		if err != nil {
			t.Fatal(err)
		}
		for i := range first {
			if events[i] != first[i] {
				t.Fatalf("run %d: event %d = %+v, want %+v", run, i, events[i], first[i])
			}
		}

		sessions := Consolidate(events, 400*time.Second)
		if len(sessions) != len(wantSessions) {
			t.Fatalf("run %d: sessions = %d, want %d", run, len(sessions), len(wantSessions))
		}
		for i := range wantSessions {
			if sessions[i] != wantSessions[i] {
				t.Fatalf("run %d: session %d = %+v, want %+v", run, i, sessions[i], wantSessions[i])
			}
		}
	}
}

func TestDecodeDocument_RejectsGarbage(t *testing.T) {
	_, err := DecodeDocument(strings.NewReader("{"))
	if err == nil {
		t.Fatal("expected a decode error")
	}
}
