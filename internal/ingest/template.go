package ingest

import (
	"encoding/csv"
	"io"

	"github.com/goccy/go-json"

	"gtrack/internal/telemetry"
)

// WriteGameTemplate writes an example catalog CSV with a header row and
// two sample games.
func WriteGameTemplate(w io.Writer) error {
	cw := csv.NewWriter(w)
	records := [][]string{
		csvFieldNames,
		{"Lethal Company", "Lethal Company.exe"},
		{"Rocket League", "RocketLeague.exe"},
	}
	for _, rec := range records {
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteBucketTemplate writes an example bucket document shaped like an
// ActivityWatch window-watcher export.
func WriteBucketTemplate(w io.Writer) error {
	duration := 10.009
	app := "RocketLeague.exe"

	event := telemetry.BucketEvent{
		Timestamp: "2022-12-18T14:28:29.802000+00:00",
		Duration:  &duration,
		Data:      &telemetry.EventData{App: &app},
	}

	doc := telemetry.Document{
		Buckets: map[string]telemetry.Bucket{
			"aw-watcher-window-#1": {Events: []telemetry.BucketEvent{event, event}},
		},
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	return enc.Encode(doc)
}
