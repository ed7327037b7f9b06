// Package telemetry decodes ActivityWatch bucket exports and turns their
// window-focus events into merged session candidates.
package telemetry

import (
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
)

// Document is one decoded bucket export: a set of named buckets, one per
// watching agent, each holding an ordered event list.
type Document struct {
	Buckets map[string]Bucket `json:"buckets"`
}

// Bucket is a named grouping of raw telemetry events.
type Bucket struct {
	Events []BucketEvent `json:"events"`
}

// BucketEvent is one undecoded window-focus record. Pointer fields
// distinguish an absent key from a zero value: a missing duration or
// application field is a structural defect that aborts the document.
type BucketEvent struct {
	Timestamp string     `json:"timestamp"`
	Duration  *float64   `json:"duration"`
	Data      *EventData `json:"data"`
}

// EventData carries the application identifier of the focused window.
type EventData struct {
	App *string `json:"app"`
}

// DecodeDocument reads and decodes a bucket export from r.
func DecodeDocument(r io.Reader) (Document, error) {
	var doc Document
	dec := json.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return Document{}, fmt.Errorf("decoding bucket document: %w", err)
	}
	return doc, nil
}

// DecodeDocumentFile reads and decodes the bucket export at path.
func DecodeDocumentFile(path string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return Document{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	return DecodeDocument(f)
}
