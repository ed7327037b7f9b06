// Package ingest drives the import pipelines: catalog CSV files into the
// game table and telemetry bucket documents through normalization,
// consolidation and idempotent persistence.
package ingest

import (
	"errors"
	"fmt"
	"time"

	"gtrack/internal/config"
	"gtrack/internal/store"
	"gtrack/internal/telemetry"
)

// ErrEmptyCatalog aborts telemetry ingestion when no games exist: every
// event would be irrelevant, so processing buckets is pointless.
var ErrEmptyCatalog = errors.New("no games in catalog; buckets will not be processed")

// BucketSummary reports the outcome of ingesting one bucket document.
// Duplicate and below-threshold counts are weighted by the number of raw
// events the discarded candidate had absorbed.
type BucketSummary struct {
	File            string
	Events          int // normalized events considered
	Inserted        int // new activity rows
	DuplicateEvents int
	LowValueEvents  int
}

// BucketResult pairs a per-file summary with its error, if any. A file
// error is fail-soft: the batch continues with the next file.
type BucketResult struct {
	Summary BucketSummary
	Err     error
}

// IngestBuckets processes the bucket file or directory at path. Directory
// entries are handled strictly in listing order, each in its own
// transaction, so one file's failure never rolls back a previous file's
// sessions. The returned error covers batch-level failures only (bad path,
// empty catalog); per-file failures land in the results.
func IngestBuckets(st *store.Store, cfg config.IngestConfig, path string) ([]BucketResult, error) {
	catalog, err := st.Catalog()
	if err != nil {
		return nil, err
	}
	if len(catalog) == 0 {
		return nil, ErrEmptyCatalog
	}

	files, err := sourceFiles(path, ".json")
	if err != nil {
		return nil, err
	}

	results := make([]BucketResult, 0, len(files))
	for _, f := range files {
		summary, err := ingestBucketFile(st, cfg, catalog, f)
		results = append(results, BucketResult{Summary: summary, Err: err})
	}
	return results, nil
}

// ingestBucketFile runs one document through the full pipeline inside a
// single transaction.
func ingestBucketFile(st *store.Store, cfg config.IngestConfig, catalog map[string]int64, path string) (BucketSummary, error) {
	summary := BucketSummary{File: path}

	doc, err := telemetry.DecodeDocumentFile(path)
	if err != nil {
		return summary, err
	}

	events, err := telemetry.Normalize(doc, catalog)
	if err != nil {
		return summary, fmt.Errorf("%s: %w", path, err)
	}
	summary.Events = len(events)

	mergeGap := time.Duration(cfg.MergeGapSecs * float64(time.Second))
	candidates := telemetry.Consolidate(events, mergeGap)

	tx, err := st.Begin()
	if err != nil {
		return summary, err
	}
	defer func() { _ = tx.Rollback() }()

	for _, c := range candidates {
		class, err := st.SaveCandidate(tx, c, cfg.MinSessionSecs)
		if err != nil {
			return summary, fmt.Errorf("%s: saving session: %w", path, err)
		}
		switch class {
		case store.ClassInserted:
			summary.Inserted++
		case store.ClassDuplicate:
			summary.DuplicateEvents += c.Events
		case store.ClassBelowThreshold:
			summary.LowValueEvents += c.Events
		}
	}

	if err := tx.Commit(); err != nil {
		return summary, fmt.Errorf("%s: committing: %w", path, err)
	}
	return summary, nil
}
