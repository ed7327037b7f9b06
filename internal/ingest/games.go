package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"gtrack/internal/store"
)

// csvFieldNames are the mandatory leading columns of a catalog file.
// Any further columns are positional flag values in ascending flag-id order.
var csvFieldNames = []string{"display_name", "executable_name"}

// CSVSummary reports the outcome of one catalog import.
type CSVSummary struct {
	File      string
	Upserted  int
	Discarded int
	Warnings  []string
}

// ImportGames imports the catalog CSV file or directory at path. Rows
// missing a display or executable name are discarded with a warning; the
// rest of the file is still committed.
func ImportGames(st *store.Store, path string, hasHeader bool) ([]CSVSummary, error) {
	files, err := sourceFiles(path, ".csv")
	if err != nil {
		return nil, err
	}

	summaries := make([]CSVSummary, 0, len(files))
	for _, f := range files {
		summary, err := importGamesFile(st, f, hasHeader)
		if err != nil {
			return summaries, err
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

func importGamesFile(st *store.Store, path string, hasHeader bool) (CSVSummary, error) {
	summary := CSVSummary{File: path}

	f, err := os.Open(path)
	if err != nil {
		return summary, fmt.Errorf("opening %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	flags, err := st.Flags()
	if err != nil {
		return summary, err
	}

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // flag columns are optional

	line := 0
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return summary, fmt.Errorf("%s: reading csv: %w", path, err)
		}
		line++
		if hasHeader && line == 1 {
			continue
		}

		name, exe := "", ""
		if len(record) > 0 {
			name = strings.TrimSpace(record[0])
		}
		if len(record) > 1 {
			exe = strings.TrimSpace(record[1])
		}
		if name == "" || exe == "" {
			summary.Warnings = append(summary.Warnings,
				fmt.Sprintf("line %d contains unexpected values and was discarded", line))
			summary.Discarded++
			continue
		}

		gameID, _, err := st.UpsertGame(name, exe)
		if err != nil {
			return summary, fmt.Errorf("%s line %d: %w", path, line, err)
		}

		values := make(map[int64]bool, len(flags))
		short := false
		for i, flag := range flags {
			col := len(csvFieldNames) + i
			if col >= len(record) {
				short = true
				values[flag.ID] = false
				continue
			}
			values[flag.ID] = parseFlagCell(record[col])
		}
		if short {
			summary.Warnings = append(summary.Warnings,
				fmt.Sprintf("line %d does not cover all defined flags; missing ones default to false", line))
		}
		if len(values) > 0 {
			if err := st.SetFlagValues(gameID, values); err != nil {
				return summary, fmt.Errorf("%s line %d: %w", path, line, err)
			}
		}

		summary.Upserted++
	}

	return summary, nil
}

// parseFlagCell interprets a positional flag column: Y or 1 (any case)
// means true, everything else false.
func parseFlagCell(cell string) bool {
	switch strings.ToUpper(strings.TrimSpace(cell)) {
	case "Y", "1":
		return true
	}
	return false
}
