package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"gtrack/internal/ingest"
	"gtrack/internal/store"
)

var (
	insertType     string
	insertFile     string
	insertManual   bool
	insertNoHeader bool
	insertTemplate bool
)

var insertCmd = &cobra.Command{
	Use:   "insert -t TYPE (-f FILE [--create-template | --no-header] | -m)",
	Short: "Add games or activities from CSV/JSON files or manual entry",
	RunE:  runInsert,
}

func init() {
	insertCmd.Flags().StringVarP(&insertType, "type", "t", "", "Data type to insert: game | bucket")
	insertCmd.Flags().StringVarP(&insertFile, "file", "f", "", "File to read from, or directory of source files")
	insertCmd.Flags().BoolVarP(&insertManual, "manual", "m", false, "Enter a game interactively")
	insertCmd.Flags().BoolVar(&insertNoHeader, "no-header", false, "The CSV file has no header row")
	insertCmd.Flags().BoolVar(&insertTemplate, "create-template", false, "Write a template file of the selected type")
	_ = insertCmd.MarkFlagRequired("type")
	insertCmd.MarkFlagsMutuallyExclusive("file", "manual")
	insertCmd.MarkFlagsMutuallyExclusive("manual", "no-header")
	insertCmd.MarkFlagsMutuallyExclusive("manual", "create-template")
	insertCmd.MarkFlagsMutuallyExclusive("no-header", "create-template")
	insertCmd.MarkFlagsOneRequired("file", "manual")
	rootCmd.AddCommand(insertCmd)
}

func runInsert(_ *cobra.Command, _ []string) error {
	if insertType != "game" && insertType != "bucket" {
		return fmt.Errorf("unknown type %q: expected game or bucket", insertType)
	}
	if insertManual && insertType != "game" {
		return errors.New("manual entry is available only for games")
	}

	if insertTemplate {
		return createTemplate(insertFile, insertType)
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	if insertManual {
		return insertGameManually(st)
	}

	switch insertType {
	case "game":
		return insertGames(st, insertFile, !insertNoHeader)
	default:
		return insertBuckets(st, insertFile)
	}
}

func insertGames(st *store.Store, path string, hasHeader bool) error {
	summaries, err := ingest.ImportGames(st, path, hasHeader)
	if err != nil {
		return err
	}

	for _, s := range summaries {
		infof("Reading: %s", s.File)
		for _, w := range s.Warnings {
			warnf("%s", w)
		}
		if s.Discarded > 0 {
			warnf("%d lines have been discarded for unexpected values; please check the input file", s.Discarded)
		}
	}
	infof("Insertion complete!")
	return nil
}

func insertBuckets(st *store.Store, path string) error {
	results, err := ingest.IngestBuckets(st, cfg.Ingest, path)
	if err != nil {
		return err
	}

	for _, r := range results {
		infof("Reading: %s", r.Summary.File)
		if r.Err != nil {
			// Fail-soft: the batch already moved on to the next file.
			fmt.Fprintf(os.Stderr, "ERROR: %v\n", r.Err)
			continue
		}
		reportBucketSummary(r.Summary)
	}
	infof("Insertion complete!")
	return nil
}

func reportBucketSummary(s ingest.BucketSummary) {
	if s.LowValueEvents > 0 {
		warnf("%d out of %d events have been discarded for being low time activities",
			s.LowValueEvents, s.Events)
	}
	if s.DuplicateEvents > 0 {
		warnf("%d out of %d events have been discarded for being duplicates",
			s.DuplicateEvents, s.Events)
	}
}

// insertGameManually prompts for one game and its flag values.
func insertGameManually(st *store.Store) error {
	flags, err := st.Flags()
	if err != nil {
		return err
	}

	var displayName, executable string
	fields := []huh.Field{
		huh.NewInput().
			Title("Name to be displayed").
			Validate(notBlank).
			Value(&displayName),
		huh.NewInput().
			Title("Name of the executable").
			Validate(notBlank).
			Value(&executable),
	}

	flagValues := make([]bool, len(flags))
	for i, f := range flags {
		fields = append(fields, huh.NewConfirm().
			Title(fmt.Sprintf("Value for the %q flag", f.Name)).
			Value(&flagValues[i]))
	}

	if err := huh.NewForm(huh.NewGroup(fields...)).Run(); err != nil {
		return err
	}

	catalog, err := st.Catalog()
	if err != nil {
		return err
	}
	if _, exists := catalog[strings.ToLower(strings.TrimSpace(executable))]; exists {
		update := false
		prompt := huh.NewConfirm().
			Title("Game already exists. Update the entry?").
			Value(&update)
		if err := huh.NewForm(huh.NewGroup(prompt)).Run(); err != nil {
			return err
		}
		if !update {
			infof("Nothing changed.")
			return nil
		}
	}

	gameID, _, err := st.UpsertGame(displayName, executable)
	if err != nil {
		return err
	}

	values := make(map[int64]bool, len(flags))
	for i, f := range flags {
		values[f.ID] = flagValues[i]
	}
	if len(values) > 0 {
		if err := st.SetFlagValues(gameID, values); err != nil {
			return err
		}
	}

	infof("Stored %s.", displayName)
	return nil
}

func notBlank(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("value is mandatory")
	}
	return nil
}

// createTemplate writes an example file of the selected type, asking
// before overwriting an existing one.
func createTemplate(path, kind string) error {
	wantExt := ".csv"
	if kind == "bucket" {
		wantExt = ".json"
	}
	if !strings.EqualFold(filepath.Ext(path), wantExt) {
		return fmt.Errorf("template for type %s must be a %s file", kind, wantExt)
	}

	if _, err := os.Stat(path); err == nil {
		overwrite := false
		prompt := huh.NewConfirm().
			Title(fmt.Sprintf("%s already exists. Overwrite it?", path)).
			Value(&overwrite)
		if err := huh.NewForm(huh.NewGroup(prompt)).Run(); err != nil {
			return err
		}
		if !overwrite {
			return nil
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating template file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if kind == "game" {
		err = ingest.WriteGameTemplate(f)
	} else {
		err = ingest.WriteBucketTemplate(f)
	}
	if err != nil {
		return fmt.Errorf("writing template: %w", err)
	}

	infof("Template written to %s", path)
	return nil
}
