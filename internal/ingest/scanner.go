package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// sourceFiles resolves path into the ordered list of source files to
// process. A directory yields its matching entries in listing order; a
// single file must carry the expected extension.
func sourceFiles(path, ext string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}

	if !info.IsDir() {
		if !strings.EqualFold(filepath.Ext(path), ext) {
			return nil, fmt.Errorf("%s is not a %s file", path, ext)
		}
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", path, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ext) {
			files = append(files, filepath.Join(path, e.Name()))
		}
	}
	return files, nil
}
