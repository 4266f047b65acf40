package transcript

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// RecognizedExt is the file extension of transcript exports.
const RecognizedExt = ".json"

// LoadDir reads every transcript found one level below root. Each immediate
// subdirectory holds the exports of one grouping (typically a day of the
// period). Files that cannot be read or decoded are logged and skipped; only
// a failure to list root itself is returned.
func LoadDir(root string, logger *slog.Logger) ([]Record, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read source dir: %w", err)
	}

	var records []Record
	failed := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		sub := filepath.Join(root, entry.Name())
		files, err := os.ReadDir(sub)
		if err != nil {
			logger.Warn("failed to list transcript folder", "dir", sub, "error", err)
			continue
		}

		for _, f := range files {
			if f.IsDir() || !strings.HasSuffix(f.Name(), RecognizedExt) {
				continue
			}
			path := filepath.Join(sub, f.Name())
			rec, err := LoadFile(path)
			if err != nil {
				logger.Warn("failed to load transcript", "path", path, "error", err)
				failed++
				continue
			}
			if rec.Empty() {
				continue
			}
			records = append(records, rec)
		}
	}

	logger.Info("transcripts loaded", "dir", root, "records", len(records), "failed", failed)
	return records, nil
}

// LoadFile parses a single transcript export.
func LoadFile(path string) (Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Record{}, fmt.Errorf("read: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("decode: %w", err)
	}
	rec.Path = path
	return rec, nil
}
