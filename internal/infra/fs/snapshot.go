package fs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	logging "near-monitor/internal/infra/log"

	"go.uber.org/zap"
)

// LoadSnapshot reads a JSON snapshot file into v. A missing file is reported
// as os.ErrNotExist so callers can distinguish cold start from corruption;
// an empty file decodes to the zero value of v.
func LoadSnapshot(path string, v interface{}) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("snapshot file %s: %w", path, os.ErrNotExist)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read snapshot file: %w", err)
	}

	if len(data) == 0 || strings.TrimSpace(string(data)) == "" {
		logging.LogDebug("Snapshot file is empty, keeping zero state", zap.String("file", path))
		return nil
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse snapshot JSON: %w", err)
	}

	return nil
}

// SaveSnapshot atomically replaces the snapshot at path with the JSON
// encoding of v. The data is written to a sibling temp file first and then
// renamed over the target, so readers always observe either the previous
// complete snapshot or the new one. On rename failure the temp file is
// removed and the old snapshot stays intact.
func SaveSnapshot(path string, v interface{}) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot JSON: %w", err)
	}

	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temporary snapshot file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename temporary file to snapshot file: %w", err)
	}

	logging.LogDebug("Saved snapshot", zap.String("file", path), zap.Int("bytes", len(data)))

	return nil
}
