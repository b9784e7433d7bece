// Package filestore persists the latest aggregate result as a single
// overwritten JSON file, the slot the dashboard reads.
package filestore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/rainalert/radar-monitor/internal/domain"
)

const latestFilename = "latest_analysis.json"

// Store implements orchestrator.ResultStore on the local filesystem.
type Store struct {
	path   string
	logger *slog.Logger
}

// New creates a Store writing under dataDir/output, creating the directory
// if needed.
func New(dataDir string, logger *slog.Logger) (*Store, error) {
	outDir := filepath.Join(dataDir, "output")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &Store{
		path:   filepath.Join(outDir, latestFilename),
		logger: logger,
	}, nil
}

// Persist overwrites the latest-result slot. The write is atomic (temp file
// plus rename) so a dashboard reading concurrently never sees a torn file.
// Non-ASCII text is written verbatim, not escaped to code points.
func (s *Store) Persist(_ context.Context, result domain.AggregateResult) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("encode aggregate result: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("rename %s: %w", tmp, err)
	}

	s.logger.Info("aggregate result persisted", "path", s.path, "sources", len(result.Sources))
	return nil
}

// Latest returns the raw bytes of the stored slot. The error satisfies
// os.IsNotExist before the first persist.
func (s *Store) Latest() ([]byte, error) {
	return os.ReadFile(s.path)
}
