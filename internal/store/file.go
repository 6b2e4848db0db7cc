// File: internal/store/file.go
package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/openpolicylab/debatesim/api/schemas"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// FileStore writes one pretty-printed JSON file per audit record into a log
// directory, named after the experiment identifier.
type FileStore struct {
	dir string
	log *zap.Logger
}

// NewFileStore creates the store and its directory.
func NewFileStore(dir string, logger *zap.Logger) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("audit log directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create audit log directory: %w", err)
	}
	return &FileStore{
		dir: dir,
		log: logger.Named("store.file"),
	}, nil
}

// Save writes the record as <experiment_id>.json, overwriting any previous
// record with the same identifier.
func (s *FileStore) Save(_ context.Context, record schemas.AuditRecord) error {
	if record.ExperimentID == "" {
		return fmt.Errorf("audit record requires an experiment id")
	}

	payload, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal audit record: %w", err)
	}

	path := filepath.Join(s.dir, record.ExperimentID+".json")
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return fmt.Errorf("failed to write audit record: %w", err)
	}

	s.log.Debug("Audit record persisted",
		zap.String("experiment_id", record.ExperimentID), zap.String("path", path))
	return nil
}
