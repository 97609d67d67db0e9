package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/pstuifzand/subtasks/internal/model"
)

// OutlineKey is the blob key of the committed outline
const OutlineKey = "outline"

// OutlineStore handles persistence of the committed outline as JSON
type OutlineStore struct {
	blobs   BlobStore
	backups *BackupManager
	logger  *slog.Logger
}

// NewOutlineStore creates an outline store on top of blobs. backups may be
// nil to disable snapshots.
func NewOutlineStore(blobs BlobStore, backups *BackupManager, logger *slog.Logger) *OutlineStore {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &OutlineStore{blobs: blobs, backups: backups, logger: logger.With("component", "outline")}
}

// Load reads the committed outline. A store that was never written yields
// an empty outline.
func (s *OutlineStore) Load() (*model.Outline, error) {
	data, err := s.blobs.Get(OutlineKey)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return model.NewOutline(), nil
		}
		return nil, fmt.Errorf("failed to read outline: %w", err)
	}

	var outline model.Outline
	if err := json.Unmarshal(data, &outline); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	if outline.Sections == nil {
		outline.Sections = make([]model.Section, 0)
	}
	return &outline, nil
}

// Save writes the outline, then records a backup snapshot. A failed backup
// does not fail the save.
func (s *OutlineStore) Save(outline *model.Outline) error {
	data, err := json.MarshalIndent(outline, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	if err := s.blobs.Set(OutlineKey, data); err != nil {
		return fmt.Errorf("failed to write outline: %w", err)
	}

	if s.backups != nil {
		if err := s.backups.CreateBackup(data); err != nil {
			s.logger.Warn("backup failed", "dir", s.backups.Dir(), "error", err)
		}
	}
	return nil
}
