package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

const backupTimeLayout = "20060102_150405"

// BackupManager keeps timestamped copies of committed outlines
type BackupManager struct {
	backupDir string
	sessionID string
	keep      int
	now       func() time.Time
}

// NewBackupManager creates a backup manager writing to dir. keep limits the
// number of snapshots retained; zero or less keeps everything.
func NewBackupManager(dir string, keep int) (*BackupManager, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}

	return &BackupManager{
		backupDir: dir,
		sessionID: uuid.NewString()[:8],
		keep:      keep,
		now:       time.Now,
	}, nil
}

// Dir returns the backup directory
func (bm *BackupManager) Dir() string {
	return bm.backupDir
}

// CreateBackup writes data as a new snapshot and prunes old ones
func (bm *BackupManager) CreateBackup(data []byte) error {
	backupPath := filepath.Join(bm.backupDir, bm.generateBackupFilename())
	if err := os.WriteFile(backupPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write backup file: %w", err)
	}
	return bm.Prune()
}

// generateBackupFilename creates a filename in the format: YYYYMMDD_HHMMSS_<sessionID>_<n>.json
func (bm *BackupManager) generateBackupFilename() string {
	timestamp := bm.now().Format(backupTimeLayout)
	// several commits can land in the same second
	for n := 0; ; n++ {
		name := fmt.Sprintf("%s_%s_%03d.json", timestamp, bm.sessionID, n)
		if _, err := os.Stat(filepath.Join(bm.backupDir, name)); os.IsNotExist(err) {
			return name
		}
	}
}

// BackupMetadata holds parsed information about a backup file
type BackupMetadata struct {
	FilePath  string    // Full path to backup file
	Timestamp time.Time // Parsed timestamp from filename
	SessionID string    // 8-character session ID
}

// ListBackups returns all snapshots, oldest first
func (bm *BackupManager) ListBackups() ([]BackupMetadata, error) {
	entries, err := os.ReadDir(bm.backupDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	var backups []BackupMetadata
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		metadata, err := parseBackupFilename(entry.Name(), filepath.Join(bm.backupDir, entry.Name()))
		if err != nil {
			continue // Skip files that can't be parsed
		}
		backups = append(backups, metadata)
	}

	slices.SortFunc(backups, func(a, b BackupMetadata) int {
		if c := a.Timestamp.Compare(b.Timestamp); c != 0 {
			return c
		}
		return strings.Compare(a.FilePath, b.FilePath)
	})
	return backups, nil
}

// Prune removes the oldest snapshots beyond the configured limit
func (bm *BackupManager) Prune() error {
	if bm.keep <= 0 {
		return nil
	}
	backups, err := bm.ListBackups()
	if err != nil {
		return err
	}
	for len(backups) > bm.keep {
		if err := os.Remove(backups[0].FilePath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove backup: %w", err)
		}
		backups = backups[1:]
	}
	return nil
}

// parseBackupFilename extracts metadata from a backup filename
// Expected format: YYYYMMDD_HHMMSS_<sessionID>_<n>.json
func parseBackupFilename(filename string, fullPath string) (BackupMetadata, error) {
	if len(filename) < len(backupTimeLayout)+1+8 {
		return BackupMetadata{}, fmt.Errorf("filename too short")
	}

	timestamp, err := time.ParseInLocation(backupTimeLayout, filename[:len(backupTimeLayout)], time.Local)
	if err != nil {
		return BackupMetadata{}, fmt.Errorf("invalid timestamp format: %w", err)
	}

	rest := filename[len(backupTimeLayout)+1:]
	return BackupMetadata{
		FilePath:  fullPath,
		Timestamp: timestamp,
		SessionID: rest[:8],
	}, nil
}
