// Package storage persists the committed outline and draft snapshots
// through a small key/value blob interface.
package storage

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned by Get when the key has never been written
var ErrNotFound = errors.New("blob not found")

// BlobStore is an opaque key/value store for whole documents
type BlobStore interface {
	Get(key string) ([]byte, error)
	Set(key string, data []byte) error
}

// Backend names a BlobStore implementation in the config file
type Backend string

const (
	BackendFile   Backend = "file"
	BackendSQLite Backend = "sqlite"
)

// Options selects and configures the blob store opened by Open
type Options struct {
	Backend     Backend
	Dir         string
	Compression CompressionTag
}

// Open creates the configured BlobStore under opts.Dir. The returned close
// function releases the backend.
func Open(opts Options) (BlobStore, func() error, error) {
	var store BlobStore
	closeFn := func() error { return nil }

	switch Backend(strings.ToLower(string(opts.Backend))) {
	case BackendFile, "":
		fs, err := NewFileStore(opts.Dir)
		if err != nil {
			return nil, nil, err
		}
		store = fs
	case BackendSQLite:
		db, err := NewSQLiteStore(filepath.Join(opts.Dir, "subtasks.db"))
		if err != nil {
			return nil, nil, err
		}
		store = db
		closeFn = db.Close
	default:
		return nil, nil, fmt.Errorf("unknown storage backend: %q", opts.Backend)
	}

	// Wrapped for none too: every setting reads every tag
	return NewCompressed(store, opts.Compression), closeFn, nil
}
