package storage

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func newTestFileStore(t *testing.T) *FileStore {
	t.Helper()
	store, err := NewFileStore(filepath.Join(t.TempDir(), "data"))
	require.NoError(t, err)
	return store
}

func blobStores(t *testing.T) map[string]BlobStore {
	return map[string]BlobStore{
		"memory": NewMemoryStore(),
		"file":   newTestFileStore(t),
		"sqlite": newTestSQLiteStore(t),
		"zstd":   NewCompressed(NewMemoryStore(), CompressionZstd),
		"lz4":    NewCompressed(newTestFileStore(t), CompressionLZ4),
	}
}

func TestBlobStoreContract(t *testing.T) {
	for name, store := range blobStores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.Get("draft")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, store.Set("draft", []byte("first")))
			got, err := store.Get("draft")
			require.NoError(t, err)
			assert.Equal(t, []byte("first"), got)

			require.NoError(t, store.Set("draft", []byte("second")))
			got, err = store.Get("draft")
			require.NoError(t, err)
			assert.Equal(t, []byte("second"), got)

			require.NoError(t, store.Set("outline", []byte{}))
			got, err = store.Get("outline")
			require.NoError(t, err)
			assert.Empty(t, got)

			got, err = store.Get("draft")
			require.NoError(t, err)
			assert.Equal(t, []byte("second"), got, "keys are independent")
		})
	}
}

func TestFileStoreLeavesNoTempFiles(t *testing.T) {
	store := newTestFileStore(t)
	require.NoError(t, store.Set("outline", []byte("{}")))

	entries, err := os.ReadDir(store.Dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "outline.blob", entries[0].Name())
}

func TestFileStoreRejectsPathKeys(t *testing.T) {
	store := newTestFileStore(t)
	assert.Error(t, store.Set("../escape", []byte("x")))
	_, err := store.Get("a/b")
	assert.Error(t, err)
}

func TestSQLiteStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Set("outline", []byte("kept")))
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get("outline")
	require.NoError(t, err)
	assert.Equal(t, []byte("kept"), got)
}

func TestMemoryStoreFailureInjection(t *testing.T) {
	store := NewMemoryStore()
	boom := errors.New("disk full")

	store.SetErr(boom)
	assert.ErrorIs(t, store.Set("k", []byte("v")), boom)
	assert.Equal(t, 0, store.Writes())

	store.SetErr(nil)
	require.NoError(t, store.Set("k", []byte("v")))
	assert.Equal(t, 1, store.Writes())
}

func TestCompressedShrinksRepetitiveData(t *testing.T) {
	for _, tag := range []CompressionTag{CompressionZstd, CompressionLZ4} {
		t.Run(tag.String(), func(t *testing.T) {
			inner := NewMemoryStore()
			store := NewCompressed(inner, tag)
			data := bytes.Repeat([]byte(`{"text":"buy milk","isCompleted":false},`), 200)

			require.NoError(t, store.Set("outline", data))

			raw, err := inner.Get("outline")
			require.NoError(t, err)
			assert.Less(t, len(raw), len(data))
			assert.Equal(t, byte(tag), raw[0])

			got, err := store.Get("outline")
			require.NoError(t, err)
			assert.Equal(t, data, got)
		})
	}
}

func TestCompressedStoresIncompressibleRaw(t *testing.T) {
	inner := NewMemoryStore()
	store := NewCompressed(inner, CompressionZstd)

	require.NoError(t, store.Set("k", []byte("ab")))
	raw, err := inner.Get("k")
	require.NoError(t, err)
	assert.Equal(t, byte(CompressionNone), raw[0])

	got, err := store.Get("k")
	require.NoError(t, err)
	assert.Equal(t, []byte("ab"), got)
}

func TestCompressedRejectsDamagedBlob(t *testing.T) {
	inner := NewMemoryStore()
	store := NewCompressed(inner, CompressionZstd)

	require.NoError(t, inner.Set("k", []byte{byte(CompressionZstd), 0x10, 0x01, 0x02}))
	_, err := store.Get("k")
	assert.Error(t, err)

	require.NoError(t, inner.Set("k", nil))
	_, err = store.Get("k")
	assert.Error(t, err)
}

func TestCompressedRejectsOversizedLength(t *testing.T) {
	for _, tag := range []CompressionTag{CompressionNone, CompressionLZ4, CompressionZstd} {
		t.Run(tag.String(), func(t *testing.T) {
			inner := NewMemoryStore()
			store := NewCompressed(inner, tag)

			huge := binary.AppendUvarint([]byte{byte(tag)}, ^uint64(0))
			require.NoError(t, inner.Set("draft", append(huge, 0, 1, 2)))
			_, err := store.Get("draft")
			assert.Error(t, err)

			// Under the limit but far beyond what three bytes can expand to
			big := binary.AppendUvarint([]byte{byte(tag)}, maxBlobSize)
			require.NoError(t, inner.Set("draft", append(big, 0, 1, 2)))
			_, err = store.Get("draft")
			assert.Error(t, err)
		})
	}
}

func TestCompressedReadsUntaggedBlobs(t *testing.T) {
	inner := NewMemoryStore()
	store := NewCompressed(inner, CompressionZstd)

	require.NoError(t, inner.Set("outline", []byte(`{"sections":[]}`)))
	got, err := store.Get("outline")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"sections":[]}`), got)
}

func TestOpenSwitchingCompressionKeepsBlobsReadable(t *testing.T) {
	data := bytes.Repeat([]byte(`{"text":"buy milk","isCompleted":false},`), 50)
	tags := []CompressionTag{CompressionNone, CompressionLZ4, CompressionZstd}

	for _, from := range tags {
		for _, to := range tags {
			t.Run(from.String()+"->"+to.String(), func(t *testing.T) {
				dir := t.TempDir()
				before, closeBefore, err := Open(Options{Backend: BackendFile, Dir: dir, Compression: from})
				require.NoError(t, err)
				require.NoError(t, before.Set("outline", data))
				require.NoError(t, closeBefore())

				after, closeAfter, err := Open(Options{Backend: BackendFile, Dir: dir, Compression: to})
				require.NoError(t, err)
				defer closeAfter()
				got, err := after.Get("outline")
				require.NoError(t, err)
				assert.Equal(t, data, got)
			})
		}
	}
}

func TestOpenReadsBlobsWrittenWithoutWrapper(t *testing.T) {
	dir := t.TempDir()
	raw, err := NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, raw.Set("outline", []byte(`{"sections":[]}`)))

	store, closeFn, err := Open(Options{Backend: BackendFile, Dir: dir, Compression: CompressionZstd})
	require.NoError(t, err)
	defer closeFn()
	got, err := store.Get("outline")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"sections":[]}`), got)
}

func TestParseCompressionTag(t *testing.T) {
	for _, name := range []string{"none", "lz4", "zstd"} {
		tag, err := ParseCompressionTag(name)
		require.NoError(t, err)
		assert.Equal(t, name, tag.String())
	}
	_, err := ParseCompressionTag("brotli")
	assert.Error(t, err)
}

func TestOpen(t *testing.T) {
	for _, backend := range []Backend{BackendFile, BackendSQLite} {
		t.Run(string(backend), func(t *testing.T) {
			store, closeFn, err := Open(Options{Backend: backend, Dir: t.TempDir(), Compression: CompressionZstd})
			require.NoError(t, err)
			defer closeFn()

			require.NoError(t, store.Set("outline", []byte("x")))
			got, err := store.Get("outline")
			require.NoError(t, err)
			assert.Equal(t, []byte("x"), got)
		})
	}

	_, _, err := Open(Options{Backend: "redis", Dir: t.TempDir()})
	assert.Error(t, err)
}
