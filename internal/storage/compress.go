package storage

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// CompressionTag identifies how a stored blob is compressed. It is the first
// byte of every blob written through Compressed.
type CompressionTag uint8

const (
	CompressionNone CompressionTag = 0
	CompressionLZ4  CompressionTag = 1
	CompressionZstd CompressionTag = 2
)

func (tag CompressionTag) known() bool {
	return tag <= CompressionZstd
}

func (tag CompressionTag) String() string {
	switch tag {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZstd:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", tag)
	}
}

// ParseCompressionTag parses the config name of a compression algorithm
func ParseCompressionTag(name string) (CompressionTag, error) {
	switch name {
	case "none", "":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd":
		return CompressionZstd, nil
	default:
		return 0, fmt.Errorf("unknown compression: %q", name)
	}
}

var errIncompressible = errors.New("data is incompressible")

// maxBlobSize bounds the uncompressed length accepted from a blob header
const maxBlobSize = 64 << 20

// lz4 cannot expand a block by more than this factor
const lz4MaxRatio = 255

var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("storage: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil, zstd.WithDecoderMaxMemory(maxBlobSize))
	if err != nil {
		panic("storage: zstd decoder initialization failed: " + err.Error())
	}
}

// Compressed wraps a BlobStore and compresses values on the way in. The
// stored layout is: tag byte, uvarint uncompressed length, payload. Values
// that do not shrink are stored with CompressionNone. Blobs whose first byte
// is not a known tag were written without the wrapper and are returned as is.
type Compressed struct {
	inner BlobStore
	tag   CompressionTag
}

// NewCompressed wraps inner, compressing new writes with tag
func NewCompressed(inner BlobStore, tag CompressionTag) *Compressed {
	return &Compressed{inner: inner, tag: tag}
}

// Get reads and decompresses the blob for key
func (c *Compressed) Get(key string) ([]byte, error) {
	stored, err := c.inner.Get(key)
	if err != nil {
		return nil, err
	}
	return decodeBlob(stored)
}

// Set compresses data and writes it to the wrapped store
func (c *Compressed) Set(key string, data []byte) error {
	return c.inner.Set(key, encodeBlob(data, c.tag))
}

func encodeBlob(data []byte, tag CompressionTag) []byte {
	payload, err := compress(data, tag)
	if err != nil {
		tag, payload = CompressionNone, data
	}
	out := make([]byte, 0, 1+binary.MaxVarintLen64+len(payload))
	out = append(out, byte(tag))
	out = binary.AppendUvarint(out, uint64(len(data)))
	return append(out, payload...)
}

func decodeBlob(stored []byte) ([]byte, error) {
	if len(stored) == 0 {
		return nil, fmt.Errorf("compressed blob: empty")
	}
	tag := CompressionTag(stored[0])
	if !tag.known() {
		return stored, nil
	}
	size, n := binary.Uvarint(stored[1:])
	if n <= 0 {
		return nil, fmt.Errorf("compressed blob: bad length header")
	}
	if size > maxBlobSize {
		return nil, fmt.Errorf("compressed blob: length %d exceeds limit %d", size, maxBlobSize)
	}
	return decompress(stored[1+n:], tag, int(size))
}

func compress(data []byte, tag CompressionTag) ([]byte, error) {
	switch tag {
	case CompressionNone:
		return data, nil
	case CompressionLZ4:
		destination := make([]byte, lz4.CompressBlockBound(len(data)))
		written, err := lz4.CompressBlock(data, destination, nil)
		if err != nil {
			return nil, fmt.Errorf("lz4 compress: %w", err)
		}
		if written == 0 || written >= len(data) {
			return nil, errIncompressible
		}
		return destination[:written], nil
	case CompressionZstd:
		compressed := zstdEncoder.EncodeAll(data, nil)
		if len(compressed) >= len(data) {
			return nil, errIncompressible
		}
		return compressed, nil
	default:
		return nil, fmt.Errorf("unsupported compression tag: %d", tag)
	}
}

func decompress(payload []byte, tag CompressionTag, size int) ([]byte, error) {
	switch tag {
	case CompressionNone:
		if len(payload) != size {
			return nil, fmt.Errorf("uncompressed blob: size %d does not match expected %d", len(payload), size)
		}
		return payload, nil
	case CompressionLZ4:
		if size > lz4MaxRatio*len(payload) {
			return nil, fmt.Errorf("lz4 decompress: length %d impossible for %d byte payload", size, len(payload))
		}
		destination := make([]byte, size)
		read, err := lz4.UncompressBlock(payload, destination)
		if err != nil {
			return nil, fmt.Errorf("lz4 decompress: %w", err)
		}
		if read != size {
			return nil, fmt.Errorf("lz4 decompress: got %d bytes, expected %d", read, size)
		}
		return destination, nil
	case CompressionZstd:
		result, err := zstdDecoder.DecodeAll(payload, nil)
		if err != nil {
			return nil, fmt.Errorf("zstd decompress: %w", err)
		}
		if len(result) != size {
			return nil, fmt.Errorf("zstd decompress: got %d bytes, expected %d", len(result), size)
		}
		return result, nil
	default:
		return nil, fmt.Errorf("unsupported compression tag: %d", tag)
	}
}
