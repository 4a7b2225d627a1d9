package dataset

import (
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression defines the stream compression of a dataset.
type Compression uint8

const (
	// CompressionNone indicates plain text.
	CompressionNone Compression = iota
	// CompressionLZ4 indicates an LZ4 frame stream (fast).
	CompressionLZ4
	// CompressionZSTD indicates a zstd stream (better ratio).
	CompressionZSTD
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(c))
	}
}

// CompressionFromName derives the compression from the extension of name.
func CompressionFromName(name string) Compression {
	switch strings.ToLower(path.Ext(name)) {
	case ".zst", ".zstd":
		return CompressionZSTD
	case ".lz4":
		return CompressionLZ4
	default:
		return CompressionNone
	}
}

// NewReader returns a reader that decompresses r. Closing it does not close r.
func NewReader(r io.Reader, c Compression) (io.ReadCloser, error) {
	switch c {
	case CompressionNone:
		return io.NopCloser(r), nil
	case CompressionLZ4:
		return io.NopCloser(lz4.NewReader(r)), nil
	case CompressionZSTD:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("zstd reader: %w", err)
		}
		return dec.IOReadCloser(), nil
	default:
		return nil, fmt.Errorf("unsupported compression: %v", c)
	}
}

// NewWriter returns a writer that compresses into w. Close flushes the
// compressed stream but does not close w.
func NewWriter(w io.Writer, c Compression) (io.WriteCloser, error) {
	switch c {
	case CompressionNone:
		return nopWriteCloser{w}, nil
	case CompressionLZ4:
		return lz4.NewWriter(w), nil
	case CompressionZSTD:
		enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, fmt.Errorf("zstd writer: %w", err)
		}
		return enc, nil
	default:
		return nil, fmt.Errorf("unsupported compression: %v", c)
	}
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
