package reader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// MaxDecompressedSize bounds the output of Decompress
const MaxDecompressedSize = 512 << 20

// ErrInputTooLarge is returned when decompressed input exceeds MaxDecompressedSize
var ErrInputTooLarge = errors.New("decompressed input too large")

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
	lz4Magic  = []byte{0x04, 0x22, 0x4d, 0x18}
)

// Decompress unwraps gzip, zstd or lz4 frames detected by their magic bytes,
// and brotli when name ends in .br. Anything else is returned unchanged.
func Decompress(name string, data []byte) ([]byte, error) {
	var (
		r   io.Reader
		err error
	)
	switch {
	case bytes.HasPrefix(data, gzipMagic):
		var gz *gzip.Reader
		gz, err = gzip.NewReader(bytes.NewReader(data))
		if err == nil {
			defer func() { _ = gz.Close() }()
			r = gz
		}
	case bytes.HasPrefix(data, zstdMagic):
		var zr *zstd.Decoder
		zr, err = zstd.NewReader(bytes.NewReader(data))
		if err == nil {
			defer zr.Close()
			r = zr
		}
	case bytes.HasPrefix(data, lz4Magic):
		r = lz4.NewReader(bytes.NewReader(data))
	case strings.EqualFold(filepath.Ext(name), ".br"):
		r = brotli.NewReader(bytes.NewReader(data))
	default:
		return data, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open compressed input: %w", err)
	}

	out, err := io.ReadAll(io.LimitReader(r, MaxDecompressedSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to decompress input: %w", err)
	}
	if len(out) > MaxDecompressedSize {
		return nil, ErrInputTooLarge
	}
	return out, nil
}
