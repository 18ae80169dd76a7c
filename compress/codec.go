// Package compress implements the single compressor the FTDC chunk wire
// format uses: zlib/DEFLATE over the uncompressed chunk buffer.
//
// The Compressor/Decompressor/Codec interface split keeps compression
// swappable behind a narrow interface even though, here, the wire format
// pins the implementation to zlib.
package compress

import "fmt"

// Compressor compresses a chunk's uncompressed buffer before it is written to
// an envelope's data field.
type Compressor interface {
	// Compress compresses data and returns the compressed result. The returned
	// slice is newly allocated; data is left unmodified.
	Compress(data []byte) ([]byte, error)
}

// Decompressor decompresses a chunk's data field back into the uncompressed
// buffer ChunkDecoder parses.
type Decompressor interface {
	// Decompress decompresses data and returns the original uncompressed
	// result. The returned slice is newly allocated; data is left unmodified.
	Decompress(data []byte) ([]byte, error)
}

// Codec combines both compression and decompression capabilities.
type Codec interface {
	Compressor
	Decompressor
}

// New returns the Codec used for chunk payloads: zlib/DEFLATE at the default
// compression level, matching the wire format's `zlib_deflate(...)` framing.
func New() Codec {
	return NewZlibCodec(DefaultLevel)
}

// errWrap prefixes err with op as "op: err", wrapping it with %w so
// errors.Is still sees the original error.
func errWrap(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}
