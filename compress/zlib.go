package compress

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/zlib"
)

// DefaultLevel is the zlib compression level used for chunk payloads. The wire
// format does not encode the compression level (only the compressed bytes are
// stored), so any level is wire-compatible; DefaultCompression balances ratio
// and speed for typical metric chunks.
const DefaultLevel = zlib.DefaultCompression

// ZlibCodec compresses and decompresses chunk payloads using zlib/DEFLATE.
//
// Writers are pooled and reset between uses to avoid re-allocating the
// DEFLATE tables on every chunk flush.
type ZlibCodec struct {
	level int

	writerPool sync.Pool
}

var _ Codec = (*ZlibCodec)(nil)

// NewZlibCodecLevel creates a Codec at the given zlib level, validating it
// first so a caller-supplied level (e.g. via WithCompressionLevel) fails fast
// with a clear error instead of panicking the first time the writer pool is
// used.
func NewZlibCodecLevel(level int) (Codec, error) {
	if level != zlib.DefaultCompression && level != zlib.HuffmanOnly &&
		(level < zlib.NoCompression || level > zlib.BestCompression) {
		return nil, errWrap("zlib", fmt.Errorf("invalid compression level %d", level))
	}

	return NewZlibCodec(level), nil
}

// NewZlibCodec creates a ZlibCodec that compresses at the given zlib level.
func NewZlibCodec(level int) *ZlibCodec {
	c := &ZlibCodec{level: level}
	c.writerPool = sync.Pool{
		New: func() any {
			w, err := zlib.NewWriterLevel(io.Discard, c.level)
			if err != nil {
				// DefaultLevel and the documented zlib levels never fail here.
				panic(err)
			}
			return w
		},
	}

	return c
}

// Compress deflates data and returns the compressed bytes.
func (c *ZlibCodec) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(len(data)/2 + 16)

	w, _ := c.writerPool.Get().(*zlib.Writer)
	w.Reset(&buf)

	if _, err := w.Write(data); err != nil {
		c.writerPool.Put(w)
		return nil, errWrap("zlib compress", err)
	}
	if err := w.Close(); err != nil {
		c.writerPool.Put(w)
		return nil, errWrap("zlib compress", err)
	}
	c.writerPool.Put(w)

	return buf.Bytes(), nil
}

// Decompress inflates data and returns the original bytes.
func (c *ZlibCodec) Decompress(data []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, errWrap("zlib decompress", err)
	}
	defer r.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, errWrap("zlib decompress", err)
	}

	return out, nil
}
