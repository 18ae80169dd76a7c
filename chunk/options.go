package chunk

import (
	"fmt"

	"github.com/markbenvenuto/ftdc/compress"
	"github.com/markbenvenuto/ftdc/internal/options"
	"github.com/markbenvenuto/ftdc/internal/pool"
)

// EncoderOption configures a ChunkEncoder at construction time: compression
// level and scratch buffer sizing, the ambient knobs layered on top of the
// required maxSamples argument.
type EncoderOption = options.Option[*ChunkEncoder]

// WithCompressionLevel overrides the zlib compression level used when a chunk
// is serialised. The wire format does not encode the level, so any valid
// zlib level remains fully decodable by ChunkDecoder.
func WithCompressionLevel(level int) EncoderOption {
	return options.New(func(e *ChunkEncoder) error {
		codec, err := compress.NewZlibCodecLevel(level)
		if err != nil {
			return fmt.Errorf("ftdc: chunk encoder: %w", err)
		}
		e.codec = codec

		return nil
	})
}

// WithBufferSizeHint sizes the pooled scratch buffer an encoder reuses across
// chunk flushes to the expected uncompressed chunk size. Getting this close
// to the real size avoids the buffer's first few growth reallocations; it has
// no effect on the wire format.
func WithBufferSizeHint(bytes int) EncoderOption {
	return options.NoError(func(e *ChunkEncoder) {
		if bytes > 0 {
			e.bufferHint = bytes
		}
	})
}

func defaultEncoderState() (compress.Codec, int) {
	return defaultCodec, pool.ChunkBufferDefaultSize
}
