// Package ftdc provides a compact binary codec for MongoDB-style Full Time
// Diagnostic Data Capture (FTDC): a time-ordered stream of structured
// documents stored as a sequence of delta-and-run-length-compressed metric
// chunks.
//
// # Core Components
//
//   - schema: SchemaWalk, the depth-first document-to-numeric-slot traversal
//   - chunk: ChunkEncoder/ChunkDecoder, DocFill, and the per-sample iterators
//   - framer: BlockFramer, the length-prefixed envelope reader/writer
//   - compress: the zlib codec the wire format pins chunk payloads to
//
// This top-level package is a thin convenience layer over chunk; envelope
// reading and writing is done with the framer package directly. For
// fine-grained control, use the chunk package directly as well.
//
// # Basic usage
//
//	enc, _ := ftdc.NewEncoder(ftdc.DefaultMaxSamples)
//	for _, doc := range docs {
//	    result, _ := enc.Add(doc, time.Now())
//	    if result.Kind == chunk.NewChunkFlushed {
//	        framer.Write(w, framer.NewMetricsEnvelope(result.Bytes, result.Timestamp))
//	    }
//	}
//	if data, t, _ := enc.Flush(); data != nil {
//	    framer.Write(w, framer.NewMetricsEnvelope(data, t))
//	}
package ftdc

import (
	"github.com/markbenvenuto/ftdc/chunk"
)

// DefaultMaxSamples is the samples-per-chunk default used by MongoDB's own
// mongod FTDC writer in practice. NewChunkEncoder requires maxSamples
// explicitly; this constant lets callers opt into the real-world value
// instead of hardcoding it themselves.
const DefaultMaxSamples = 300

// NewEncoder creates a ChunkEncoder with the given samples-per-chunk capacity
// (including the reference sample). See chunk.NewChunkEncoder for the option
// surface (WithCompressionLevel, WithBufferSizeHint).
func NewEncoder(maxSamples int, opts ...chunk.EncoderOption) (*chunk.ChunkEncoder, error) {
	return chunk.NewChunkEncoder(maxSamples, opts...)
}

// NewDefaultEncoder creates a ChunkEncoder using DefaultMaxSamples, matching
// the chunk size mongod's FTDC writer uses in practice.
func NewDefaultEncoder(opts ...chunk.EncoderOption) (*chunk.ChunkEncoder, error) {
	return chunk.NewChunkEncoder(DefaultMaxSamples, opts...)
}

// Decode parses the data binary payload of a metrics envelope into a
// DecodedChunk. It is a direct alias of chunk.Decode for callers that only
// import the root package.
func Decode(data []byte) (*chunk.DecodedChunk, error) {
	return chunk.Decode(data)
}
