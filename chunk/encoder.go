// Package chunk implements the core FTDC chunk codec: ChunkEncoder,
// ChunkDecoder, the column-major delta+RLE+Varint payload, DocFill, and the
// per-sample stream iterators.
package chunk

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/markbenvenuto/ftdc/compress"
	"github.com/markbenvenuto/ftdc/errs"
	"github.com/markbenvenuto/ftdc/internal/options"
	"github.com/markbenvenuto/ftdc/internal/pool"
	"github.com/markbenvenuto/ftdc/schema"
	"go.mongodb.org/mongo-driver/bson"
)

var defaultCodec = compress.New()

// AddResultKind distinguishes the three outcomes of ChunkEncoder.Add.
type AddResultKind uint8

const (
	// NewChunkEmpty: doc was adopted as a fresh chunk's reference; nothing to
	// emit yet.
	NewChunkEmpty AddResultKind = iota
	// NewChunkFlushed: the previously open chunk was serialised and doc
	// became the new reference.
	NewChunkFlushed
	// ExistingChunk: doc was appended as a sample of the currently open
	// chunk.
	ExistingChunk
)

// AddResult is the outcome of ChunkEncoder.Add. Bytes and Timestamp are only
// populated when Kind == NewChunkFlushed.
type AddResult struct {
	Kind      AddResultKind
	Bytes     []byte
	Timestamp time.Time
}

// ChunkEncoder accumulates same-schema samples and serialises them into
// compressed chunks on schema change, capacity, or explicit flush. A
// zero-value ChunkEncoder is not usable; construct one with NewChunkEncoder.
type ChunkEncoder struct {
	maxSamples int
	codec      compress.Codec
	bufferHint int

	open         bool
	referenceDoc bson.Raw
	referenceRow []uint64
	referenceT   time.Time
	pendingRows  [][]uint64
}

// NewChunkEncoder creates a ChunkEncoder that flushes a chunk after at most
// maxSamples total samples, including the reference. maxSamples must be >= 1.
//
// opts configures ambient concerns the wire format doesn't fix (compression
// level, scratch buffer sizing hints); see WithCompressionLevel and
// WithBufferSizeHint.
func NewChunkEncoder(maxSamples int, opts ...EncoderOption) (*ChunkEncoder, error) {
	if maxSamples < 1 {
		return nil, errs.ErrInvalidMaxSamples
	}

	codec, bufferHint := defaultEncoderState()
	e := &ChunkEncoder{maxSamples: maxSamples, codec: codec, bufferHint: bufferHint}
	if err := options.Apply(e, opts...); err != nil {
		return nil, err
	}

	return e, nil
}

// Add walks doc via schema.Walk and either adopts it as the chunk's
// reference, appends it to the currently open chunk, or flushes the open
// chunk (schema change or capacity) and starts a new one with doc as the
// reference. t is kept as the reference timestamp whenever doc becomes a
// reference. When a chunk is flushed, AddResult.Timestamp is the timestamp
// of that flushed chunk's reference sample, not t.
func (e *ChunkEncoder) Add(doc bson.Raw, t time.Time) (AddResult, error) {
	row, err := schema.Walk(doc)
	if err != nil {
		return AddResult{}, err
	}

	if !e.open {
		e.adopt(doc, row, t)
		return AddResult{Kind: NewChunkEmpty}, nil
	}

	if len(row) == len(e.referenceRow) && len(e.pendingRows) < e.maxSamples-1 {
		e.pendingRows = append(e.pendingRows, row)
		return AddResult{Kind: ExistingChunk}, nil
	}

	data, refT, err := e.serialize()
	if err != nil {
		return AddResult{}, err
	}
	e.adopt(doc, row, t)

	return AddResult{Kind: NewChunkFlushed, Bytes: data, Timestamp: refT}, nil
}

// Flush serialises the currently open chunk, if any, and resets the encoder
// to the Empty state. It returns a nil data slice if no chunk was open.
func (e *ChunkEncoder) Flush() (data []byte, refT time.Time, err error) {
	if !e.open {
		return nil, time.Time{}, nil
	}

	data, refT, err = e.serialize()
	if err != nil {
		return nil, time.Time{}, err
	}
	e.reset()

	return data, refT, nil
}

func (e *ChunkEncoder) adopt(doc bson.Raw, row []uint64, t time.Time) {
	e.open = true
	e.referenceDoc = append(bson.Raw(nil), doc...)
	e.referenceRow = row
	e.referenceT = t
	e.pendingRows = nil
}

func (e *ChunkEncoder) reset() {
	e.open = false
	e.referenceDoc = nil
	e.referenceRow = nil
	e.pendingRows = nil
}

func (e *ChunkEncoder) serialize() ([]byte, time.Time, error) {
	data, err := e.serializeChunk(e.referenceDoc, e.referenceRow, e.pendingRows)
	if err != nil {
		return nil, time.Time{}, err
	}

	return data, e.referenceT, nil
}

// serializeChunk builds the compressed chunk bytes for one reference document
// plus its buffered non-reference samples. The uncompressed scratch buffer
// comes from the pooled chunk buffer so repeated flushes on the same encoder
// don't pay for a fresh allocation every time.
func (e *ChunkEncoder) serializeChunk(referenceDoc bson.Raw, referenceRow []uint64, pendingRows [][]uint64) ([]byte, error) {
	metricsCount := len(referenceRow)
	sampleCount := len(pendingRows)

	var payload []byte
	if sampleCount > 0 {
		mx := deltaEncode(pendingRows, referenceRow)
		payload = encodeRLEVarint(mx.Data, make([]byte, 0, len(mx.Data)))
	}

	scratch := pool.GetChunkBuffer()
	defer pool.PutChunkBuffer(scratch)
	scratch.Grow(e.bufferHint)

	scratch.B = append(scratch.B, referenceDoc...)
	scratch.B = binary.LittleEndian.AppendUint32(scratch.B, uint32(int32(metricsCount)))
	scratch.B = binary.LittleEndian.AppendUint32(scratch.B, uint32(int32(sampleCount)))
	scratch.B = append(scratch.B, payload...)
	u := scratch.B

	compressed, err := e.codec.Compress(u)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrCompression, err)
	}

	out := make([]byte, 0, 4+len(compressed))
	out = binary.LittleEndian.AppendUint32(out, uint32(len(u)))
	out = append(out, compressed...)

	return out, nil
}
