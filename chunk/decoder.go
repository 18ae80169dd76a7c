package chunk

import (
	"encoding/binary"
	"fmt"

	"github.com/markbenvenuto/ftdc/errs"
	"github.com/markbenvenuto/ftdc/schema"
	"go.mongodb.org/mongo-driver/bson"
)

// DecodedChunk is the inverse of a serialised chunk: the reference document,
// its re-walked slot vector, and the re-inflated column-major metric matrix,
// plus the raw compressed/reference sizes for reporting compression ratios.
type DecodedChunk struct {
	Reference    bson.Raw
	ReferenceRow []uint64
	Matrix       Matrix

	ChunkSizeBytes  int
	RefDocSizeBytes int
}

// Decode parses the data binary payload of a metrics envelope into a
// DecodedChunk.
func Decode(data []byte) (*DecodedChunk, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("%w: chunk payload shorter than its size prefix", errs.ErrBadEnvelope)
	}

	// data[:4] is the advisory uncompressed size; decoding relies on the
	// zlib stream's own framing, not on this value.
	u, err := defaultCodec.Decompress(data[4:])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrCompression, err)
	}

	if len(u) < 4 {
		return nil, fmt.Errorf("%w: uncompressed chunk shorter than reference length prefix", errs.ErrBadEnvelope)
	}
	refDocLen := int(int32(binary.LittleEndian.Uint32(u[:4])))
	if refDocLen < 4 || refDocLen > len(u) {
		return nil, fmt.Errorf("%w: invalid reference document length %d", errs.ErrBadEnvelope, refDocLen)
	}

	refBytes := make(bson.Raw, refDocLen)
	copy(refBytes, u[:refDocLen])
	cursor := refDocLen

	if len(u) < cursor+8 {
		return nil, fmt.Errorf("%w: truncated metrics_count/sample_count", errs.ErrBadEnvelope)
	}
	metricsCount := int(int32(binary.LittleEndian.Uint32(u[cursor : cursor+4])))
	sampleCount := int(int32(binary.LittleEndian.Uint32(u[cursor+4 : cursor+8])))
	cursor += 8

	referenceRow, err := schema.Walk(refBytes)
	if err != nil {
		return nil, err
	}
	if len(referenceRow) != metricsCount {
		return nil, schemaMismatchErr(refBytes, metricsCount, len(referenceRow))
	}

	out := &DecodedChunk{
		Reference:       refBytes,
		ReferenceRow:    referenceRow,
		ChunkSizeBytes:  len(data),
		RefDocSizeBytes: refDocLen,
	}

	if metricsCount == 0 || sampleCount == 0 {
		out.Matrix = Matrix{MetricsCount: metricsCount, SampleCount: sampleCount}
		return out, nil
	}

	flat, err := decodeRLEVarint(u[cursor:], metricsCount*sampleCount)
	if err != nil {
		return nil, err
	}

	mx := Matrix{MetricsCount: metricsCount, SampleCount: sampleCount, Data: flat}
	deltaDecode(mx, referenceRow)
	out.Matrix = mx

	return out, nil
}

// schemaMismatchErr reports the re-walked paths alongside the mismatch, to
// help a human find the offending field.
func schemaMismatchErr(ref bson.Raw, stored, rewalked int) error {
	paths, pathErr := schema.WalkPaths(ref)
	if pathErr != nil {
		return fmt.Errorf("%w: stored metrics_count=%d, re-walked=%d", errs.ErrSchemaMismatch, stored, rewalked)
	}

	names := make([]string, len(paths))
	for i, p := range paths {
		names[i] = p.Path
	}

	return fmt.Errorf("%w: stored metrics_count=%d, re-walked=%d, paths=%v", errs.ErrSchemaMismatch, stored, rewalked, names)
}
