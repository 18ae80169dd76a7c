// Package errs centralizes the sentinel errors returned across the codec so
// callers can test for a specific failure with errors.Is, regardless of which
// component produced it. Call sites wrap these with fmt.Errorf("%w: ...") to
// add context.
package errs

import "errors"

var (
	// ErrUnsupportedType is returned when SchemaWalk or DocFill encounters a
	// Decimal128 value. Decimal128 is explicitly unsupported by this format.
	ErrUnsupportedType = errors.New("ftdc: unsupported BSON type (decimal128)")

	// ErrSchemaMismatch is returned when a decoded chunk's stored metrics_count
	// does not match the slot count obtained by re-walking its reference document.
	ErrSchemaMismatch = errors.New("ftdc: schema mismatch between stored metrics_count and reference document")

	// ErrTruncatedPayload is returned when the RLE+Varint payload runs out of
	// bytes before the expected metrics_count*sample_count values are decoded.
	ErrTruncatedPayload = errors.New("ftdc: truncated RLE/varint payload")

	// ErrTrailingBytes is returned when the RLE+Varint payload has bytes left
	// over after decoding the expected number of values.
	ErrTrailingBytes = errors.New("ftdc: trailing bytes after RLE/varint payload")

	// ErrBadEnvelope is returned when an envelope's framing length is
	// inconsistent, or a required field (type, data) is missing or malformed.
	ErrBadEnvelope = errors.New("ftdc: malformed envelope")

	// ErrSlotCountMismatch is returned by DocFill when the supplied row has a
	// different number of slots than the reference document's schema walk
	// produces.
	ErrSlotCountMismatch = errors.New("ftdc: slot count mismatch between row and reference document")

	// ErrInvalidMaxSamples is returned by NewChunkEncoder when maxSamples is
	// less than 1.
	ErrInvalidMaxSamples = errors.New("ftdc: max samples must be >= 1")

	// ErrCompression wraps failures from the underlying zlib compressor or
	// decompressor.
	ErrCompression = errors.New("ftdc: compression failure")
)
