// Package framer reads and writes the outer length-prefixed envelopes
// (metadata and metrics) that carry chunks over a stream.
package framer

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/markbenvenuto/ftdc/errs"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/x/bsonx/bsoncore"
)

// EnvelopeKind distinguishes a metadata envelope from a metrics envelope.
type EnvelopeKind uint8

const (
	Metadata EnvelopeKind = iota
	Metrics
)

// Envelope is one outer record of an FTDC stream. Doc is populated for
// Metadata (including a type=2 passthrough); Data is populated for Metrics.
type Envelope struct {
	ID   time.Time
	Kind EnvelopeKind

	Doc  bson.Raw
	Data []byte
}

// ReadNext reads and parses the next envelope from r.
//
// It returns (nil, nil) on a clean EOF at a record boundary. Any other
// failure, including a truncated record, is errs.ErrBadEnvelope or an I/O
// error returned unchanged; the framer does not attempt to resynchronise
// past a malformed record.
func ReadNext(r io.Reader) (*Envelope, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: truncated length prefix", errs.ErrBadEnvelope)
		}
		return nil, err
	}

	size := int32(binary.LittleEndian.Uint32(lenBuf[:]))
	if size < 4 {
		return nil, fmt.Errorf("%w: frame length %d smaller than its own prefix", errs.ErrBadEnvelope, size)
	}

	buf := make([]byte, size)
	copy(buf[:4], lenBuf[:])
	if _, err := io.ReadFull(r, buf[4:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: truncated frame", errs.ErrBadEnvelope)
		}
		return nil, err
	}

	return parseEnvelope(bson.Raw(buf))
}

func parseEnvelope(doc bson.Raw) (*Envelope, error) {
	idVal, err := doc.LookupErr("_id")
	if err != nil {
		return nil, fmt.Errorf("%w: missing _id (%v)", errs.ErrBadEnvelope, err)
	}
	idMs, ok := idVal.DateTimeOK()
	if !ok {
		return nil, fmt.Errorf("%w: _id is not a datetime", errs.ErrBadEnvelope)
	}

	typeVal, err := doc.LookupErr("type")
	if err != nil {
		return nil, fmt.Errorf("%w: missing type (%v)", errs.ErrBadEnvelope, err)
	}
	typeNum, ok := typeVal.Int32OK()
	if !ok {
		return nil, fmt.Errorf("%w: type is not an int32", errs.ErrBadEnvelope)
	}

	id := primitive.DateTime(idMs).Time()

	if typeNum == 0 || typeNum == 2 {
		docVal, err := doc.LookupErr("doc")
		if err != nil {
			return nil, fmt.Errorf("%w: missing doc (%v)", errs.ErrBadEnvelope, err)
		}
		inner, ok := docVal.DocumentOK()
		if !ok {
			return nil, fmt.Errorf("%w: doc is not a document", errs.ErrBadEnvelope)
		}
		return &Envelope{ID: id, Kind: Metadata, Doc: inner}, nil
	}

	dataVal, err := doc.LookupErr("data")
	if err != nil {
		return nil, fmt.Errorf("%w: missing data (%v)", errs.ErrBadEnvelope, err)
	}
	subtype, data, ok := dataVal.BinaryOK()
	if !ok {
		return nil, fmt.Errorf("%w: data is not binary", errs.ErrBadEnvelope)
	}
	if subtype != 0x00 {
		return nil, fmt.Errorf("%w: data has binary subtype %#x, want 0x00", errs.ErrBadEnvelope, subtype)
	}

	return &Envelope{ID: id, Kind: Metrics, Data: data}, nil
}

// Write serialises env and writes its raw bytes to w. The envelope's own
// leading length is the frame length; no additional framing is written.
func Write(w io.Writer, env *Envelope) error {
	doc, err := buildEnvelope(env)
	if err != nil {
		return err
	}

	_, err = w.Write(doc)
	return err
}

func buildEnvelope(env *Envelope) ([]byte, error) {
	idx, out := bsoncore.AppendDocumentStart(nil)
	out = bsoncore.AppendDateTimeElement(out, "_id", int64(primitive.NewDateTimeFromTime(env.ID)))

	switch env.Kind {
	case Metadata:
		out = bsoncore.AppendInt32Element(out, "type", 0)
		out = bsoncore.AppendDocumentElement(out, "doc", env.Doc)
	case Metrics:
		out = bsoncore.AppendInt32Element(out, "type", 1)
		out = bsoncore.AppendBinaryElement(out, "data", 0x00, env.Data)
	default:
		return nil, fmt.Errorf("%w: unknown envelope kind %d", errs.ErrBadEnvelope, env.Kind)
	}

	return bsoncore.AppendDocumentEnd(out, idx)
}

// NewMetadataEnvelope builds a Metadata envelope wrapping doc.
func NewMetadataEnvelope(doc bson.Raw, ts time.Time) *Envelope {
	return &Envelope{ID: ts, Kind: Metadata, Doc: doc}
}

// NewMetricsEnvelope builds a Metrics envelope wrapping chunkBytes.
func NewMetricsEnvelope(chunkBytes []byte, ts time.Time) *Envelope {
	return &Envelope{ID: ts, Kind: Metrics, Data: chunkBytes}
}
