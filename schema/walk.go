// Package schema implements the deterministic depth-first traversal of a
// structured document that yields an ordered sequence of numeric metric
// slots.
//
// The document type is go.mongodb.org/mongo-driver/bson's Raw/RawValue:
// ordered field iteration, typed numeric accessors, and a binary form whose
// first four bytes are its own length.
package schema

import (
	"fmt"
	"strconv"

	"github.com/markbenvenuto/ftdc/errs"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// MetricType identifies the BSON origin type of a numeric slot, as produced by
// the path variant of Walk.
type MetricType uint8

const (
	Double MetricType = iota
	Int32
	Int64
	Boolean
	DateTime
	Timestamp
)

// String implements fmt.Stringer for diagnostic output.
func (t MetricType) String() string {
	switch t {
	case Double:
		return "double"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Boolean:
		return "bool"
	case DateTime:
		return "datetime"
	case Timestamp:
		return "timestamp"
	default:
		return "unknown"
	}
}

// PathInfo pairs a dotted field path with the metric type of the slot(s) it
// contributed. A timestamp field contributes two PathInfo entries ("<path>.t"
// and "<path>.i"), matching the two slots SchemaWalk emits for it.
type PathInfo struct {
	Path string
	Type MetricType
}

// Walk traverses doc depth-first, returning the ordered numeric slot
// vector. Non-numeric leaves contribute nothing; a timestamp contributes
// exactly two slots (time, then increment), in that order.
//
// Walk returns errs.ErrUnsupportedType if doc contains a Decimal128 value
// anywhere in its tree; Decimal128 has no lossless uint64 representation and
// is not supported by this codec.
func Walk(doc bson.Raw) ([]uint64, error) {
	slots := make([]uint64, 0, 16)
	if err := walkDoc(doc, &slots); err != nil {
		return nil, err
	}

	return slots, nil
}

// WalkPaths is the path variant of Walk: it produces dotted path names
// for each slot alongside its origin BSON type. Array elements are named by
// their numeric index appended with a dot; field names containing dots are
// not escaped, so a field literally named "a.b" collides with a nested field
// "a" containing "b".
func WalkPaths(doc bson.Raw) ([]PathInfo, error) {
	paths := make([]PathInfo, 0, 16)
	if err := walkDocPaths(doc, "", &paths); err != nil {
		return nil, err
	}

	return paths, nil
}

func walkDoc(doc bson.Raw, out *[]uint64) error {
	elems, err := doc.Elements()
	if err != nil {
		return fmt.Errorf("ftdc: schema walk: %w", err)
	}

	for _, elem := range elems {
		val, err := elem.ValueErr()
		if err != nil {
			return fmt.Errorf("ftdc: schema walk: %w", err)
		}
		if err := walkValue(val, out); err != nil {
			return err
		}
	}

	return nil
}

func walkValue(val bson.RawValue, out *[]uint64) error {
	switch val.Type {
	case bsontype.Double:
		*out = append(*out, uint64(val.Double()))
	case bsontype.Int32:
		*out = append(*out, uint64(uint32(val.Int32())))
	case bsontype.Int64:
		*out = append(*out, uint64(val.Int64()))
	case bsontype.Boolean:
		if val.Boolean() {
			*out = append(*out, 1)
		} else {
			*out = append(*out, 0)
		}
	case bsontype.DateTime:
		*out = append(*out, uint64(val.DateTime()))
	case bsontype.Timestamp:
		t, i := val.Timestamp()
		*out = append(*out, uint64(t), uint64(i))
	case bsontype.EmbeddedDocument:
		nested, err := val.DocumentOK()
		if !err {
			return fmt.Errorf("ftdc: schema walk: malformed embedded document")
		}
		return walkDoc(nested, out)
	case bsontype.Array:
		arr, ok := val.ArrayOK()
		if !ok {
			return fmt.Errorf("ftdc: schema walk: malformed array")
		}
		values, walkErr := arr.Values()
		if walkErr != nil {
			return fmt.Errorf("ftdc: schema walk: %w", walkErr)
		}
		for _, v := range values {
			if err := walkValue(v, out); err != nil {
				return err
			}
		}
	case bsontype.Decimal128:
		return errs.ErrUnsupportedType
	default:
		// All other types (string, binary, null, objectid, js code, regex,
		// symbol, db pointer, min/max key, undefined) contribute zero slots.
	}

	return nil
}

func walkDocPaths(doc bson.Raw, prefix string, out *[]PathInfo) error {
	elems, err := doc.Elements()
	if err != nil {
		return fmt.Errorf("ftdc: schema walk: %w", err)
	}

	for _, elem := range elems {
		key, err := elem.KeyErr()
		if err != nil {
			return fmt.Errorf("ftdc: schema walk: %w", err)
		}
		val, err := elem.ValueErr()
		if err != nil {
			return fmt.Errorf("ftdc: schema walk: %w", err)
		}

		path := key
		if prefix != "" {
			path = prefix + "." + key
		}

		if err := walkValuePaths(val, path, out); err != nil {
			return err
		}
	}

	return nil
}

func walkValuePaths(val bson.RawValue, path string, out *[]PathInfo) error {
	switch val.Type {
	case bsontype.Double:
		*out = append(*out, PathInfo{Path: path, Type: Double})
	case bsontype.Int32:
		*out = append(*out, PathInfo{Path: path, Type: Int32})
	case bsontype.Int64:
		*out = append(*out, PathInfo{Path: path, Type: Int64})
	case bsontype.Boolean:
		*out = append(*out, PathInfo{Path: path, Type: Boolean})
	case bsontype.DateTime:
		*out = append(*out, PathInfo{Path: path, Type: DateTime})
	case bsontype.Timestamp:
		*out = append(*out, PathInfo{Path: path + ".t", Type: Timestamp})
		*out = append(*out, PathInfo{Path: path + ".i", Type: Timestamp})
	case bsontype.EmbeddedDocument:
		nested, ok := val.DocumentOK()
		if !ok {
			return fmt.Errorf("ftdc: schema walk: malformed embedded document at %q", path)
		}
		return walkDocPaths(nested, path, out)
	case bsontype.Array:
		arr, ok := val.ArrayOK()
		if !ok {
			return fmt.Errorf("ftdc: schema walk: malformed array at %q", path)
		}
		values, err := arr.Values()
		if err != nil {
			return fmt.Errorf("ftdc: schema walk: %w", err)
		}
		for i, v := range values {
			elemPath := path + "." + strconv.Itoa(i)
			if err := walkValuePaths(v, elemPath, out); err != nil {
				return err
			}
		}
	case bsontype.Decimal128:
		return errs.ErrUnsupportedType
	default:
		// Non-numeric leaves contribute no path entries.
	}

	return nil
}
