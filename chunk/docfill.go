package chunk

import (
	"fmt"
	"strconv"

	"github.com/markbenvenuto/ftdc/errs"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/x/bsonx/bsoncore"
)

// Fill reconstructs a document with the same shape as reference, substituting
// each numeric leaf with a value consumed from row, in schema.Walk order.
// Non-numeric leaves are copied verbatim from reference.
//
// Fill returns errs.ErrSlotCountMismatch if row is shorter than reference's
// schema walk requires, or if row has slots left over once the walk
// completes.
func Fill(reference bson.Raw, row []uint64) (bson.Raw, error) {
	cur := 0

	out, err := fillDoc(reference, row, &cur)
	if err != nil {
		return nil, err
	}
	if cur != len(row) {
		return nil, fmt.Errorf("%w: row has %d slots, reference consumed only %d", errs.ErrSlotCountMismatch, len(row), cur)
	}

	return bson.Raw(out), nil
}

func fillDoc(doc bson.Raw, row []uint64, cur *int) ([]byte, error) {
	elems, err := doc.Elements()
	if err != nil {
		return nil, fmt.Errorf("ftdc: docfill: %w", err)
	}

	idx, out := bsoncore.AppendDocumentStart(nil)
	for _, elem := range elems {
		key, err := elem.KeyErr()
		if err != nil {
			return nil, fmt.Errorf("ftdc: docfill: %w", err)
		}
		val, err := elem.ValueErr()
		if err != nil {
			return nil, fmt.Errorf("ftdc: docfill: %w", err)
		}

		out, err = fillValue(out, key, val, row, cur)
		if err != nil {
			return nil, err
		}
	}

	return bsoncore.AppendDocumentEnd(out, idx)
}

func fillArray(arr bson.Raw, row []uint64, cur *int) ([]byte, error) {
	values, err := arr.Values()
	if err != nil {
		return nil, fmt.Errorf("ftdc: docfill: %w", err)
	}

	idx, out := bsoncore.AppendArrayStart(nil)
	for i, v := range values {
		out, err = fillValue(out, strconv.Itoa(i), v, row, cur)
		if err != nil {
			return nil, err
		}
	}

	return bsoncore.AppendArrayEnd(out, idx)
}

func fillValue(out []byte, key string, val bson.RawValue, row []uint64, cur *int) ([]byte, error) {
	switch val.Type {
	case bsontype.Double:
		slot, err := nextSlot(row, cur)
		if err != nil {
			return nil, err
		}
		return bsoncore.AppendDoubleElement(out, key, float64(slot)), nil

	case bsontype.Int32:
		slot, err := nextSlot(row, cur)
		if err != nil {
			return nil, err
		}
		return bsoncore.AppendInt32Element(out, key, int32(uint32(slot))), nil

	case bsontype.Int64:
		slot, err := nextSlot(row, cur)
		if err != nil {
			return nil, err
		}
		return bsoncore.AppendInt64Element(out, key, int64(slot)), nil

	case bsontype.Boolean:
		slot, err := nextSlot(row, cur)
		if err != nil {
			return nil, err
		}
		return bsoncore.AppendBooleanElement(out, key, slot != 0), nil

	case bsontype.DateTime:
		slot, err := nextSlot(row, cur)
		if err != nil {
			return nil, err
		}
		return bsoncore.AppendDateTimeElement(out, key, int64(slot)), nil

	case bsontype.Timestamp:
		t, err := nextSlot(row, cur)
		if err != nil {
			return nil, err
		}
		i, err := nextSlot(row, cur)
		if err != nil {
			return nil, err
		}
		return bsoncore.AppendTimestampElement(out, key, uint32(t), uint32(i)), nil

	case bsontype.EmbeddedDocument:
		nested, ok := val.DocumentOK()
		if !ok {
			return nil, fmt.Errorf("ftdc: docfill: malformed embedded document at %q", key)
		}
		filled, err := fillDoc(nested, row, cur)
		if err != nil {
			return nil, err
		}
		return bsoncore.AppendDocumentElement(out, key, filled), nil

	case bsontype.Array:
		arr, ok := val.ArrayOK()
		if !ok {
			return nil, fmt.Errorf("ftdc: docfill: malformed array at %q", key)
		}
		filled, err := fillArray(arr, row, cur)
		if err != nil {
			return nil, err
		}
		return bsoncore.AppendArrayElement(out, key, filled), nil

	case bsontype.Decimal128:
		return nil, errs.ErrUnsupportedType

	default:
		// Non-numeric leaves are restored by value from the reference, not
		// re-derived from the row.
		return bsoncore.AppendValueElement(out, key, bsoncore.Value{Type: val.Type, Data: val.Value}), nil
	}
}

func nextSlot(row []uint64, cur *int) (uint64, error) {
	if *cur >= len(row) {
		return 0, fmt.Errorf("%w: reference needs more slots than row provides", errs.ErrSlotCountMismatch)
	}

	v := row[*cur]
	*cur++

	return v, nil
}
