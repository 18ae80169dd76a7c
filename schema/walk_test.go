package schema

import (
	"testing"
	"time"

	"github.com/markbenvenuto/ftdc/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func marshal(t *testing.T, d bson.D) bson.Raw {
	t.Helper()
	raw, err := bson.Marshal(d)
	require.NoError(t, err)
	return raw
}

func TestWalk_ScalarTypes(t *testing.T) {
	doc := marshal(t, bson.D{
		{Key: "d", Value: 3.5},
		{Key: "i32", Value: int32(7)},
		{Key: "i64", Value: int64(9)},
		{Key: "b", Value: true},
		{Key: "dt", Value: primitive.NewDateTimeFromTime(time.UnixMilli(1234))},
		{Key: "ts", Value: primitive.Timestamp{T: 1000, I: 7}},
		{Key: "s", Value: "ignored"},
	})

	slots, err := Walk(doc)
	require.NoError(t, err)

	// d, i32, i64, b, dt, ts.T, ts.I = 7 slots; the string contributes none.
	require.Len(t, slots, 7)
	assert.Equal(t, uint64(3), slots[0]) // float64(3.5) truncated to u64
	assert.Equal(t, uint64(7), slots[1])
	assert.Equal(t, uint64(9), slots[2])
	assert.Equal(t, uint64(1), slots[3])
	assert.Equal(t, uint64(1234), slots[4])
	assert.Equal(t, uint64(1000), slots[5])
	assert.Equal(t, uint64(7), slots[6])
}

func TestWalk_BoolFalse(t *testing.T) {
	doc := marshal(t, bson.D{{Key: "b", Value: false}})
	slots, err := Walk(doc)
	require.NoError(t, err)
	require.Equal(t, []uint64{0}, slots)
}

func TestWalk_NestedDocAndArray(t *testing.T) {
	doc := marshal(t, bson.D{
		{Key: "nested", Value: bson.D{{Key: "x", Value: int32(1)}, {Key: "y", Value: int32(2)}}},
		{Key: "arr", Value: bson.A{int32(3), int32(4), int32(5)}},
	})

	slots, err := Walk(doc)
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 2, 3, 4, 5}, slots)
}

func TestWalk_NonNumericTypesContributeNothing(t *testing.T) {
	doc := marshal(t, bson.D{
		{Key: "s", Value: "str"},
		{Key: "bin", Value: primitive.Binary{Subtype: 0x00, Data: []byte("x")}},
		{Key: "null", Value: nil},
		{Key: "oid", Value: primitive.NewObjectID()},
	})

	slots, err := Walk(doc)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestWalk_Decimal128IsFatal(t *testing.T) {
	dec, err := primitive.ParseDecimal128("1.5")
	require.NoError(t, err)

	doc := marshal(t, bson.D{{Key: "dec", Value: dec}})

	_, err = Walk(doc)
	require.ErrorIs(t, err, errs.ErrUnsupportedType)
}

func TestWalk_Decimal128NestedInArrayIsFatal(t *testing.T) {
	dec, err := primitive.ParseDecimal128("1.5")
	require.NoError(t, err)

	doc := marshal(t, bson.D{{Key: "arr", Value: bson.A{dec}}})

	_, err = Walk(doc)
	require.ErrorIs(t, err, errs.ErrUnsupportedType)
}

func TestWalkPaths_DottedNamesAndArrayIndices(t *testing.T) {
	doc := marshal(t, bson.D{
		{Key: "a", Value: int32(1)},
		{Key: "nested", Value: bson.D{{Key: "b", Value: int32(2)}}},
		{Key: "arr", Value: bson.A{int32(3), int32(4)}},
		{Key: "ts", Value: primitive.Timestamp{T: 1, I: 2}},
	})

	paths, err := WalkPaths(doc)
	require.NoError(t, err)

	var names []string
	for _, p := range paths {
		names = append(names, p.Path)
	}
	assert.Equal(t, []string{"a", "nested.b", "arr.0", "arr.1", "ts.t", "ts.i"}, names)
	assert.Equal(t, Timestamp, paths[4].Type)
	assert.Equal(t, Timestamp, paths[5].Type)
}

func TestWalkPaths_DuplicateAndDottedFieldNamesNotEscaped(t *testing.T) {
	// A literal dotted field name collides with a nested field of the same
	// shape; neither is escaped.
	doc := marshal(t, bson.D{
		{Key: "a.b", Value: int32(1)},
		{Key: "a", Value: bson.D{{Key: "b", Value: int32(2)}}},
	})

	paths, err := WalkPaths(doc)
	require.NoError(t, err)

	var names []string
	for _, p := range paths {
		names = append(names, p.Path)
	}
	// Both entries collide on the literal string "a.b".
	assert.Equal(t, []string{"a.b", "a.b"}, names)
}

func TestSlotCountMatchesPathCount(t *testing.T) {
	doc := marshal(t, bson.D{
		{Key: "a", Value: int32(1)},
		{Key: "ts", Value: primitive.Timestamp{T: 1, I: 2}},
		{Key: "d", Value: 2.0},
	})

	slots, err := Walk(doc)
	require.NoError(t, err)
	paths, err := WalkPaths(doc)
	require.NoError(t, err)

	assert.Equal(t, len(slots), len(paths))
}
