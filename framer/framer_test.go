package framer

import (
	"bytes"
	"testing"
	"time"

	"github.com/markbenvenuto/ftdc/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestWriteReadNext_MetadataRoundTrip(t *testing.T) {
	inner, err := bson.Marshal(bson.D{{Key: "host", Value: "db0"}, {Key: "port", Value: int32(27017)}})
	require.NoError(t, err)

	ts := time.UnixMilli(1700000000123)
	env := NewMetadataEnvelope(inner, ts)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, env))

	got, err := ReadNext(&buf)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, Metadata, got.Kind)
	assert.Equal(t, []byte(inner), []byte(got.Doc))
	assert.WithinDuration(t, ts, got.ID, time.Millisecond)
}

func TestWriteReadNext_MetricsRoundTrip(t *testing.T) {
	chunkBytes := []byte("compressed chunk bytes")
	ts := time.UnixMilli(1700000001000)
	env := NewMetricsEnvelope(chunkBytes, ts)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, env))

	got, err := ReadNext(&buf)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, Metrics, got.Kind)
	assert.Equal(t, chunkBytes, got.Data)
}

func TestReadNext_Type2IsTreatedAsMetadata(t *testing.T) {
	inner, err := bson.Marshal(bson.D{{Key: "x", Value: int32(1)}})
	require.NoError(t, err)

	out := buildRawEnvelope(t, inner, 2)

	got, err := ReadNext(bytes.NewReader(out))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, Metadata, got.Kind)
}

func TestReadNext_CleanEOF(t *testing.T) {
	got, err := ReadNext(bytes.NewReader(nil))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestReadNext_TruncatedFrame(t *testing.T) {
	inner, err := bson.Marshal(bson.D{{Key: "x", Value: int32(1)}})
	require.NoError(t, err)
	env := NewMetadataEnvelope(inner, time.Now())

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, env))
	truncated := buf.Bytes()[:buf.Len()-2]

	_, err = ReadNext(bytes.NewReader(truncated))
	require.ErrorIs(t, err, errs.ErrBadEnvelope)
}

func TestReadNext_BadLengthPrefix(t *testing.T) {
	_, err := ReadNext(bytes.NewReader([]byte{0x01, 0x00, 0x00, 0x00}))
	require.ErrorIs(t, err, errs.ErrBadEnvelope)
}

func TestMultipleEnvelopes_IdempotentStream(t *testing.T) {
	inner1, err := bson.Marshal(bson.D{{Key: "n", Value: int32(1)}})
	require.NoError(t, err)
	inner2, err := bson.Marshal(bson.D{{Key: "n", Value: int32(2)}})
	require.NoError(t, err)

	envs := []*Envelope{
		NewMetadataEnvelope(inner1, time.UnixMilli(1)),
		NewMetricsEnvelope([]byte("chunk-a"), time.UnixMilli(2)),
		NewMetadataEnvelope(inner2, time.UnixMilli(3)),
	}

	var buf bytes.Buffer
	for _, e := range envs {
		require.NoError(t, Write(&buf, e))
	}
	original := append([]byte(nil), buf.Bytes()...)

	r := bytes.NewReader(original)
	var replay bytes.Buffer
	for {
		e, err := ReadNext(r)
		require.NoError(t, err)
		if e == nil {
			break
		}
		require.NoError(t, Write(&replay, e))
	}

	assert.Equal(t, original, replay.Bytes())
}

// buildRawEnvelope builds a raw envelope with an arbitrary type value, to
// exercise the type=2 passthrough without a public constructor for it.
func buildRawEnvelope(t *testing.T, inner bson.Raw, typeVal int32) []byte {
	t.Helper()

	doc := bson.D{
		{Key: "_id", Value: time.Now()},
		{Key: "type", Value: typeVal},
		{Key: "doc", Value: inner},
	}
	raw, err := bson.Marshal(doc)
	require.NoError(t, err)
	return raw
}
