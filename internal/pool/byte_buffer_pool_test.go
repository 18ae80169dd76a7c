package pool

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewByteBuffer(t *testing.T) {
	bb := NewByteBuffer(1024)

	require.NotNil(t, bb)
	assert.Equal(t, 0, len(bb.B))
	assert.Equal(t, 1024, cap(bb.B))
}

func TestByteBuffer_BytesAndReset(t *testing.T) {
	bb := NewByteBuffer(ChunkBufferDefaultSize)
	bb.B = append(bb.B, []byte("hello")...)

	assert.Equal(t, []byte("hello"), bb.Bytes())
	assert.Equal(t, 5, bb.Len())

	capBefore := bb.Cap()
	bb.Reset()
	assert.Equal(t, 0, bb.Len())
	assert.Equal(t, capBefore, bb.Cap())
}

func TestByteBuffer_SliceAndSetLength(t *testing.T) {
	bb := NewByteBuffer(16)
	bb.ExtendOrGrow(8)
	copy(bb.B, []byte("abcdefgh"))

	assert.Equal(t, []byte("abcd"), bb.Slice(0, 4))

	bb.SetLength(4)
	assert.Equal(t, 4, bb.Len())

	assert.Panics(t, func() { bb.SetLength(-1) })
	assert.Panics(t, func() { bb.Slice(0, bb.Cap()+1) })
}

func TestByteBuffer_ExtendAndGrow(t *testing.T) {
	bb := NewByteBuffer(4)

	ok := bb.Extend(4)
	require.True(t, ok)
	assert.Equal(t, 4, bb.Len())

	ok = bb.Extend(1)
	assert.False(t, ok, "extending past capacity should fail without growing")

	bb.ExtendOrGrow(1024)
	assert.Equal(t, 4+1024, bb.Len())
	assert.GreaterOrEqual(t, bb.Cap(), bb.Len())
}

func TestByteBuffer_Grow(t *testing.T) {
	bb := NewByteBuffer(ChunkBufferDefaultSize)
	originalCap := bb.Cap()

	bb.Grow(0)
	assert.Equal(t, originalCap, bb.Cap(), "Grow(0) should not reallocate")

	bb.ExtendOrGrow(ChunkBufferDefaultSize)
	bb.Grow(ChunkBufferDefaultSize * 2)
	assert.GreaterOrEqual(t, bb.Cap()-bb.Len(), ChunkBufferDefaultSize*2)
}

func TestByteBuffer_WriteAndWriteTo(t *testing.T) {
	bb := NewByteBuffer(0)
	n, err := bb.Write([]byte("chunk"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	var out bytes.Buffer
	written, err := bb.WriteTo(&out)
	require.NoError(t, err)
	assert.Equal(t, int64(5), written)
	assert.Equal(t, "chunk", out.String())
}

func TestByteBufferPool_GetPut(t *testing.T) {
	p := NewByteBufferPool(ChunkBufferDefaultSize, ChunkBufferMaxThreshold)

	bb := p.Get()
	require.NotNil(t, bb)
	assert.Equal(t, 0, bb.Len())

	bb.B = append(bb.B, []byte("reused")...)
	p.Put(bb)

	bb2 := p.Get()
	assert.Equal(t, 0, bb2.Len(), "pooled buffer must come back reset")
}

func TestByteBufferPool_PutNilIsNoop(t *testing.T) {
	p := NewByteBufferPool(ChunkBufferDefaultSize, ChunkBufferMaxThreshold)
	assert.NotPanics(t, func() { p.Put(nil) })
}

func TestByteBufferPool_DiscardsOversizedBuffers(t *testing.T) {
	p := NewByteBufferPool(16, 64)

	bb := p.Get()
	bb.Grow(1024)
	oversizedCap := bb.Cap()
	require.Greater(t, oversizedCap, 64)

	p.Put(bb) // should be discarded, not retained

	bb2 := p.Get()
	assert.LessOrEqual(t, bb2.Cap(), oversizedCap, "a fresh buffer should not inherit the discarded capacity")
}

func TestGetPutChunkBuffer(t *testing.T) {
	bb := GetChunkBuffer()
	require.NotNil(t, bb)
	assert.Equal(t, 0, bb.Len())
	assert.GreaterOrEqual(t, bb.Cap(), ChunkBufferDefaultSize)

	bb.B = append(bb.B, []byte("payload")...)
	PutChunkBuffer(bb)

	bb2 := GetChunkBuffer()
	assert.Equal(t, 0, bb2.Len(), "chunk buffer pool must reset on return")
}
