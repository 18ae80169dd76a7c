package chunk

import (
	"iter"

	"github.com/markbenvenuto/ftdc/internal/pool"
	"go.mongodb.org/mongo-driver/bson"
)

// MaterializedItem is one element of IterMaterialized's sequence: either the
// shared reference document, or a DocFill-reconstructed sample document.
type MaterializedItem struct {
	IsReference bool
	Doc         bson.Raw
}

// IterMaterialized yields c.Matrix.SampleCount+1 MaterializedItems lazily:
// the reference document first, then one Fill-reconstructed document per
// matrix column, in ascending column order. The sequence is single-pass; c
// is shared read-only for its lifetime.
func IterMaterialized(c *DecodedChunk) iter.Seq[MaterializedItem] {
	return func(yield func(MaterializedItem) bool) {
		if !yield(MaterializedItem{IsReference: true, Doc: c.Reference}) {
			return
		}

		row, cleanup := pool.GetUint64Slice(c.Matrix.MetricsCount)
		defer cleanup()
		for s := 0; s < c.Matrix.SampleCount; s++ {
			for m := 0; m < c.Matrix.MetricsCount; m++ {
				row[m] = c.Matrix.At(m, s)
			}

			doc, err := Fill(c.Reference, row)
			if err != nil {
				return
			}
			if !yield(MaterializedItem{Doc: doc}) {
				return
			}
		}
	}
}

// RawItem is one element of IterRaw's sequence: either the shared reference
// document, or a copy of one matrix column.
type RawItem struct {
	IsReference bool
	Doc         bson.Raw
	Row         []uint64
}

// IterRaw yields c.Matrix.SampleCount+1 RawItems lazily: the reference
// document first, then a fresh copy of each matrix column as a
// metrics_count-length []uint64, in ascending column order.
func IterRaw(c *DecodedChunk) iter.Seq[RawItem] {
	return func(yield func(RawItem) bool) {
		if !yield(RawItem{IsReference: true, Doc: c.Reference}) {
			return
		}

		for s := 0; s < c.Matrix.SampleCount; s++ {
			if !yield(RawItem{Row: c.Matrix.Column(s)}) {
				return
			}
		}
	}
}
