package chunk

// Matrix is a metrics_count x sample_count column-major matrix of numeric
// slots: all samples of slot 0, then all samples of slot 1, and so on. Index
// m*sample_count+s addresses slot m, sample s.
//
// The reference row itself is never stored in Matrix; Matrix only ever holds
// non-reference samples.
type Matrix struct {
	MetricsCount int
	SampleCount  int
	Data         []uint64
}

func newMatrix(metricsCount, sampleCount int) Matrix {
	return Matrix{
		MetricsCount: metricsCount,
		SampleCount:  sampleCount,
		Data:         make([]uint64, metricsCount*sampleCount),
	}
}

// At returns the value at slot m, sample s.
func (mx Matrix) At(m, s int) uint64 {
	return mx.Data[m*mx.SampleCount+s]
}

// Column returns a fresh copy of the metrics_count-length slot vector for
// sample s, i.e. the s-th non-reference sample in the chunk.
func (mx Matrix) Column(s int) []uint64 {
	col := make([]uint64, mx.MetricsCount)
	for m := 0; m < mx.MetricsCount; m++ {
		col[m] = mx.Data[m*mx.SampleCount+s]
	}

	return col
}

// deltaEncode computes the column-major delta matrix from rows (one row per
// non-reference sample, ordered oldest-first) against referenceRow.
// Subtraction is u64 wrapping, which Go's unsigned arithmetic already
// performs on overflow/underflow.
func deltaEncode(rows [][]uint64, referenceRow []uint64) Matrix {
	sampleCount := len(rows)
	metricsCount := len(referenceRow)
	mx := newMatrix(metricsCount, sampleCount)

	for m := 0; m < metricsCount; m++ {
		prev := referenceRow[m]
		for s := 0; s < sampleCount; s++ {
			cur := rows[s][m]
			mx.Data[m*sampleCount+s] = cur - prev
			prev = cur
		}
	}

	return mx
}

// deltaDecode inflates a column-major delta matrix in place against
// referenceRow. Addition is u64 wrapping.
func deltaDecode(mx Matrix, referenceRow []uint64) {
	for m := 0; m < mx.MetricsCount; m++ {
		prev := referenceRow[m]
		for s := 0; s < mx.SampleCount; s++ {
			idx := m*mx.SampleCount + s
			mx.Data[idx] += prev
			prev = mx.Data[idx]
		}
	}
}
