package chunk

import (
	"fmt"

	"github.com/markbenvenuto/ftdc/errs"
	"github.com/markbenvenuto/ftdc/internal/varint"
)

// encodeRLEVarint run-length-encodes zero runs and varint-encodes the result.
// A non-zero value v is emitted as varint(v); a maximal run of k>=1 zeros is
// emitted as varint(0) ‖ varint(k-1), including a trailing run.
func encodeRLEVarint(values []uint64, buf []byte) []byte {
	i := 0
	for i < len(values) {
		if values[i] != 0 {
			buf = varint.Append(buf, values[i])
			i++
			continue
		}

		run := 1
		for i+run < len(values) && values[i+run] == 0 {
			run++
		}
		buf = varint.Append(buf, 0)
		buf = varint.Append(buf, uint64(run-1))
		i += run
	}

	return buf
}

// decodeRLEVarint inverts encodeRLEVarint, decoding exactly count values from
// buf. It returns errs.ErrTruncatedPayload if buf is exhausted before count
// values are produced, and errs.ErrTrailingBytes if bytes remain in buf after
// count values are decoded.
func decodeRLEVarint(buf []byte, count int) ([]uint64, error) {
	out := make([]uint64, 0, count)
	pos := 0

	for len(out) < count {
		v, n := varint.Read(buf[pos:])
		if n <= 0 {
			return nil, fmt.Errorf("%w: value marker", errs.ErrTruncatedPayload)
		}
		pos += n

		if v != 0 {
			out = append(out, v)
			continue
		}

		runLenMinus1, n2 := varint.Read(buf[pos:])
		if n2 <= 0 {
			return nil, fmt.Errorf("%w: zero run length", errs.ErrTruncatedPayload)
		}
		pos += n2

		run := int(runLenMinus1) + 1
		if len(out)+run > count {
			return nil, fmt.Errorf("%w: zero run overruns expected value count", errs.ErrTruncatedPayload)
		}
		for k := 0; k < run; k++ {
			out = append(out, 0)
		}
	}

	if pos != len(buf) {
		return nil, fmt.Errorf("%w: %d bytes remain after decoding %d values", errs.ErrTrailingBytes, len(buf)-pos, count)
	}

	return out, nil
}
