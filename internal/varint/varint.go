// Package varint provides the unsigned LEB128 base-128 varint codec used by
// the chunk payload's run-length-encoded delta stream.
//
// It is a thin, typed wrapper over encoding/binary's AppendUvarint/Uvarint,
// the standard library primitive that already implements this exact format.
package varint

import "encoding/binary"

// MaxLen is the maximum number of bytes a single uint64 varint can occupy.
const MaxLen = binary.MaxVarintLen64

// Append encodes value as an unsigned LEB128 varint and appends it to buf,
// returning the extended slice.
func Append(buf []byte, value uint64) []byte {
	return binary.AppendUvarint(buf, value)
}

// Read decodes a single unsigned LEB128 varint from the start of buf.
//
// It returns the decoded value and the number of bytes consumed. A return of
// n <= 0 indicates buf was too short (n == 0) or the varint overflowed 64 bits
// (n < 0), mirroring binary.Uvarint's contract.
func Read(buf []byte) (uint64, int) {
	return binary.Uvarint(buf)
}
