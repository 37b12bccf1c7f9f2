package dfe

import "encoding/binary"

// ElementSize is the number of bytes an element occupies in LMem.
const ElementSize = 4

// BytesOf returns the number of bytes taken by n elements.
func BytesOf(n int) uint64 {
	return uint64(n) * ElementSize
}

// Encode converts elements into their LMem byte representation.
func Encode(data []int32) []byte {
	buf := make([]byte, len(data)*ElementSize)
	for i, v := range data {
		binary.LittleEndian.PutUint32(buf[i*ElementSize:], uint32(v))
	}

	return buf
}

// Decode converts LMem bytes into elements. Trailing bytes that do not form a
// whole element are ignored.
func Decode(buf []byte) []int32 {
	data := make([]int32, len(buf)/ElementSize)
	DecodeInto(data, buf)

	return data
}

// DecodeInto fills dst from buf and returns the number of elements decoded.
func DecodeInto(dst []int32, buf []byte) int {
	n := len(buf) / ElementSize
	if n > len(dst) {
		n = len(dst)
	}

	for i := 0; i < n; i++ {
		dst[i] = int32(binary.LittleEndian.Uint32(buf[i*ElementSize:]))
	}

	return n
}
