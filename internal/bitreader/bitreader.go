// Package bitreader provides an LSB-first bit reader over a fixed byte
// slice, the primitive both the DEFLATE block dispatcher and the GZIP
// header parser are built on.
package bitreader

import (
	"encoding/binary"
	"fmt"

	"github.com/elliotnunn/unzigo/internal/zerr"
)

// Reader reads bits least-significant-bit-first from a fixed byte slice.
type Reader struct {
	data    []byte
	bytePos int
	bitPos  uint // 0 <= bitPos < 8
}

// New wraps data for bit-level reading starting at its first byte.
func New(data []byte) *Reader {
	return &Reader{data: data}
}

// ReadBit reads a single bit, equivalent to ReadBits(1).
func (r *Reader) ReadBit() (uint32, error) {
	return r.ReadBits(1)
}

// ReadBits reads n bits, 1 <= n <= 32, and returns them right-justified,
// with the first-consumed bit at position 0 of the result.
func (r *Reader) ReadBits(n uint) (uint32, error) {
	if n < 1 || n > 32 {
		panic(fmt.Sprintf("bitreader: ReadBits(%d) out of range", n))
	}
	var v uint32
	for i := uint(0); i < n; i++ {
		if r.bytePos >= len(r.data) {
			return 0, zerr.ErrUnexpectedEOF
		}
		bit := (r.data[r.bytePos] >> r.bitPos) & 1
		v |= uint32(bit) << i
		r.bitPos++
		if r.bitPos == 8 {
			r.bitPos = 0
			r.bytePos++
		}
	}
	return v, nil
}

// AlignToByte discards any partially-consumed byte so the next read starts
// at a byte boundary.
func (r *Reader) AlignToByte() {
	if r.bitPos != 0 {
		r.bitPos = 0
		r.bytePos++
	}
}

// ReadBytes aligns to a byte boundary, then copies len(dst) bytes into dst.
func (r *Reader) ReadBytes(dst []byte) error {
	r.AlignToByte()
	if r.bytePos+len(dst) > len(r.data) {
		return zerr.ErrUnexpectedEOF
	}
	copy(dst, r.data[r.bytePos:])
	r.bytePos += len(dst)
	return nil
}

// ReadU16LE aligns to a byte boundary, then reads a little-endian uint16.
func (r *Reader) ReadU16LE() (uint16, error) {
	var buf [2]byte
	if err := r.ReadBytes(buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(buf[:]), nil
}

// ReadU32LE aligns to a byte boundary, then reads a little-endian uint32.
func (r *Reader) ReadU32LE() (uint32, error) {
	var buf [4]byte
	if err := r.ReadBytes(buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

// BytePos reports the current byte offset (only meaningful once aligned).
func (r *Reader) BytePos() int { return r.bytePos }
