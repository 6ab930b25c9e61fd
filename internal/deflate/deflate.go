// Package deflate implements an RFC 1951 DEFLATE decoder: stored, fixed
// Huffman, and dynamic Huffman blocks, decoding into an arena-backed output
// buffer.
package deflate

import (
	"fmt"

	"github.com/elliotnunn/unzigo/internal/arena"
	"github.com/elliotnunn/unzigo/internal/bitreader"
	"github.com/elliotnunn/unzigo/internal/huffman"
	"github.com/elliotnunn/unzigo/internal/zerr"
)

const (
	btypeStored  = 0
	btypeFixed   = 1
	btypeDynamic = 2
)

// Decode inflates a complete DEFLATE stream from r, writing the decompressed
// bytes into out. out must already be usable (e.g. freshly created with
// arena.NewByteBuilder); Decode only appends to it.
func Decode(r *bitreader.Reader, out *arena.ByteBuilder) error {
	for {
		final, err := r.ReadBits(1)
		if err != nil {
			return err
		}
		btype, err := r.ReadBits(2)
		if err != nil {
			return err
		}

		switch btype {
		case btypeStored:
			if err := decodeStored(r, out); err != nil {
				return err
			}
		case btypeFixed:
			lit, err := huffman.New(fixedLiteralLengths())
			if err != nil {
				return err
			}
			dist, err := huffman.New(fixedDistLengths())
			if err != nil {
				return err
			}
			if err := decodeHuffmanBlock(r, lit, dist, out); err != nil {
				return err
			}
		case btypeDynamic:
			lit, dist, err := readDynamicTables(r)
			if err != nil {
				return err
			}
			if err := decodeHuffmanBlock(r, lit, dist, out); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: reserved BTYPE 3", zerr.ErrInvalidBlock)
		}

		if final == 1 {
			return nil
		}
	}
}

// decodeStored handles BTYPE=00: LEN/NLEN followed by LEN literal bytes,
// after discarding any partial byte left by the block header.
func decodeStored(r *bitreader.Reader, out *arena.ByteBuilder) error {
	r.AlignToByte()
	length, err := r.ReadU16LE()
	if err != nil {
		return err
	}
	nlength, err := r.ReadU16LE()
	if err != nil {
		return err
	}
	if length^0xFFFF != uint16(nlength) {
		return fmt.Errorf("%w: stored block LEN/NLEN mismatch", zerr.ErrInvalidBlock)
	}
	if length == 0 {
		return nil
	}
	if err := out.Grow(int(length)); err != nil {
		return err
	}
	buf := make([]byte, length)
	if err := r.ReadBytes(buf); err != nil {
		return err
	}
	_, err = out.Write(buf)
	return err
}

// decodeHuffmanBlock decodes the literal/length/distance symbol stream
// common to both fixed and dynamic Huffman blocks.
func decodeHuffmanBlock(r *bitreader.Reader, lit, dist *huffman.Decoder, out *arena.ByteBuilder) error {
	for {
		sym, err := lit.Decode(r)
		if err != nil {
			return err
		}

		switch {
		case sym < 256:
			if err := out.WriteByte(byte(sym)); err != nil {
				return err
			}
		case sym == 256:
			return nil
		default:
			lengthIdx := sym - 257
			if lengthIdx >= len(lengthBase) {
				return fmt.Errorf("%w: length symbol %d out of range", zerr.ErrInvalidHuffmanCode, sym)
			}
			extra, err := r.ReadBits(lengthExtraBits[lengthIdx])
			if err != nil {
				return err
			}
			length := lengthBase[lengthIdx] + int(extra)

			if dist == nil {
				return fmt.Errorf("%w: back-reference with no distance code present", zerr.ErrInvalidDistance)
			}
			distSym, err := dist.Decode(r)
			if err != nil {
				return err
			}
			if distSym >= len(distBase) {
				return fmt.Errorf("%w: distance symbol %d out of range", zerr.ErrInvalidDistance, distSym)
			}
			distExtra, err := r.ReadBits(distExtraBits[distSym])
			if err != nil {
				return err
			}
			distance := distBase[distSym] + int(distExtra)

			if err := copyBackReference(out, length, distance); err != nil {
				return err
			}
		}
	}
}

// copyBackReference copies length bytes from distance bytes behind the
// current output position, one byte at a time so that a distance shorter
// than length correctly repeats the overlapping tail (e.g. distance=1
// produces a run of the same byte).
func copyBackReference(out *arena.ByteBuilder, length, distance int) error {
	if distance <= 0 || distance > out.Len() {
		return fmt.Errorf("%w: back-reference distance %d exceeds %d bytes of output", zerr.ErrInvalidDistance, distance, out.Len())
	}
	for i := 0; i < length; i++ {
		b := out.Bytes()[out.Len()-distance]
		if err := out.WriteByte(b); err != nil {
			return err
		}
	}
	return nil
}
