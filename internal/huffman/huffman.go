// Package huffman builds canonical Huffman decoders from RFC 1951 code
// length vectors and decodes symbols bit by bit from a bitreader.Reader.
package huffman

import (
	"fmt"

	"github.com/elliotnunn/unzigo/internal/bitreader"
	"github.com/elliotnunn/unzigo/internal/zerr"
)

// MaxSymbols is the largest length vector this package accepts (the DEFLATE
// literal/length alphabet).
const MaxSymbols = 288

// MaxBits is the longest code length RFC 1951 permits.
const MaxBits = 15

// Decoder decodes symbols encoded with a canonical Huffman code built from a
// length vector, per RFC 1951 section 3.2.2.
type Decoder struct {
	// byCodeLen[length] maps an MSB-first accumulated code of that length
	// to its symbol. Index 0 is unused (zero-length symbols are absent).
	byCodeLen [MaxBits + 1]map[uint32]int
	minLen    int
}

// New constructs a canonical Huffman decoder from a code length vector.
// lengths must have at most MaxSymbols entries, each at most MaxBits; at
// least one entry must be non-zero.
func New(lengths []int) (*Decoder, error) {
	if len(lengths) > MaxSymbols {
		return nil, fmt.Errorf("%w: %d symbols exceeds maximum of %d", zerr.ErrInvalidHuffmanCode, len(lengths), MaxSymbols)
	}

	var blCount [MaxBits + 1]int
	anyNonZero := false
	minLen := 0
	for _, l := range lengths {
		if l == 0 {
			continue
		}
		if l < 0 || l > MaxBits {
			return nil, fmt.Errorf("%w: code length %d out of range", zerr.ErrInvalidHuffmanCode, l)
		}
		blCount[l]++
		anyNonZero = true
		if minLen == 0 || l < minLen {
			minLen = l
		}
	}
	if !anyNonZero {
		return nil, fmt.Errorf("%w: no symbol has a non-zero code length", zerr.ErrInvalidHuffmanCode)
	}

	var nextCode [MaxBits + 1]int
	code := 0
	for l := 1; l <= MaxBits; l++ {
		code = (code + blCount[l-1]) << 1
		nextCode[l] = code
	}

	d := &Decoder{minLen: minLen}
	for sym, l := range lengths {
		if l == 0 {
			continue
		}
		c := nextCode[l]
		nextCode[l]++
		if d.byCodeLen[l] == nil {
			d.byCodeLen[l] = make(map[uint32]int, blCount[l])
		}
		d.byCodeLen[l][uint32(c)] = sym
	}
	return d, nil
}

// Decode reads bits one at a time from r, accumulating them MSB-first
// (each new bit shifts the accumulator left and ORs the bit in), and
// returns the first symbol whose stored (length, code) matches.
func (d *Decoder) Decode(r *bitreader.Reader) (int, error) {
	var acc uint32
	for n := 1; n <= MaxBits; n++ {
		bit, err := r.ReadBit()
		if err != nil {
			return 0, err
		}
		acc = (acc << 1) | bit
		if table := d.byCodeLen[n]; table != nil {
			if sym, ok := table[acc]; ok {
				return sym, nil
			}
		}
	}
	return 0, fmt.Errorf("%w: no match after %d bits", zerr.ErrInvalidHuffmanCode, MaxBits)
}
