package huffman

import (
	"errors"
	"testing"

	"github.com/elliotnunn/unzigo/internal/bitreader"
	"github.com/elliotnunn/unzigo/internal/zerr"
)

func fixedLiteralLengths() []int {
	lengths := make([]int, 288)
	for i := 0; i < 144; i++ {
		lengths[i] = 8
	}
	for i := 144; i < 256; i++ {
		lengths[i] = 9
	}
	for i := 256; i < 280; i++ {
		lengths[i] = 7
	}
	for i := 280; i < 288; i++ {
		lengths[i] = 8
	}
	return lengths
}

func TestRejectsOverlongCode(t *testing.T) {
	if _, err := New([]int{16}); !errors.Is(err, zerr.ErrInvalidHuffmanCode) {
		t.Fatalf("want ErrInvalidHuffmanCode, got %v", err)
	}
}

func TestRejectsEmptyCodeSet(t *testing.T) {
	if _, err := New([]int{0, 0, 0}); !errors.Is(err, zerr.ErrInvalidHuffmanCode) {
		t.Fatalf("want ErrInvalidHuffmanCode, got %v", err)
	}
}

func TestRejectsTooManySymbols(t *testing.T) {
	lengths := make([]int, MaxSymbols+1)
	lengths[0] = 1
	if _, err := New(lengths); !errors.Is(err, zerr.ErrInvalidHuffmanCode) {
		t.Fatalf("want ErrInvalidHuffmanCode, got %v", err)
	}
}

func TestFixedHuffmanRoundTrip(t *testing.T) {
	dec, err := New(fixedLiteralLengths())
	if err != nil {
		t.Fatal(err)
	}

	// Symbol 0 has length 8 and, per RFC 1951's own worked example, the
	// canonical code 00110000. Transmitted bit-by-bit (MSB first) that is
	// 0,0,1,1,0,0,0,0, which packed LSB-first into a byte is 0x0C.
	r := bitreader.New([]byte{0x0C})
	sym, err := dec.Decode(r)
	if err != nil {
		t.Fatal(err)
	}
	if sym != 0 {
		t.Fatalf("decoded symbol %d, want 0", sym)
	}
}

func TestDegenerateSingleSymbolTree(t *testing.T) {
	// A single non-zero length-1 symbol is a legal (if wasteful) degenerate
	// tree per RFC 1951. The canonical assignment gives it code 0, so a 0 bit
	// decodes to it; a 1 bit matches no code.
	lengths := make([]int, 3)
	lengths[1] = 1
	dec, err := New(lengths)
	if err != nil {
		t.Fatal(err)
	}
	r := bitreader.New([]byte{0x00})
	sym, err := dec.Decode(r)
	if err != nil {
		t.Fatal(err)
	}
	if sym != 1 {
		t.Fatalf("decoded symbol %d, want 1", sym)
	}
}
