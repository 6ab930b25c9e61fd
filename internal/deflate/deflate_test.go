package deflate

import (
	"testing"

	"github.com/elliotnunn/unzigo/internal/arena"
	"github.com/elliotnunn/unzigo/internal/bitreader"
)

func newBuilder(t *testing.T) (*arena.Arena, *arena.ByteBuilder) {
	t.Helper()
	a, err := arena.New(0, 0, "deflate-test")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { a.Release() })
	b, err := arena.NewByteBuilder(a, 64)
	if err != nil {
		t.Fatal(err)
	}
	return a, b
}

func TestFixedBlockHello(t *testing.T) {
	// The DEFLATE payload inside the scenario 1 GZIP stream (stripped of the
	// 10-byte header and 8-byte trailer): a single final fixed-Huffman block
	// encoding "Hello, World!".
	payload := []byte{0xF3, 0x48, 0xCD, 0xC9, 0xC9, 0xD7, 0x51, 0x08, 0xCF, 0x2F, 0xCA, 0x49, 0x51, 0x04, 0x00}

	_, out := newBuilder(t)
	r := bitreader.New(payload)
	if err := Decode(r, out); err != nil {
		t.Fatal(err)
	}
	if got, want := string(out.Bytes()), "Hello, World!"; got != want {
		t.Fatalf("decoded %q, want %q", got, want)
	}
}

func TestStoredBlockRoundTrip(t *testing.T) {
	payload := make([]byte, 100)

	var stream []byte
	stream = append(stream, 0x01) // BFINAL=1, BTYPE=00, rest of byte is padding
	stream = append(stream, byte(len(payload)), byte(len(payload)>>8))
	nlen := uint16(len(payload)) ^ 0xFFFF
	stream = append(stream, byte(nlen), byte(nlen>>8))
	stream = append(stream, payload...)

	_, out := newBuilder(t)
	r := bitreader.New(stream)
	if err := Decode(r, out); err != nil {
		t.Fatal(err)
	}
	if len(out.Bytes()) != 100 {
		t.Fatalf("decoded %d bytes, want 100", len(out.Bytes()))
	}
	for i, b := range out.Bytes() {
		if b != 0 {
			t.Fatalf("byte %d = %#x, want 0", i, b)
		}
	}
}

func TestStoredBlockLenZero(t *testing.T) {
	stream := []byte{0x01, 0x00, 0x00, 0xFF, 0xFF}
	_, out := newBuilder(t)
	r := bitreader.New(stream)
	if err := Decode(r, out); err != nil {
		t.Fatal(err)
	}
	if out.Len() != 0 {
		t.Fatalf("decoded %d bytes, want 0", out.Len())
	}
}

func TestBackReferenceRun(t *testing.T) {
	// Hand-assemble a single fixed-Huffman block: literal 'A' (symbol 65,
	// canonical code 0b01110001, length 8), then a length/distance pair for
	// length=5 distance=1 (length symbol 259, code 0b0000011, length 7;
	// distance symbol 0, code 0b00000, length 5, no extra bits either way),
	// then end-of-block (symbol 256, code 0b0000000, length 7). Canonical
	// codes are per RFC 1951's own fixed-code assignment.
	w := newBitWriter()
	w.writeLSBFirst(1, 1) // BFINAL=1
	w.writeLSBFirst(1, 2) // BTYPE=01 (fixed Huffman)
	w.writeMSBFirst(0b01110001, 8)
	w.writeMSBFirst(0b0000011, 7)
	w.writeMSBFirst(0b00000, 5)
	w.writeMSBFirst(0b0000000, 7)

	_, out := newBuilder(t)
	r := bitreader.New(w.bytes)
	if err := Decode(r, out); err != nil {
		t.Fatal(err)
	}
	if got, want := string(out.Bytes()), "AAAAAA"; got != want {
		t.Fatalf("decoded %q, want %q", got, want)
	}
}

// bitWriter hand-assembles DEFLATE bitstreams for tests. DEFLATE packs
// multi-bit plain values (BTYPE, extra bits, LEN/NLEN) least-significant-bit
// first, but transmits Huffman codes most-significant-bit first; the two
// write methods mirror that split.
type bitWriter struct {
	bytes []byte
	nbits uint
}

func newBitWriter() *bitWriter { return &bitWriter{} }

func (w *bitWriter) writeBit(bit byte) {
	byteIdx := w.nbits / 8
	for int(byteIdx) >= len(w.bytes) {
		w.bytes = append(w.bytes, 0)
	}
	w.bytes[byteIdx] |= bit << (w.nbits % 8)
	w.nbits++
}

func (w *bitWriter) writeLSBFirst(v uint32, n uint) {
	for i := uint(0); i < n; i++ {
		w.writeBit(byte((v >> i) & 1))
	}
}

func (w *bitWriter) writeMSBFirst(code uint32, length uint) {
	for i := length; i > 0; i-- {
		w.writeBit(byte((code >> (i - 1)) & 1))
	}
}
