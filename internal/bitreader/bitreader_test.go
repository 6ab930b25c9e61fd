package bitreader

import (
	"errors"
	"testing"

	"github.com/elliotnunn/unzigo/internal/zerr"
)

func TestReadBitsSequence(t *testing.T) {
	// From the spec's literal scenario: 0xAC 0xF0.
	r := New([]byte{0xAC, 0xF0})

	want := []struct {
		n uint
		v uint32
	}{
		{1, 0},
		{2, 2},
		{3, 5},
		{2, 2},
		{8, 0xF0},
	}
	for i, w := range want {
		got, err := r.ReadBits(w.n)
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if got != w.v {
			t.Fatalf("step %d: ReadBits(%d) = %#x, want %#x", i, w.n, got, w.v)
		}
	}
}

func Test32BitReadStraddlingFourBytes(t *testing.T) {
	r := New([]byte{0x01, 0x02, 0x03, 0x04, 0x05})
	if _, err := r.ReadBits(3); err != nil {
		t.Fatal(err)
	}
	if _, err := r.ReadBits(32); err != nil {
		t.Fatalf("32-bit read straddling bytes should succeed: %v", err)
	}
}

func TestReadPastEndIsUnexpectedEOF(t *testing.T) {
	r := New([]byte{0xFF})
	if _, err := r.ReadBits(8); err != nil {
		t.Fatal(err)
	}
	if _, err := r.ReadBit(); !errors.Is(err, zerr.ErrUnexpectedEOF) {
		t.Fatalf("want ErrUnexpectedEOF, got %v", err)
	}
}

func TestAlignToByte(t *testing.T) {
	r := New([]byte{0xFF, 0x12, 0x34})
	if _, err := r.ReadBits(3); err != nil {
		t.Fatal(err)
	}
	r.AlignToByte()
	v, err := r.ReadU16LE()
	if err != nil {
		t.Fatal(err)
	}
	if v != 0x3412 {
		t.Fatalf("ReadU16LE = %#x, want 0x3412", v)
	}
}

func TestReadBytesAlignsFirst(t *testing.T) {
	r := New([]byte{0x00, 'h', 'i'})
	if _, err := r.ReadBits(1); err != nil {
		t.Fatal(err)
	}
	buf := make([]byte, 2)
	if err := r.ReadBytes(buf); err != nil {
		t.Fatal(err)
	}
	if string(buf) != "hi" {
		t.Fatalf("ReadBytes = %q, want %q", buf, "hi")
	}
}
