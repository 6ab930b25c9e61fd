package checksum

import "testing"

func TestCRC32OfEmptyIsZero(t *testing.T) {
	if got := CRC32(nil); got != 0 {
		t.Fatalf("CRC32(nil) = %#x, want 0", got)
	}
}

func TestCRC32OfHundredZeroBytes(t *testing.T) {
	data := make([]byte, 100)
	if got, want := CRC32(data), uint32(0x9988C6CA); got != want {
		t.Fatalf("CRC32(100 zero bytes) = %#x, want %#x", got, want)
	}
}

func TestCRC32StreamingMatchesOneShot(t *testing.T) {
	data := []byte("The quick brown fox jumps over the lazy dog")
	want := CRC32(data)

	state := InitialCRC32
	state = UpdateCRC32(state, data[:10])
	state = UpdateCRC32(state, data[10:])
	if got := Finalize(state); got != want {
		t.Fatalf("streamed CRC32 = %#x, want %#x", got, want)
	}
}

func TestStringCompare(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"a", "b", -1},
		{"b", "a", 1},
		{"abc", "abc", 0},
		{"ab", "abc", -1},
		{"abc", "ab", 1},
		{"", "", 0},
	}
	for _, c := range cases {
		if got := StringCompare([]byte(c.a), []byte(c.b)); got != c.want {
			t.Fatalf("StringCompare(%q, %q) = %d, want %d", c.a, c.b, got, c.want)
		}
	}
}

func TestMemSearchFindsFirstMatch(t *testing.T) {
	haystack := []byte("abXYabXYab")
	if got := MemSearch(haystack, []byte("ab")); got != 0 {
		t.Fatalf("MemSearch first = %d, want 0", got)
	}
}

func TestMemSearchNoMatch(t *testing.T) {
	if got := MemSearch([]byte("hello"), []byte("zz")); got != -1 {
		t.Fatalf("MemSearch = %d, want -1", got)
	}
}

func TestMemSearchNeedleLongerThanHaystack(t *testing.T) {
	if got := MemSearch([]byte("hi"), []byte("hello")); got != -1 {
		t.Fatalf("MemSearch = %d, want -1", got)
	}
}
