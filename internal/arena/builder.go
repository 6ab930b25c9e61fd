package arena

// ByteBuilder is an append-only byte buffer whose storage is pushed from an
// Arena. Like the arena itself it never frees piecemeal: growing doubles
// capacity by pushing a new, larger allocation and copying the old content
// forward, leaving the superseded allocation as garbage until the enclosing
// Scratch (or Clear/Release) reclaims the whole region.
type ByteBuilder struct {
	a   *Arena
	buf []byte
}

// NewByteBuilder creates a builder with initial capacity hint bytes already
// reserved from a.
func NewByteBuilder(a *Arena, hint int) (*ByteBuilder, error) {
	if hint < 64 {
		hint = 64
	}
	b, err := a.Push(hint, 1)
	if err != nil {
		return nil, err
	}
	return &ByteBuilder{a: a, buf: b[:0]}, nil
}

// Grow ensures room for n more bytes, reallocating from the arena if needed.
func (b *ByteBuilder) Grow(n int) error {
	if len(b.buf)+n <= cap(b.buf) {
		return nil
	}
	newCap := cap(b.buf) * 2
	if want := len(b.buf) + n; newCap < want {
		newCap = want
	}
	nb, err := b.a.Push(newCap, 1)
	if err != nil {
		return err
	}
	copy(nb, b.buf)
	b.buf = nb[:len(b.buf)]
	return nil
}

// WriteByte appends a single byte, satisfying io.ByteWriter.
func (b *ByteBuilder) WriteByte(c byte) error {
	if err := b.Grow(1); err != nil {
		return err
	}
	b.buf = append(b.buf, c)
	return nil
}

// Write appends p, satisfying io.Writer.
func (b *ByteBuilder) Write(p []byte) (int, error) {
	if err := b.Grow(len(p)); err != nil {
		return 0, err
	}
	b.buf = append(b.buf, p...)
	return len(p), nil
}

// Len returns the number of bytes written so far.
func (b *ByteBuilder) Len() int { return len(b.buf) }

// Bytes returns the current contents. The slice is only valid until the next
// Grow (i.e. the next Write/WriteByte that exceeds capacity).
func (b *ByteBuilder) Bytes() []byte { return b.buf }
