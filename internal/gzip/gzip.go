// Package gzip parses the RFC 1952 GZIP envelope (a 10-byte fixed header,
// optional extensible fields, a DEFLATE member, and an 8-byte trailer) and
// verifies the trailer against the decompressed content.
package gzip

import (
	"encoding/binary"
	"fmt"

	"github.com/elliotnunn/unzigo/internal/arena"
	"github.com/elliotnunn/unzigo/internal/bitreader"
	"github.com/elliotnunn/unzigo/internal/checksum"
	"github.com/elliotnunn/unzigo/internal/deflate"
	"github.com/elliotnunn/unzigo/internal/zerr"
)

const (
	magic1   = 0x1F
	magic2   = 0x8B
	methodID = 8 // the only compression method GZIP defines

	flagFHCRC    = 1 << 1
	flagFEXTRA   = 1 << 2
	flagFNAME    = 1 << 3
	flagFCOMMENT = 1 << 4
)

// Decode parses a complete GZIP member from data, decompressing its DEFLATE
// body into out and verifying the trailing CRC-32 and ISIZE fields against
// the decompressed content. It returns zerr.ErrInvalidChecksum if the CRC
// does not match, and zerr.ErrInvalidSize if ISIZE does not match (a
// mismatch the caller may choose to treat as a soft warning).
func Decode(data []byte, out *arena.ByteBuilder) error {
	if len(data) < 10 {
		return fmt.Errorf("%w: gzip header shorter than 10 bytes", zerr.ErrInvalidHeader)
	}
	if data[0] != magic1 || data[1] != magic2 {
		return fmt.Errorf("%w: bad gzip magic bytes %#x %#x", zerr.ErrInvalidMagic, data[0], data[1])
	}
	if data[2] != methodID {
		return fmt.Errorf("%w: gzip compression method %d", zerr.ErrUnsupportedMethod, data[2])
	}
	flags := data[3]
	pos := 10

	if flags&flagFEXTRA != 0 {
		if pos+2 > len(data) {
			return fmt.Errorf("%w: truncated FEXTRA length", zerr.ErrUnexpectedEOF)
		}
		xlen := int(binary.LittleEndian.Uint16(data[pos:]))
		pos += 2
		if pos+xlen > len(data) {
			return fmt.Errorf("%w: truncated FEXTRA field", zerr.ErrUnexpectedEOF)
		}
		pos += xlen
	}
	if flags&flagFNAME != 0 {
		var err error
		pos, err = skipCString(data, pos)
		if err != nil {
			return err
		}
	}
	if flags&flagFCOMMENT != 0 {
		var err error
		pos, err = skipCString(data, pos)
		if err != nil {
			return err
		}
	}
	if flags&flagFHCRC != 0 {
		if pos+2 > len(data) {
			return fmt.Errorf("%w: truncated FHCRC", zerr.ErrUnexpectedEOF)
		}
		pos += 2
	}

	if pos+8 > len(data) {
		return fmt.Errorf("%w: no room for gzip trailer", zerr.ErrUnexpectedEOF)
	}
	body := data[pos : len(data)-8]
	trailer := data[len(data)-8:]
	wantCRC := binary.LittleEndian.Uint32(trailer[0:4])
	wantSize := binary.LittleEndian.Uint32(trailer[4:8])

	r := bitreader.New(body)
	if err := deflate.Decode(r, out); err != nil {
		return err
	}

	got := out.Bytes()
	if gotCRC := checksum.CRC32(got); gotCRC != wantCRC {
		return fmt.Errorf("%w: gzip CRC32 %#x, header says %#x", zerr.ErrInvalidChecksum, gotCRC, wantCRC)
	}
	if gotSize := uint32(len(got)); gotSize != wantSize {
		return fmt.Errorf("%w: gzip ISIZE %d, decompressed %d bytes", zerr.ErrInvalidSize, wantSize, gotSize)
	}
	return nil
}

func skipCString(data []byte, pos int) (int, error) {
	for i := pos; i < len(data); i++ {
		if data[i] == 0 {
			return i + 1, nil
		}
	}
	return 0, fmt.Errorf("%w: unterminated gzip header string", zerr.ErrUnexpectedEOF)
}
