// Package zipfile locates the End-of-Central-Directory record in a ZIP
// archive, walks the central directory, and extracts individual entries
// (STORED or DEFLATE) with CRC-32 validation.
package zipfile

import (
	"encoding/binary"
	"fmt"
	"log/slog"

	"github.com/elliotnunn/unzigo/internal/arena"
	"github.com/elliotnunn/unzigo/internal/bitreader"
	"github.com/elliotnunn/unzigo/internal/checksum"
	"github.com/elliotnunn/unzigo/internal/deflate"
	"github.com/elliotnunn/unzigo/internal/zerr"
)

const (
	eocdSignature    = "PK\x05\x06"
	centralSignature = "PK\x01\x02"
	localSignature   = "PK\x03\x04"

	eocdMinSize   = 22
	maxCommentLen = 65535

	methodStored  = 0
	methodDeflate = 8
)

// Entry is one record from the central directory: its name, where its
// compressed payload lives, and the metadata needed to verify extraction.
// Name is arena-owned bytes, copied out of the archive's raw data by Open.
type Entry struct {
	Name              []byte
	Method            uint16
	CRC32             uint32
	CompressedSize    uint32
	UncompressedSize  uint32
	LocalHeaderOffset uint32
}

// Archive holds the parsed central directory of one ZIP file and a
// reference to its raw bytes for later extraction.
type Archive struct {
	data    []byte
	Entries []Entry
}

// Open locates the EOCD record in data and walks the central directory it
// points to, returning the parsed entry list. Entry names are copied into
// ar so that all parsed metadata, like the decoded payloads Extract later
// produces, lives in arena-owned memory rather than on the Go heap. Open
// does not extract any entry's payload; call Extract for that.
func Open(ar *arena.Arena, data []byte) (*Archive, error) {
	eocdOff, err := findEOCD(data)
	if err != nil {
		return nil, err
	}
	eocd := data[eocdOff:]
	if len(eocd) < eocdMinSize {
		return nil, fmt.Errorf("%w: EOCD record truncated", zerr.ErrInvalidHeader)
	}

	totalEntries := int(binary.LittleEndian.Uint16(eocd[10:]))
	centralDirOffset := int(binary.LittleEndian.Uint32(eocd[16:]))

	if centralDirOffset < 0 || centralDirOffset > len(data) {
		return nil, fmt.Errorf("%w: central directory offset out of range", zerr.ErrInvalidMagic)
	}

	entries := make([]Entry, 0, totalEntries)
	pos := centralDirOffset
	for i := 0; i < totalEntries; i++ {
		if pos+46 > len(data) {
			return nil, fmt.Errorf("%w: central directory entry truncated", zerr.ErrInvalidMagic)
		}
		rec := data[pos:]
		if string(rec[:4]) != centralSignature {
			return nil, fmt.Errorf("%w: bad central directory signature at entry %d", zerr.ErrInvalidMagic, i)
		}
		method := binary.LittleEndian.Uint16(rec[10:])
		crc32 := binary.LittleEndian.Uint32(rec[16:])
		compressedSize := binary.LittleEndian.Uint32(rec[20:])
		uncompressedSize := binary.LittleEndian.Uint32(rec[24:])
		nameLen := int(binary.LittleEndian.Uint16(rec[28:]))
		extraLen := int(binary.LittleEndian.Uint16(rec[30:]))
		commentLen := int(binary.LittleEndian.Uint16(rec[32:]))
		localOffset := binary.LittleEndian.Uint32(rec[42:])

		total := 46 + nameLen + extraLen + commentLen
		if pos+total > len(data) {
			return nil, fmt.Errorf("%w: central directory entry %d exceeds archive bounds", zerr.ErrInvalidMagic, i)
		}
		name, err := ar.PushBytes(rec[46 : 46+nameLen])
		if err != nil {
			return nil, err
		}

		entries = append(entries, Entry{
			Name:              name,
			Method:            method,
			CRC32:             crc32,
			CompressedSize:    compressedSize,
			UncompressedSize:  uncompressedSize,
			LocalHeaderOffset: localOffset,
		})
		pos += total
	}

	return &Archive{data: data, Entries: entries}, nil
}

// findEOCD searches the tail of data for the EOCD signature, preferring the
// rightmost match so that an entry whose content happens to contain the
// signature bytes cannot be mistaken for the real record. It walks forward
// over every match MemSearch turns up, remembering the last one whose
// comment-length field is consistent with the archive's actual size, since
// that is the one genuine EOCD record a well-formed archive can have.
func findEOCD(data []byte) (int, error) {
	if len(data) < eocdMinSize {
		return 0, fmt.Errorf("%w: archive shorter than EOCD record", zerr.ErrInvalidMagic)
	}
	tailStart := max(0, len(data)-eocdMinSize-maxCommentLen)
	tail := data[tailStart:]

	found := false
	var best int
	searchOff := 0
	for searchOff <= len(tail) {
		idx := checksum.MemSearch(tail[searchOff:], []byte(eocdSignature))
		if idx < 0 {
			break
		}
		candidate := tailStart + searchOff + idx
		if candidate+eocdMinSize <= len(data) {
			commentLen := int(binary.LittleEndian.Uint16(data[candidate+20:]))
			if candidate+eocdMinSize+commentLen == len(data) {
				best = candidate
				found = true
			}
		}
		searchOff += idx + 1
	}
	if !found {
		return 0, fmt.Errorf("%w: no end-of-central-directory record found", zerr.ErrInvalidMagic)
	}
	return best, nil
}

// Extract decompresses entry e's payload into out, verifying its CRC-32
// against the central directory's stored value. A size mismatch is logged
// as a warning rather than returned as an error, matching the teacher's
// original extraction behavior.
func (a *Archive) Extract(ar *arena.Arena, e Entry, out *arena.ByteBuilder) error {
	localOff := int(e.LocalHeaderOffset)
	if localOff+30 > len(a.data) {
		return fmt.Errorf("%w: local header for %q out of range", zerr.ErrInvalidMagic, e.Name)
	}
	local := a.data[localOff:]
	if string(local[:4]) != localSignature {
		return fmt.Errorf("%w: bad local file header signature for %q", zerr.ErrInvalidMagic, e.Name)
	}
	nameLen := int(binary.LittleEndian.Uint16(local[26:]))
	extraLen := int(binary.LittleEndian.Uint16(local[28:]))
	payloadOff := localOff + 30 + nameLen + extraLen
	payloadEnd := payloadOff + int(e.CompressedSize)
	if payloadOff < 0 || payloadEnd > len(a.data) {
		return fmt.Errorf("%w: payload for %q out of range", zerr.ErrInvalidMagic, e.Name)
	}
	payload := a.data[payloadOff:payloadEnd]

	switch e.Method {
	case methodStored:
		if _, err := out.Write(payload); err != nil {
			return err
		}
	case methodDeflate:
		if err := decodeDeflateEntry(ar, payload, out); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: compression method %d for %q", zerr.ErrUnsupportedMethod, e.Method, e.Name)
	}

	got := checksum.CRC32(out.Bytes())
	if got != e.CRC32 {
		return fmt.Errorf("%w: %q CRC32 %#x, central directory says %#x", zerr.ErrInvalidChecksum, e.Name, got, e.CRC32)
	}
	if uint32(out.Len()) != e.UncompressedSize {
		slog.Warn("zip entry size mismatch", "name", string(e.Name), "extracted", out.Len(), "declared", e.UncompressedSize)
	}
	return nil
}

// decodeDeflateEntry runs the DEFLATE engine inside a scratch checkpoint so
// the doubling growth of its transient output buffer is reclaimed, then
// copies the finished bytes into a tightly-sized allocation appended to out.
func decodeDeflateEntry(ar *arena.Arena, payload []byte, out *arena.ByteBuilder) error {
	scratch := ar.Scratch()

	scratchOut, err := arena.NewByteBuilder(ar, len(payload)*2)
	if err != nil {
		scratch.End()
		return err
	}
	r := bitreader.New(payload)
	if err := deflate.Decode(r, scratchOut); err != nil {
		scratch.End()
		return err
	}

	decoded := make([]byte, scratchOut.Len())
	copy(decoded, scratchOut.Bytes())
	scratch.End()

	_, err = out.Write(decoded)
	return err
}
