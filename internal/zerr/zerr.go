// Package zerr holds the flat error taxonomy shared by every layer of the
// extractor. Call sites wrap one of these sentinels with fmt.Errorf("%w: ...")
// so callers can classify failures with errors.Is while still getting a
// useful message.
package zerr

import "errors"

var (
	// ErrInvalidMagic is raised for a missing/wrong GZIP or ZIP signature,
	// or an out-of-bounds structural read.
	ErrInvalidMagic = errors.New("invalid magic")

	// ErrUnsupportedMethod is raised for a compression method other than
	// DEFLATE in GZIP, or not in {0,8} in ZIP.
	ErrUnsupportedMethod = errors.New("unsupported compression method")

	// ErrInvalidHeader is raised for a malformed GZIP header or
	// flag-indicated section.
	ErrInvalidHeader = errors.New("invalid header")

	// ErrInvalidChecksum is raised when the computed CRC-32 does not
	// match the stored CRC-32.
	ErrInvalidChecksum = errors.New("checksum mismatch")

	// ErrInvalidSize is raised on a GZIP ISIZE mismatch.
	ErrInvalidSize = errors.New("size mismatch")

	// ErrInvalidBlock is raised for a DEFLATE reserved block type, a
	// stored block with LEN != ^NLEN, or a dynamic run-length code with
	// no previous length to repeat.
	ErrInvalidBlock = errors.New("invalid deflate block")

	// ErrInvalidHuffmanCode is raised for a code length over 15, an empty
	// code set, or 15 bits consumed without a match.
	ErrInvalidHuffmanCode = errors.New("invalid huffman code")

	// ErrInvalidDistance is raised for a distance symbol over 29, or a
	// distance that exceeds the current output length.
	ErrInvalidDistance = errors.New("invalid back-reference distance")

	// ErrUnexpectedEOF is raised when a bit/byte reader runs past the end
	// of its input.
	ErrUnexpectedEOF = errors.New("unexpected end of input")

	// ErrOutOfMemory is raised when the arena cannot reserve or commit
	// address space.
	ErrOutOfMemory = errors.New("out of memory")
)
