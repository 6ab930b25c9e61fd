package deflate

import (
	"fmt"
	"hash/maphash"

	"github.com/dgryski/go-tinylfu"

	"github.com/elliotnunn/unzigo/internal/bitreader"
	"github.com/elliotnunn/unzigo/internal/huffman"
	"github.com/elliotnunn/unzigo/internal/zerr"
)

// maxCombinedLengths bounds HLIT+257 (<=288) plus HDIST+1 (<=32) code length
// entries, the largest a dynamic block header can transmit.
const maxCombinedLengths = 288 + 32

// lengthKey is a fixed-size, comparable digest of a combined literal+distance
// code length vector, used to key decoderCache. Code lengths are at most 15
// (4 bits), so a byte per entry with zero padding is lossless and comparable.
// hlit records where the literal/length codes end and the distance codes
// begin: two blocks can share an identical zero-padded byte vector while
// splitting it at different points, since huffman.New ignores zero-length
// entries, so the split point must be part of the key.
type lengthKey struct {
	hlit     int
	combined [maxCombinedLengths]byte
}

var (
	cacheSeed = maphash.MakeSeed()

	// decoderCache memoizes constructed literal/distance Huffman decoder
	// pairs across ZIP entries: archives commonly reuse the same dynamic
	// Huffman table for many small entries in a row, and rebuilding the
	// canonical code from scratch every time is wasted work.
	decoderCache = tinylfu.New[lengthKey, *dynamicPair](1024, 10240, lengthKeyHash, tinylfu.OnEvict(func(lengthKey, *dynamicPair) {}))
)

type dynamicPair struct {
	lit  *huffman.Decoder
	dist *huffman.Decoder
}

func lengthKeyHash(k lengthKey) uint64 {
	return maphash.Comparable(cacheSeed, k)
}

// readDynamicTables parses a BTYPE=10 block header (RFC 1951 section 3.2.7):
// HLIT/HDIST/HCLEN counts, the code-length alphabet's own lengths, then the
// literal/length and distance code length vectors via that alphabet's
// run-length encoding.
func readDynamicTables(r *bitreader.Reader) (lit, dist *huffman.Decoder, err error) {
	hlitBits, err := r.ReadBits(5)
	if err != nil {
		return nil, nil, err
	}
	hdistBits, err := r.ReadBits(5)
	if err != nil {
		return nil, nil, err
	}
	hclenBits, err := r.ReadBits(4)
	if err != nil {
		return nil, nil, err
	}
	hlit := int(hlitBits) + 257
	hdist := int(hdistBits) + 1
	hclen := int(hclenBits) + 4

	var clLengths [19]int
	for i := 0; i < hclen; i++ {
		v, err := r.ReadBits(3)
		if err != nil {
			return nil, nil, err
		}
		clLengths[codeLengthOrder[i]] = int(v)
	}
	clDecoder, err := huffman.New(clLengths[:])
	if err != nil {
		return nil, nil, err
	}

	combined := make([]int, hlit+hdist)
	key := lengthKey{hlit: hlit}
	for i := 0; i < len(combined); {
		sym, err := clDecoder.Decode(r)
		if err != nil {
			return nil, nil, err
		}
		switch {
		case sym < 16:
			combined[i] = sym
			i++
		case sym == 16:
			if i == 0 {
				return nil, nil, fmt.Errorf("%w: repeat code with no previous length", zerr.ErrInvalidBlock)
			}
			n, err := r.ReadBits(2)
			if err != nil {
				return nil, nil, err
			}
			repeat := int(n) + 3
			prev := combined[i-1]
			for j := 0; j < repeat && i < len(combined); j++ {
				combined[i] = prev
				i++
			}
		case sym == 17:
			n, err := r.ReadBits(3)
			if err != nil {
				return nil, nil, err
			}
			repeat := int(n) + 3
			for j := 0; j < repeat && i < len(combined); j++ {
				combined[i] = 0
				i++
			}
		case sym == 18:
			n, err := r.ReadBits(7)
			if err != nil {
				return nil, nil, err
			}
			repeat := int(n) + 11
			for j := 0; j < repeat && i < len(combined); j++ {
				combined[i] = 0
				i++
			}
		default:
			return nil, nil, fmt.Errorf("%w: code-length symbol %d out of range", zerr.ErrInvalidHuffmanCode, sym)
		}
	}
	for i, l := range combined {
		if i < maxCombinedLengths {
			key.combined[i] = byte(l)
		}
	}

	if cached, ok := decoderCache.Get(key); ok {
		return cached.lit, cached.dist, nil
	}

	lit, err = huffman.New(combined[:hlit])
	if err != nil {
		return nil, nil, err
	}

	distLengths := combined[hlit:]
	if hdist == 1 && distLengths[0] == 0 {
		// A single zero-length distance code is the well-known degenerate
		// case meaning the block contains no back-references at all.
		dist = nil
	} else {
		dist, err = huffman.New(distLengths)
		if err != nil {
			return nil, nil, err
		}
	}
	decoderCache.Add(key, &dynamicPair{lit: lit, dist: dist})
	return lit, dist, nil
}
