// Package checksum provides the CRC-32 primitive and the byte-level search
// and comparison helpers the spec calls out as SIMD-eligible. Every function
// here has a scalar definition; a vectorized build is free to replace the
// implementation as long as it is bitwise-identical for every input,
// including the invalid ones.
package checksum

// polynomial is the reflected form of the standard CRC-32 polynomial used by
// GZIP, ZIP, and Ethernet.
const polynomial = 0xEDB88320

var table [256]uint32

func init() {
	for i := range table {
		crc := uint32(i)
		for range 8 {
			if crc&1 != 0 {
				crc = (crc >> 1) ^ polynomial
			} else {
				crc >>= 1
			}
		}
		table[i] = crc
	}
}

// CRC32 computes the finalized CRC-32 of data in one call.
func CRC32(data []byte) uint32 {
	return Finalize(UpdateCRC32(InitialCRC32, data))
}

// InitialCRC32 is the unfinalized running state to start a streaming
// computation from.
const InitialCRC32 uint32 = 0xFFFFFFFF

// UpdateCRC32 folds data into an unfinalized running state and returns the
// new unfinalized state. The caller must not call Finalize until the entire
// input has been folded in, and must not mix a finalized value back in as
// if it were unfinalized — doing so silently produces garbage.
func UpdateCRC32(state uint32, data []byte) uint32 {
	for _, b := range data {
		state = table[byte(state)^b] ^ (state >> 8)
	}
	return state
}

// Finalize converts an unfinalized running state into the final CRC-32
// value.
func Finalize(state uint32) uint32 {
	return state ^ 0xFFFFFFFF
}
