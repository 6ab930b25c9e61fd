package deflate

// lengthBase and lengthExtraBits give, for length code symbols 257-285
// (indexed here 0-28), the base length and number of extra bits to add per
// RFC 1951 section 3.2.5.
var lengthBase = [29]int{
	3, 4, 5, 6, 7, 8, 9, 10, 11, 13,
	15, 17, 19, 23, 27, 31, 35, 43, 51, 59,
	67, 83, 99, 115, 131, 163, 195, 227, 258,
}

var lengthExtraBits = [29]uint{
	0, 0, 0, 0, 0, 0, 0, 0, 1, 1,
	1, 1, 2, 2, 2, 2, 3, 3, 3, 3,
	4, 4, 4, 4, 5, 5, 5, 5, 0,
}

// distBase and distExtraBits give, for distance code symbols 0-29, the base
// distance and number of extra bits per RFC 1951 section 3.2.5.
var distBase = [30]int{
	1, 2, 3, 4, 5, 7, 9, 13, 17, 25,
	33, 49, 65, 97, 129, 193, 257, 385, 513, 769,
	1025, 1537, 2049, 3073, 4097, 6145, 8193, 12289, 16385, 24577,
}

var distExtraBits = [30]uint{
	0, 0, 0, 0, 1, 1, 2, 2, 3, 3,
	4, 4, 5, 5, 6, 6, 7, 7, 8, 8,
	9, 9, 10, 10, 11, 11, 12, 12, 13, 13,
}

// codeLengthOrder is the order in which the 19 code-length code lengths
// themselves are transmitted, per RFC 1951 section 3.2.7.
var codeLengthOrder = [19]int{
	16, 17, 18, 0, 8, 7, 9, 6, 10, 5,
	11, 4, 12, 3, 13, 2, 14, 1, 15,
}

// fixedLiteralLengths is the literal/length code length vector implied by
// RFC 1951 section 3.2.6 for BTYPE=01 blocks.
func fixedLiteralLengths() []int {
	l := make([]int, 288)
	for i := 0; i < 144; i++ {
		l[i] = 8
	}
	for i := 144; i < 256; i++ {
		l[i] = 9
	}
	for i := 256; i < 280; i++ {
		l[i] = 7
	}
	for i := 280; i < 288; i++ {
		l[i] = 8
	}
	return l
}

// fixedDistLengths is the distance code length vector implied by RFC 1951
// section 3.2.6 for BTYPE=01 blocks: all 30 codes get 5 bits.
func fixedDistLengths() []int {
	l := make([]int, 30)
	for i := range l {
		l[i] = 5
	}
	return l
}
