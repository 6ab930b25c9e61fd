package checksum

// StringCompare compares a and b byte-wise lexicographically, a shorter
// prefix sorting first, and returns -1, 0 or +1 like bytes.Compare(a, b).
// It exists as a named entry point so a vectorized build can replace the
// body without touching call sites.
func StringCompare(a, b []byte) int {
	n := min(len(a), len(b))
	for i := range n {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}

// MemSearch returns the index of the first occurrence of needle in haystack,
// or -1 if needle does not occur. Callers that need the rightmost valid
// match (such as EOCD discovery) scan forward over successive results
// themselves rather than have this primitive redefine its own contract.
func MemSearch(haystack, needle []byte) int {
	if len(needle) == 0 || len(needle) > len(haystack) {
		return -1
	}
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if matchesAt(haystack, needle, i) {
			return i
		}
	}
	return -1
}

func matchesAt(haystack, needle []byte, at int) bool {
	for j, b := range needle {
		if haystack[at+j] != b {
			return false
		}
	}
	return true
}
