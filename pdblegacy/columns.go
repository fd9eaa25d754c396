package pdblegacy

import "strconv"

// vS, vC, and vI mirror PDBRecord::vS/vC/vI from the reference
// implementation: column numbers are 1-based against the *original*
// 80-column line, while Record.Value has already been offset to start
// at column 7 (see Record's doc comment). first/last are inclusive.
func vS(value string, first, last int) string {
	return trimBoth(substrLen(value, first-7, last-first+1))
}

// vSRaw is vS without trimming, used where leading/trailing space is
// meaningful (e.g. distinguishing an absent optional field).
func vSRaw(value string, first, last int) string {
	return substrLen(value, first-7, last-first+1)
}

// vSTail is vS(first, end-of-line): used for free-text tails whose
// last column is not fixed.
func vSTail(value string, first int) string {
	return trimBoth(substrFrom(value, first-7))
}

func vC(value string, col int) byte {
	idx := col - 7
	if idx < 0 || idx >= len(value) {
		return ' '
	}
	return value[idx]
}

func vI(value string, first, last int) (int, bool) {
	s := trimBoth(substrLen(value, first-7, last-first+1))
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	return n, err == nil
}

func vF(value string, first, last int) (float64, bool) {
	s := trimBoth(substrLen(value, first-7, last-first+1))
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	return f, err == nil
}

func trimBoth(s string) string {
	i, j := 0, len(s)
	for i < j && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	for j > i && (s[j-1] == ' ' || s[j-1] == '\t') {
		j--
	}
	return s[i:j]
}
