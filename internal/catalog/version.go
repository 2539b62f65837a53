package catalog

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// versionSegments is the number of dot-separated segments that take part in
// ordering. Anything past the third segment is ignored.
const versionSegments = 3

// CompareVersions orders two loosely dotted version strings, returning -1, 0
// or 1. Segments are compared left to right and the first conclusive segment
// decides:
//   - both numeric and different: the larger number wins;
//   - only one side numeric: the numeric side is greater;
//   - neither numeric: inconclusive, move on.
//
// A segment that is absent because the string ran out of dots is treated as
// equal to a numeric zero, so "1.0" and "1.0.0" compare equal while "1.2"
// still sorts before "1.2.3".
//
// The ordering is not transitive when numeric and non-numeric segments mix:
// "1.0.0" equals "1" and "1" equals "1.x", yet "1.0.0" is greater than "1.x".
// Sorting a catalog that holds such a mix leaves their relative order
// unspecified.
func CompareVersions(a, b string) int {
	pa := strings.Split(a, ".")
	pb := strings.Split(b, ".")
	for i := 0; i < versionSegments; i++ {
		na, presentA := segment(pa, i)
		nb, presentB := segment(pb, i)
		if !presentA && !math.IsNaN(nb) && nb == 0 {
			continue
		}
		if !presentB && !math.IsNaN(na) && na == 0 {
			continue
		}
		aNaN, bNaN := math.IsNaN(na), math.IsNaN(nb)
		switch {
		case !aNaN && !bNaN:
			if na > nb {
				return 1
			}
			if nb > na {
				return -1
			}
		case !aNaN && bNaN:
			return 1
		case aNaN && !bNaN:
			return -1
		}
	}
	return 0
}

// segment returns the numeric value of parts[i] and whether the segment was
// present at all. Missing and non-numeric segments yield NaN.
func segment(parts []string, i int) (float64, bool) {
	if i >= len(parts) {
		return math.NaN(), false
	}
	return parseNumber(parts[i]), true
}

// parseNumber converts a segment the way a loosely typed numeric cast would:
// surrounding whitespace is ignored, an empty segment is zero, decimal,
// exponent and 0x/0o/0b forms are accepted and everything else is NaN.
func parseNumber(raw string) float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0
	}
	switch s {
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	if len(s) > 2 && s[0] == '0' {
		base := 0
		switch s[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			n, err := strconv.ParseUint(s[2:], base, 64)
			if err != nil || strings.ContainsRune(s, '_') {
				return math.NaN()
			}
			return float64(n)
		}
	}
	for _, r := range s {
		if !strings.ContainsRune("0123456789.eE+-", r) {
			return math.NaN()
		}
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return n
		}
		return math.NaN()
	}
	return n
}
