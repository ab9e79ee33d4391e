package itchio

import (
	"math"
	"strconv"
	"strings"
)

// ParseSizeText converts the size shown next to a download (ex. "12 MB") into
// bytes. Both units are decimal and the source is already rounded, so the
// result is only ever an approximation. Sizes that do not fit in a uint64 are
// treated as malformed.
func ParseSizeText(text string) (uint64, bool) {
	value, unit, found := strings.Cut(text, " ")
	if !found {
		return 0, false
	}
	n, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, false
	}

	var multiplier uint64
	switch unit {
	case "MB":
		multiplier = 1_000_000
	case "kB":
		multiplier = 1_000
	default:
		return 0, false
	}

	if n > math.MaxUint64/multiplier {
		return 0, false
	}
	return n * multiplier, true
}
