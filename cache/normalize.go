package cache

import (
	"strconv"
	"strings"
	"unicode/utf16"
)

// NormalizeQuery turns free-form query text into a deterministic cache
// key: trim outer whitespace, lowercase, then a multiply-by-31 rolling
// hash over the UTF-16 code units folded into a signed 32-bit integer,
// absolute value, base 36.
//
// Queries differing only in case or leading/trailing whitespace map to
// the same key. That is intentional: they should share a cache entry.
// The empty string and whitespace-only strings normalize to "0".
// Collisions between distinct texts are accepted without a secondary
// comparison.
func NormalizeQuery(query string) string {
	normalized := strings.ToLower(strings.TrimSpace(query))

	var h int32
	for _, unit := range utf16.Encode([]rune(normalized)) {
		h = (h << 5) - h + int32(unit)
	}

	// Widen before negating so math.MinInt32 stays representable.
	v := int64(h)
	if v < 0 {
		v = -v
	}
	return strconv.FormatInt(v, 36)
}
