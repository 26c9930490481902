package pagination

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// Defaults used when a page size or page index cannot be coerced.
const (
	DefaultPageSize = 5
	DefaultPage     = 1
)

// Coerce converts v to an int, returning fallback when v is absent.
//
// Absent means nil, zero, NaN, or a value that does not parse as a number.
// Floats are truncated toward zero and infinities saturate to math.MaxInt or
// math.MinInt. Strings are trimmed and parsed as decimal numbers ("3",
// " 2.0 ", "-Infinity") or as unsigned 0x, 0o and 0b literals ("0x2"); a
// leading zero stays decimal, so "010" is 10. "abc" is absent.
// Negative values are returned as-is; callers clamp them.
func Coerce(v any, fallback int) int {
	n, ok := toInt(v)
	if !ok || n == 0 {
		return fallback
	}
	return n
}

// PositiveOr is Coerce that also treats negative values as absent.
func PositiveOr(v any, fallback int) int {
	n := Coerce(v, fallback)
	if n < 1 {
		return fallback
	}
	return n
}

func toInt(v any) (int, bool) {
	switch x := v.(type) {
	case nil:
		return 0, false
	case int:
		return x, true
	case int8:
		return int(x), true
	case int16:
		return int(x), true
	case int32:
		return int(x), true
	case int64:
		return clampInt64(x), true
	case uint:
		return clampUint64(uint64(x)), true
	case uint8:
		return int(x), true
	case uint16:
		return int(x), true
	case uint32:
		return clampUint64(uint64(x)), true
	case uint64:
		return clampUint64(x), true
	case float32:
		return fromFloat(float64(x))
	case float64:
		return fromFloat(x)
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	case string:
		return fromString(x)
	case *int:
		if x == nil {
			return 0, false
		}
		return *x, true
	default:
		return 0, false
	}
}

func fromString(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		// Number("") is 0, which is absent anyway.
		return 0, false
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	if n, ok := fromRadixLiteral(s); ok {
		return n, true
	}
	switch s {
	case "Infinity", "+Infinity":
		return math.MaxInt, true
	case "-Infinity":
		return math.MinInt, true
	}
	if strings.ContainsAny(s, "xXnNiI_") {
		// ParseFloat also takes hex floats, "inf", "nan" and digit separators.
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}
	return fromFloat(f)
}

// fromRadixLiteral parses unsigned 0x, 0o and 0b literals.
func fromRadixLiteral(s string) (int, bool) {
	if len(s) < 3 || s[0] != '0' {
		return 0, false
	}
	var base int
	switch s[1] {
	case 'x', 'X':
		base = 16
	case 'o', 'O':
		base = 8
	case 'b', 'B':
		base = 2
	default:
		return 0, false
	}
	n, err := strconv.ParseUint(s[2:], base, 64)
	switch {
	case err == nil:
		return clampUint64(n), true
	case errors.Is(err, strconv.ErrRange):
		return math.MaxInt, true
	default:
		return 0, false
	}
}

func fromFloat(f float64) (int, bool) {
	if math.IsNaN(f) {
		return 0, false
	}
	switch {
	case f >= math.MaxInt:
		return math.MaxInt, true
	case f <= math.MinInt:
		return math.MinInt, true
	}
	return int(f), true
}

func clampInt64(x int64) int {
	if x > math.MaxInt {
		return math.MaxInt
	}
	if x < math.MinInt {
		return math.MinInt
	}
	return int(x)
}

func clampUint64(x uint64) int {
	if x > math.MaxInt {
		return math.MaxInt
	}
	return int(x)
}
