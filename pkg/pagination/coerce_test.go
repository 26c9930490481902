package pagination

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoerce(t *testing.T) {
	three := 3

	tests := []struct {
		name string
		in   any
		want int
	}{
		{name: "nil", in: nil, want: 9},
		{name: "int", in: 4, want: 4},
		{name: "negative int", in: -4, want: -4},
		{name: "zero", in: 0, want: 9},
		{name: "int64", in: int64(12), want: 12},
		{name: "uint8", in: uint8(2), want: 2},
		{name: "float", in: 3.7, want: 3},
		{name: "small float", in: 0.4, want: 9},
		{name: "NaN", in: math.NaN(), want: 9},
		{name: "inf", in: math.Inf(1), want: math.MaxInt},
		{name: "negative inf", in: math.Inf(-1), want: math.MinInt},
		{name: "huge float", in: 1e300, want: math.MaxInt},
		{name: "string", in: "6", want: 6},
		{name: "padded string", in: "  6 ", want: 6},
		{name: "float string", in: "2.0", want: 2},
		{name: "empty string", in: "", want: 9},
		{name: "non-numeric string", in: "abc", want: 9},
		{name: "Infinity string", in: "Infinity", want: math.MaxInt},
		{name: "-Infinity string", in: "-Infinity", want: math.MinInt},
		{name: "lowercase inf string", in: "inf", want: 9},
		{name: "NaN string", in: "NaN", want: 9},
		{name: "overflowing exponent", in: "1e400", want: math.MaxInt},
		{name: "hex string", in: "0x2", want: 2},
		{name: "octal string", in: "0o7", want: 7},
		{name: "binary string", in: "0B11", want: 3},
		{name: "leading zero is decimal", in: "010", want: 10},
		{name: "signed hex", in: "-0x2", want: 9},
		{name: "bare prefix", in: "0x", want: 9},
		{name: "hex float", in: "0x1p2", want: 9},
		{name: "digit separators", in: "1_000", want: 9},
		{name: "true", in: true, want: 1},
		{name: "false", in: false, want: 9},
		{name: "int pointer", in: &three, want: 3},
		{name: "nil int pointer", in: (*int)(nil), want: 9},
		{name: "unsupported", in: []int{1}, want: 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Coerce(tt.in, 9))
		})
	}
}

func TestPositiveOr(t *testing.T) {
	assert.Equal(t, 5, PositiveOr(-1, 5))
	assert.Equal(t, 5, PositiveOr("0", 5))
	assert.Equal(t, 5, PositiveOr("x", 5))
	assert.Equal(t, 20, PositiveOr("20", 5))
	assert.Equal(t, math.MaxInt, PositiveOr(math.Inf(1), 5))
	assert.Equal(t, 5, PositiveOr(math.Inf(-1), 5))
}
