package util

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseIntDefault(t *testing.T) {
	require.Equal(t, 20, ParseIntDefault("", 20))
	require.Equal(t, 3, ParseIntDefault("3", 20))
	require.Equal(t, 20, ParseIntDefault("abc", 20))
}

func TestCalculate(t *testing.T) {
	cases := []struct {
		name       string
		page, size int
		offset     int
		limit      int
	}{
		{"defaults", 0, 0, 0, DefaultPageSize},
		{"first page", 1, 10, 0, 10},
		{"third page", 3, 10, 20, 10},
		{"negative page", -5, 10, 0, 10},
		{"negative size", 2, -1, DefaultPageSize, DefaultPageSize},
		{"size at cap", 1, MaxPageSize, 0, MaxPageSize},
		{"size over cap", 1, MaxPageSize + 1, 0, DefaultPageSize},
		{"huge size", 1, 1 << 30, 0, DefaultPageSize},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			offset, limit := Calculate(tc.page, tc.size)
			require.Equal(t, tc.offset, offset)
			require.Equal(t, tc.limit, limit)
		})
	}
}
