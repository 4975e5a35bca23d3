package tail

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScanBackward(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name      string
		block     string
		found     int
		want      int
		stop      int
		nextFound int
	}{
		{"stops on the delimiter exceeding want", "a\nb\nc\n", 0, 1, 3, 2},
		{"carries count from newer blocks", "a\nb\n", 2, 2, 3, 3},
		{"reaches block start", "a\nb\n", 0, 5, -1, 2},
		{"no delimiters", "abc", 1, 1, -1, 1},
		{"empty block", "", 0, 0, -1, 0},
		{"delimiter at block start", "\nabc", 0, 0, 0, 1},
		{"want zero stops on last byte", "abc\n", 0, 0, 3, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			stop, found := scanBackward([]byte(tc.block), tc.found, tc.want)
			assert.Equal(t, tc.stop, stop)
			assert.Equal(t, tc.nextFound, found)
		})
	}
}
