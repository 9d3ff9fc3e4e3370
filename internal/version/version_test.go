package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in                      string
		major, minor, fix, pre int
	}{
		{"0.3.0", 0, 3, 0, 0},
		{"1.12.4-pr7", 1, 12, 4, 7},
		{"2.0", 2, 0, 0, 0},
		{"", 0, 0, 0, 0},
	}
	for _, test := range tests {
		t.Run(
			test.in, func(t *testing.T) {
				major, minor, fix, pre := parse(test.in)
				assert.Equal(t, []int{test.major, test.minor, test.fix, test.pre}, []int{major, minor, fix, pre})
			},
		)
	}
}

func TestString(t *testing.T) {
	assert.Equal(t, "v"+VERSION, String())
}
