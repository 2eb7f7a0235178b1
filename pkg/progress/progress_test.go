package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPercent(t *testing.T) {
	tests := []struct {
		name      string
		completed []bool
		want      float64
	}{
		{"none completed", []bool{false, false, false, false, false, false, false, false}, 0},
		{"three of eight", []bool{true, true, true, false, false, false, false, false}, 37.5},
		{"one of eight", []bool{true, false, false, false, false, false, false, false}, 12.5},
		{"five of eight", []bool{true, true, true, true, true, false, false, false}, 62.5},
		{"all completed", []bool{true, true, true, true, true, true, true, true}, 100},
		{"empty", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Percent(tt.completed), 1e-9)
		})
	}
}

func TestPercentOrderIndependent(t *testing.T) {
	a := Percent([]bool{true, false, true, false, true, false, false, false})
	b := Percent([]bool{false, false, false, true, true, true, false, false})
	assert.Equal(t, a, b)
}
