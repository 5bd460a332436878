package fee

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name       string
		gross      int64
		percent    float64
		wantFee    int64
		wantPayout int64
	}{
		{"standard commission", 1000, 12.5, 125, 875},
		{"rounds half up", 101, 12.5, 13, 88}, // 12.625 -> 13
		{"zero percent", 1000, 0, 0, 1000},
		{"full percent", 1000, 100, 1000, 0},
		{"zero gross", 0, 12.5, 0, 0},
		{"one cent", 1, 12.5, 0, 1},               // 0.125 -> 0
		{"exact half rounds up", 20, 12.5, 3, 17}, // 2.5 -> 3
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fee, payout := Split(tt.gross, tt.percent)
			assert.Equal(t, tt.wantFee, fee)
			assert.Equal(t, tt.wantPayout, payout)
		})
	}
}

func TestSplitPreservesGross(t *testing.T) {
	rates := []float64{0, 5, 12.5, 33.3, 50, 99.9, 100}
	for gross := int64(0); gross <= 2500; gross += 7 {
		for _, rate := range rates {
			fee, payout := Split(gross, rate)
			assert.Equal(t, gross, fee+payout, "gross=%d rate=%v", gross, rate)
			assert.GreaterOrEqual(t, fee, int64(0))
			assert.GreaterOrEqual(t, payout, int64(0))
		}
	}
}
