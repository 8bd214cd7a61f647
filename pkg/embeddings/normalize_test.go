package embeddings

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func magnitude(v []float32) float64 {
	var sum float64
	for _, f := range v {
		sum += float64(f) * float64(f)
	}

	return math.Sqrt(sum)
}

func TestNormalizeL2(t *testing.T) {
	tests := []struct {
		name string
		in   []float32
		want []float32
	}{
		{name: "unit vector unchanged", in: []float32{0, 1, 0}, want: []float32{0, 1, 0}},
		{name: "3-4-5 triangle", in: []float32{3, 4}, want: []float32{0.6, 0.8}},
		{name: "negative components", in: []float32{-6, 8}, want: []float32{-0.6, 0.8}},
		{name: "zero vector left alone", in: []float32{0, 0, 0}, want: []float32{0, 0, 0}},
		{name: "empty", in: []float32{}, want: []float32{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			NormalizeL2(tt.in)
			assert.InDeltaSlice(t, tt.want, tt.in, 1e-6)
		})
	}
}

func TestNormalizeL2_unitLength(t *testing.T) {
	vec := []float32{1, 1, 1, 1, 1, 1, 1, 1}
	NormalizeL2(vec)
	assert.InDelta(t, 1.0, magnitude(vec), 1e-6)
}
