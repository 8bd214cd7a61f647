package embeddings

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatLiteral(t *testing.T) {
	t.Run("bracketed comma separated", func(t *testing.T) {
		lit, err := FormatLiteral([]float32{0.1, -0.25, 3})
		require.NoError(t, err)
		assert.Equal(t, "[0.1,-0.25,3]", lit)
	})

	t.Run("empty vector rejected", func(t *testing.T) {
		_, err := FormatLiteral(nil)
		assert.ErrorIs(t, err, ErrEmptyVector)
	})

	t.Run("NaN rejected", func(t *testing.T) {
		_, err := FormatLiteral([]float32{0.1, float32(math.NaN())})
		assert.ErrorIs(t, err, ErrNonFiniteComponent)
	})

	t.Run("Inf rejected", func(t *testing.T) {
		_, err := FormatLiteral([]float32{float32(math.Inf(-1))})
		assert.ErrorIs(t, err, ErrNonFiniteComponent)
	})
}

func TestParseLiteral(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []float32
		wantErr error
	}{
		{name: "simple", input: "[1,2,3]", want: []float32{1, 2, 3}},
		{name: "spaces tolerated", input: " [0.5, -1.5] ", want: []float32{0.5, -1.5}},
		{name: "exponent", input: "[1e-07,2]", want: []float32{1e-07, 2}},
		{name: "missing brackets", input: "1,2,3", wantErr: ErrMalformedLiteral},
		{name: "missing closing bracket", input: "[1,2", wantErr: ErrMalformedLiteral},
		{name: "empty brackets", input: "[]", wantErr: ErrEmptyVector},
		{name: "not a number", input: "[1,abc]", wantErr: ErrMalformedLiteral},
		{name: "empty string", input: "", wantErr: ErrMalformedLiteral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLiteral(tt.input)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLiteralRoundTrip(t *testing.T) {
	const dims = 1536

	rng := rand.New(rand.NewPCG(42, 1536))

	vec := make([]float32, dims)
	for i := range vec {
		vec[i] = rng.Float32()*2 - 1
	}

	NormalizeL2(vec)

	lit, err := FormatLiteral(vec)
	require.NoError(t, err)

	got, err := ParseLiteral(lit)
	require.NoError(t, err)
	require.Len(t, got, dims)

	for i := range vec {
		assert.InDelta(t, vec[i], got[i], 1e-6, "component %d", i)
	}
}
