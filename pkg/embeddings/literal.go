package embeddings

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/pgvector/pgvector-go"
)

var (
	// ErrEmptyVector is returned when a vector or literal has no components.
	ErrEmptyVector = errors.New("embeddings: vector is empty")
	// ErrNonFiniteComponent is returned for NaN or ±Inf components; pgvector rejects them.
	ErrNonFiniteComponent = errors.New("embeddings: vector component is not finite")
	// ErrMalformedLiteral is returned when a literal is not of the form [a,b,...].
	ErrMalformedLiteral = errors.New("embeddings: malformed vector literal")
)

// FormatLiteral serializes vec as a pgvector text literal ("[0.1,0.2,0.3]") suitable for a
// $n::vector query parameter.
func FormatLiteral(vec []float32) (string, error) {
	if err := Validate(vec); err != nil {
		return "", err
	}

	return pgvector.NewVector(vec).String(), nil
}

// ParseLiteral parses a pgvector text literal back into a float32 slice.
func ParseLiteral(literal string) ([]float32, error) {
	s := strings.TrimSpace(literal)
	if len(s) < 2 || s[0] != '[' || s[len(s)-1] != ']' {
		return nil, fmt.Errorf("%w: %q", ErrMalformedLiteral, truncate(literal))
	}

	if strings.TrimSpace(s[1:len(s)-1]) == "" {
		return nil, ErrEmptyVector
	}

	var v pgvector.Vector
	if err := v.Parse(strings.ReplaceAll(s, " ", "")); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedLiteral, err)
	}

	out := v.Slice()
	if err := Validate(out); err != nil {
		return nil, err
	}

	return out, nil
}

// Validate reports whether vec can be stored: non-empty and every component finite.
func Validate(vec []float32) error {
	if len(vec) == 0 {
		return ErrEmptyVector
	}

	for i, f := range vec {
		if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
			return fmt.Errorf("%w: index %d", ErrNonFiniteComponent, i)
		}
	}

	return nil
}

func truncate(s string) string {
	const maxLen = 32
	if len(s) <= maxLen {
		return s
	}

	return s[:maxLen] + "..."
}
