package embeddings

import "fmt"

// DimensionError reports a vector whose length differs from the configured column size.
type DimensionError struct {
	Got  int
	Want int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("embedding dimension mismatch: got %d, want %d", e.Got, e.Want)
}
