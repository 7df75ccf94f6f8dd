package ai

import (
	"errors"
	"fmt"
)

var (
	// ErrDimensionMismatch is returned when an embedding does not have the
	// configured number of components.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrInvalidConfig is returned when an embedding configuration is incomplete.
	ErrInvalidConfig = errors.New("invalid ai config")
)

// CheckDimension returns ErrDimensionMismatch unless every vector has want components.
func CheckDimension(want int, vectors ...[]float32) error {
	for i, vec := range vectors {
		if len(vec) != want {
			return fmt.Errorf("%w: vector %d has %d components, expected %d",
				ErrDimensionMismatch, i, len(vec), want)
		}
	}
	return nil
}
