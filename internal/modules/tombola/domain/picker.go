package domain

import "math/rand/v2"

// Picker selects an index into a roster of size n. It exists as an interface
// so tests can substitute a deterministic sequence for the random draw.
type Picker interface {
	Pick(n int) int
}

// UniformPicker draws uniformly from the securely seeded top-level
// math/rand/v2 generator.
type UniformPicker struct{}

func (UniformPicker) Pick(n int) int {
	return rand.IntN(n)
}
