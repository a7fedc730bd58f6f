package domain

import "math"

const (
	MinRating     = 1
	MaxRating     = 5
	DefaultRating = 3
)

// NormalizeRating rounds x to the nearest integer and clamps it to
// [MinRating, MaxRating]. Non-finite input is rejected with ErrInvalidRating.
func NormalizeRating(x float64) (int, error) {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0, ErrInvalidRating
	}
	return clamp(math.Round(x)), nil
}

// ClampRating is NormalizeRating for trusted values: it never fails and maps
// non-finite input to DefaultRating.
func ClampRating(x float64) int {
	r, err := NormalizeRating(x)
	if err != nil {
		return DefaultRating
	}
	return r
}

func clamp(x float64) int {
	if x < MinRating {
		return MinRating
	}
	if x > MaxRating {
		return MaxRating
	}
	return int(x)
}
