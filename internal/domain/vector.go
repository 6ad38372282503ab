package domain

import "math"

// Vector is a sparse vector. Indices are strictly increasing and Values
// holds the weight for the index at the same position.
type Vector struct {
	Indices []int
	Values  []float64
}

// IsZero reports whether the vector has no non-zero weight.
func (v Vector) IsZero() bool {
	for _, x := range v.Values {
		if x != 0 {
			return false
		}
	}
	return true
}

// Norm returns the Euclidean length of v.
func (v Vector) Norm() float64 {
	sum := 0.0
	for _, x := range v.Values {
		sum += x * x
	}
	return math.Sqrt(sum)
}

// Dot computes the inner product of two sparse vectors by merging their
// index lists.
func (v Vector) Dot(o Vector) float64 {
	sum := 0.0
	i, j := 0, 0
	for i < len(v.Indices) && j < len(o.Indices) {
		switch {
		case v.Indices[i] == o.Indices[j]:
			sum += v.Values[i] * o.Values[j]
			i++
			j++
		case v.Indices[i] < o.Indices[j]:
			i++
		default:
			j++
		}
	}
	return sum
}
