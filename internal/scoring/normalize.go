package scoring

import "math"

// Normalize rescales x into [0, 1] by min-max. A constant input maps to all
// ones; the epsilon keeps the divisor finite when the spread is tiny.
func Normalize(x []float32) []float32 {
	out := make([]float32, len(x))
	if len(x) == 0 {
		return out
	}

	lo, hi := x[0], x[0]
	for _, v := range x[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}

	if lo == hi {
		for i := range out {
			out[i] = 1
		}
		return out
	}

	span := float64(hi-lo) + 1e-8
	for i, v := range x {
		out[i] = float32(float64(v-lo) / span)
	}
	return out
}

// Cosine returns the cosine similarity between a and b, accumulating in
// float64. Returns 0 when the lengths differ or either vector has zero norm.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
