// Package pick provides seedable random selection helpers.
package pick

import "math/rand"

// Choice pairs a candidate value with its selection weight.
type Choice[T any] struct {
	Value  T
	Weight int
}

// Weighted selects one value with probability proportional to its weight.
// Zero and negative weights are never selected. The first choice is returned
// when every weight is non-positive.
func Weighted[T any](rnd *rand.Rand, choices []Choice[T]) T {
	var zero T
	if len(choices) == 0 {
		return zero
	}
	total := 0
	for _, c := range choices {
		if c.Weight > 0 {
			total += c.Weight
		}
	}
	if total <= 0 {
		return choices[0].Value
	}
	target := rnd.Intn(total)
	acc := 0
	for _, c := range choices {
		if c.Weight <= 0 {
			continue
		}
		acc += c.Weight
		if target < acc {
			return c.Value
		}
	}
	return choices[len(choices)-1].Value
}

// UniformInt returns a uniform integer in [min, max].
func UniformInt(rnd *rand.Rand, min, max int) int {
	if max <= min {
		return min
	}
	return min + rnd.Intn(max-min+1)
}

// Shuffle returns a shuffled copy of the slice.
func Shuffle[T any](rnd *rand.Rand, items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	rnd.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}

// Sample returns up to n distinct elements chosen without replacement.
func Sample[T any](rnd *rand.Rand, items []T, n int) []T {
	shuffled := Shuffle(rnd, items)
	if n > len(shuffled) {
		n = len(shuffled)
	}
	if n < 0 {
		n = 0
	}
	return shuffled[:n]
}
