package genome

import "math/rand"

// Range is an inclusive float bound.
type Range struct {
	Min, Max float32
}

// Clamp forces v into [Min, Max].
func (r Range) Clamp(v float32) float32 {
	if v < r.Min {
		return r.Min
	}
	if v > r.Max {
		return r.Max
	}
	return v
}

// Contains reports whether v lies within the range.
func (r Range) Contains(v float32) bool {
	return v >= r.Min && v <= r.Max
}

func (r Range) Width() float32 {
	return r.Max - r.Min
}

// Sample draws uniformly from the range.
func (r Range) Sample(rng *rand.Rand) float32 {
	return r.Min + rng.Float32()*r.Width()
}

// IntRange is an inclusive integer bound.
type IntRange struct {
	Min, Max int
}

func (r IntRange) Clamp(v int) int {
	if v < r.Min {
		return r.Min
	}
	if v > r.Max {
		return r.Max
	}
	return v
}

func (r IntRange) Contains(v int) bool {
	return v >= r.Min && v <= r.Max
}

// Sample draws uniformly from [Min, Max].
func (r IntRange) Sample(rng *rand.Rand) int {
	return r.Min + rng.Intn(r.Max-r.Min+1)
}
