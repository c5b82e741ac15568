package systems

// Clamp functions for common value ranges

// clampFloat clamps a float32 value between min and max.
func clampFloat(v, minVal, maxVal float32) float32 {
	if v < minVal {
		return minVal
	}
	if v > maxVal {
		return maxVal
	}
	return v
}

// clamp01 clamps a float32 value to the [0, 1] range.
func clamp01(v float32) float32 {
	return clampFloat(v, 0, 1)
}

// relativeAdvantage maps a pair of magnitudes to [-1,1].
func relativeAdvantage(a, b float32) float32 {
	m := max(a, b)
	if m <= 0 {
		return 0
	}
	return (a - b) / m
}
