package components

import "math"

// Position represents an entity's world position.
type Position struct {
	X, Y float32
}

// Velocity represents an entity's velocity.
type Velocity struct {
	X, Y float32
}

// Speed returns the velocity magnitude.
func (v Velocity) Speed() float32 {
	return float32(math.Sqrt(float64(v.X*v.X + v.Y*v.Y)))
}

// Wrap maps p onto the toroidal world [0,w) x [0,h).
func Wrap(p Position, w, h float32) Position {
	return Position{X: wrap(p.X, w), Y: wrap(p.Y, h)}
}

func wrap(v, size float32) float32 {
	if v >= 0 && v < size {
		return v
	}
	v = float32(math.Mod(float64(v), float64(size)))
	if v < 0 {
		v += size
	}
	if v >= size {
		v = 0
	}
	return v
}

// ToroidalDelta returns the shortest path delta from (x1,y1) to (x2,y2).
func ToroidalDelta(x1, y1, x2, y2, w, h float32) (dx, dy float32) {
	dx = x2 - x1
	dy = y2 - y1

	if dx > w/2 {
		dx -= w
	} else if dx < -w/2 {
		dx += w
	}
	if dy > h/2 {
		dy -= h
	} else if dy < -h/2 {
		dy += h
	}

	return dx, dy
}
