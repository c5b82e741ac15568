// Package systems provides the per-tick rules that act on organisms and food:
// spatial indexing, feeding and predation, mate selection, disease spread and
// the multicellular transition.
package systems

import (
	"math"

	"github.com/pthm-cable/ecosim/components"
)

// Neighbor holds a nearby entry with precomputed spatial data.
type Neighbor[K comparable] struct {
	Key    K
	DX, DY float32 // Toroidal delta from query origin
	DistSq float32
}

// Dist returns the distance to the neighbor.
func (n Neighbor[K]) Dist() float32 {
	return float32(math.Sqrt(float64(n.DistSq)))
}

type entry[K comparable] struct {
	key  K
	x, y float32
}

// SpatialHash buckets keyed points into a toroidal grid so radius queries
// only visit nearby cells. It is rebuilt from scratch every tick.
type SpatialHash[K comparable] struct {
	cellSize float32
	cols     int
	rows     int
	width    float32
	height   float32
	cells    [][]entry[K]

	colMark []bool
	rowMark []bool
	colBuf  []int
	rowBuf  []int
}

// NewSpatialHash creates a hash covering a width x height toroidal world.
func NewSpatialHash[K comparable](width, height, cellSize float32) *SpatialHash[K] {
	cols := int(math.Ceil(float64(width / cellSize)))
	rows := int(math.Ceil(float64(height / cellSize)))
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}

	cells := make([][]entry[K], cols*rows)
	for i := range cells {
		cells[i] = make([]entry[K], 0, 8)
	}

	return &SpatialHash[K]{
		cellSize: cellSize,
		cols:     cols,
		rows:     rows,
		width:    width,
		height:   height,
		cells:    cells,
		colMark:  make([]bool, cols),
		rowMark:  make([]bool, rows),
	}
}

// Clear removes all entries from the hash.
func (g *SpatialHash[K]) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

// Insert adds key at the given position. Positions outside the world are
// wrapped first.
func (g *SpatialHash[K]) Insert(key K, x, y float32) {
	p := components.Wrap(components.Position{X: x, Y: y}, g.width, g.height)
	idx := g.cellIndex(p.X, p.Y)
	g.cells[idx] = append(g.cells[idx], entry[K]{key: key, x: p.X, y: p.Y})
}

// Len returns the number of entries in the hash.
func (g *SpatialHash[K]) Len() int {
	n := 0
	for _, c := range g.cells {
		n += len(c)
	}
	return n
}

// Query returns every entry within radius of (x, y), measured with toroidal
// distance. The result is never nil.
func (g *SpatialHash[K]) Query(x, y, radius float32) []Neighbor[K] {
	return g.QueryInto(make([]Neighbor[K], 0, 16), x, y, radius)
}

// QueryInto appends every entry within radius of (x, y) to dst and returns
// the extended slice. Reuse dst across calls to avoid allocations.
func (g *SpatialHash[K]) QueryInto(dst []Neighbor[K], x, y, radius float32) []Neighbor[K] {
	if dst == nil {
		dst = []Neighbor[K]{}
	}
	if radius < 0 {
		return dst
	}
	p := components.Wrap(components.Position{X: x, Y: y}, g.width, g.height)
	radiusSq := radius * radius

	g.colBuf = g.spanCells(g.colBuf[:0], g.colMark, p.X, radius, g.width, g.cols)
	g.rowBuf = g.spanCells(g.rowBuf[:0], g.rowMark, p.Y, radius, g.height, g.rows)

	for _, row := range g.rowBuf {
		for _, col := range g.colBuf {
			for _, e := range g.cells[row*g.cols+col] {
				dx, dy := components.ToroidalDelta(p.X, p.Y, e.x, e.y, g.width, g.height)
				distSq := dx*dx + dy*dy
				if distSq <= radiusSq {
					dst = append(dst, Neighbor[K]{Key: e.key, DX: dx, DY: dy, DistSq: distSq})
				}
			}
		}
	}

	return dst
}

// spanCells collects the distinct cell indices along one axis overlapped by
// [v-radius, v+radius] on a ring of the given size. Each index appears once
// even when the span wraps onto itself.
func (g *SpatialHash[K]) spanCells(dst []int, mark []bool, v, radius, size float32, n int) []int {
	if 2*radius >= size {
		for i := 0; i < n; i++ {
			dst = append(dst, i)
		}
		return dst
	}

	add := func(lo, hi float32) {
		first := g.axisCell(lo, n)
		last := g.axisCell(hi, n)
		for i := first; i <= last; i++ {
			if !mark[i] {
				mark[i] = true
				dst = append(dst, i)
			}
		}
	}

	lo, hi := v-radius, v+radius
	switch {
	case lo < 0:
		add(lo+size, size)
		add(0, hi)
	case hi >= size:
		add(lo, size)
		add(0, hi-size)
	default:
		add(lo, hi)
	}

	for _, i := range dst {
		mark[i] = false
	}
	return dst
}

func (g *SpatialHash[K]) axisCell(v float32, n int) int {
	c := int(v / g.cellSize)
	if c < 0 {
		return 0
	}
	if c >= n {
		return n - 1
	}
	return c
}

// cellIndex returns the flat index for a wrapped world position.
func (g *SpatialHash[K]) cellIndex(x, y float32) int {
	return g.axisCell(y, g.rows)*g.cols + g.axisCell(x, g.cols)
}
