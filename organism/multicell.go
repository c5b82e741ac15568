package organism

import "math"

// Multicellular is the trait block an organism gains on its one-way
// transition to a multi-cell body.
type Multicellular struct {
	Cells int
}

// maxEfficiency caps the upkeep discount of a cell cluster.
const maxEfficiency = 0.5

// EfficiencyBonus is the fraction of upkeep saved by the cell cluster.
func (m *Multicellular) EfficiencyBonus() float32 {
	if m.Cells <= 1 {
		return 0
	}
	return float32(math.Min(maxEfficiency, 0.1*math.Log2(float64(m.Cells))))
}

// BecomeMulticellular promotes the organism to a cluster of cells.
// It returns false if the organism is dead or already multicellular.
func (o *Organism) BecomeMulticellular(cells int) bool {
	if !o.Alive || o.Multicell != nil {
		return false
	}
	o.Multicell = &Multicellular{Cells: cells}
	return true
}

// GrowCell adds one cell for cost energy. It fails if the organism is not
// multicellular, is at maxCells, or cannot pay.
func (o *Organism) GrowCell(cost float32, maxCells int) bool {
	if !o.Alive || o.Multicell == nil || o.Multicell.Cells >= maxCells || o.Energy <= cost {
		return false
	}
	o.AddEnergy(-cost)
	o.Multicell.Cells++
	return true
}
