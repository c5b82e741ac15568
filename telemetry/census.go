package telemetry

import (
	"math"

	"github.com/pthm-cable/ecosim/organism"
	"github.com/pthm-cable/ecosim/traits"
)

// Census is a read-only summary of the live population at one tick.
type Census struct {
	Tick       int64
	Population int
	Food       int

	// Cumulative since the start of the run, filled in by the owner.
	TotalBirths int
	TotalDeaths int

	ByKingdom [traits.NumKingdoms]int
	ByDiet    [traits.NumDiets]int
	ByHabitat [traits.NumHabitats]int

	Infected      int
	Symptomatic   int
	Multicellular int
	LargestColony int

	MaxGeneration int
	OldestAge     float32
	MinSize       float32
	MaxSize       float32
	FastestSpeed  float32

	EnergyMean float64
	EnergyStd  float64
	EnergyP10  float64
	EnergyP50  float64
	EnergyP90  float64
	AgeMean    float64
	SizeMean   float64
}

// TakeCensus aggregates the live organisms in orgs. Dead entries are
// skipped. It never modifies the organisms.
func TakeCensus(tick int64, orgs []*organism.Organism, food int) Census {
	c := Census{Tick: tick, Food: food}

	energies := make([]float64, 0, len(orgs))
	var ageSum, sizeSum float64
	for _, o := range orgs {
		if !o.Alive {
			continue
		}
		g := &o.Genome
		c.Population++
		c.ByKingdom[g.Kingdom]++
		c.ByDiet[g.Diet]++
		c.ByHabitat[g.Habitat]++

		if o.Disease.Infected() {
			c.Infected++
			if o.Disease.Symptomatic {
				c.Symptomatic++
			}
		}
		if o.Multicell != nil {
			c.Multicellular++
			c.LargestColony = max(c.LargestColony, o.Multicell.Cells)
		}

		c.MaxGeneration = max(c.MaxGeneration, o.Generation)
		c.OldestAge = max(c.OldestAge, o.Age)
		c.FastestSpeed = max(c.FastestSpeed, g.Speed)
		if c.Population == 1 {
			c.MinSize, c.MaxSize = g.Size, g.Size
		} else {
			c.MinSize = min(c.MinSize, g.Size)
			c.MaxSize = max(c.MaxSize, g.Size)
		}

		energies = append(energies, float64(o.EnergyRatio()))
		ageSum += float64(o.Age)
		sizeSum += float64(g.Size)
	}

	c.EnergyMean, c.EnergyStd, c.EnergyP10, c.EnergyP50, c.EnergyP90 = ComputeDistribution(energies)
	if c.Population > 0 {
		c.AgeMean = ageSum / float64(c.Population)
		c.SizeMean = sizeSum / float64(c.Population)
	}
	return c
}

// Extinct reports whether no organisms are alive.
func (c Census) Extinct() bool {
	return c.Population == 0
}

// Share returns the fraction of the population in kingdom k.
func (c Census) Share(k traits.Kingdom) float64 {
	if c.Population == 0 {
		return math.NaN()
	}
	return float64(c.ByKingdom[k]) / float64(c.Population)
}
