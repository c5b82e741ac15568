package systems

import (
	"log/slog"
	"math/rand"

	"github.com/pthm-cable/ecosim/config"
	"github.com/pthm-cable/ecosim/organism"
)

// MulticellSystem promotes eligible organisms to multicellular bodies and
// grows existing cell clusters.
type MulticellSystem struct {
	cfg config.MulticellularConfig
}

// NewMulticellSystem creates a multicellular system from config.
func NewMulticellSystem(cfg config.MulticellularConfig) *MulticellSystem {
	return &MulticellSystem{cfg: cfg}
}

// Eligible reports whether o meets every threshold for the transition.
func (s *MulticellSystem) Eligible(o *organism.Organism) bool {
	return o.Alive && o.Multicell == nil &&
		o.Age >= float32(s.cfg.MinAge) &&
		o.EnergyRatio() >= float32(s.cfg.MinEnergyRatio) &&
		o.Generation >= s.cfg.MinGeneration &&
		o.Health >= float32(s.cfg.MinHealth)
}

// Update runs the interval-gated transition check and the per-tick growth
// roll. It returns the number of transitions and grown cells.
func (s *MulticellSystem) Update(rng *rand.Rand, orgs []*organism.Organism, tick int64) (transitions, grown int) {
	if s.cfg.CheckInterval > 0 && tick%int64(s.cfg.CheckInterval) == 0 {
		for _, o := range orgs {
			if !s.Eligible(o) || rng.Float64() >= s.cfg.Chance {
				continue
			}
			if o.BecomeMulticellular(s.cfg.InitialCells) {
				transitions++
				slog.Debug("multicellular", "id", uint64(o.ID), "generation", o.Generation, "tick", tick)
			}
		}
	}

	for _, o := range orgs {
		if !o.Alive || o.Multicell == nil || o.EnergyRatio() < float32(s.cfg.GrowthMinRatio) {
			continue
		}
		if rng.Float64() < s.cfg.GrowthChance && o.GrowCell(float32(s.cfg.GrowthCost), s.cfg.MaxCells) {
			grown++
		}
	}
	return transitions, grown
}
