package systems

import (
	"log/slog"
	"math/rand"

	"github.com/pthm-cable/ecosim/components"
	"github.com/pthm-cable/ecosim/config"
	"github.com/pthm-cable/ecosim/disease"
	"github.com/pthm-cable/ecosim/organism"
)

// DensityArea is the area over which organism density is expressed.
const DensityArea = 10000

// DiseaseSystem orchestrates disease between organisms: contagious spread,
// environmental emergence and periodic immunity purges. Per-organism state
// advancement is delegated to organism.UpdateDisease.
type DiseaseSystem struct {
	spreadRadius      float32
	baseSpreadRate    float32
	emergenceInterval int64
	emergenceChance   float32
	purgeInterval     int64

	neighbors []Neighbor[int]
}

// DiseaseReport counts infections caused by one orchestration pass.
type DiseaseReport struct {
	Spread  int
	Emerged int
}

// NewDiseaseSystem creates a disease system from config.
func NewDiseaseSystem(cfg config.DiseaseConfig) *DiseaseSystem {
	return &DiseaseSystem{
		spreadRadius:      float32(cfg.SpreadRadius),
		baseSpreadRate:    float32(cfg.BaseSpreadRate),
		emergenceInterval: int64(cfg.EmergenceInterval),
		emergenceChance:   float32(cfg.EmergenceChance),
		purgeInterval:     int64(cfg.ImmunityPurgeInterval),
		neighbors:         make([]Neighbor[int], 0, 32),
	}
}

// Update runs one orchestration pass. hash must index orgs by slice
// position. temperature and density describe current ambient conditions.
func (s *DiseaseSystem) Update(rng *rand.Rand, orgs []*organism.Organism, hash *SpatialHash[int], tick int64, temperature, density float32) DiseaseReport {
	if s.purgeInterval > 0 && tick%s.purgeInterval == 0 {
		for _, o := range orgs {
			o.Disease.PurgeExpired(tick)
		}
	}

	var r DiseaseReport
	r.Spread = s.Spread(rng, orgs, hash, tick)
	if s.emergenceInterval > 0 && tick%s.emergenceInterval == 0 {
		r.Emerged = s.Emerge(rng, orgs, tick, temperature, density)
	}
	return r
}

// Spread lets every symptomatic contagious carrier expose organisms within
// the spread radius. Each exposure first passes a base-rate roll decaying
// linearly with distance, then the disease's own transmission roll.
func (s *DiseaseSystem) Spread(rng *rand.Rand, orgs []*organism.Organism, hash *SpatialHash[int], tick int64) int {
	infected := 0
	for i, carrier := range orgs {
		if !carrier.Alive || !carrier.Disease.Contagious() {
			continue
		}
		t := carrier.Disease.Current
		s.neighbors = hash.QueryInto(s.neighbors[:0], carrier.Position.X, carrier.Position.Y, s.spreadRadius)
		for _, n := range s.neighbors {
			if n.Key == i {
				continue
			}
			target := orgs[n.Key]
			if !target.Alive || !target.Disease.CanInfect(t, tick) {
				continue
			}
			p := s.baseSpreadRate * (1 - n.Dist()/s.spreadRadius)
			if rng.Float32() >= p {
				continue
			}
			if target.TryInfect(rng, t, tick) {
				infected++
			}
		}
	}
	return infected
}

// Emerge rolls a background infection for every disease whose trigger
// matches the ambient conditions. The chance is scaled down by each
// organism's innate immunity.
func (s *DiseaseSystem) Emerge(rng *rand.Rand, orgs []*organism.Organism, tick int64, temperature, density float32) int {
	infected := 0
	for _, t := range disease.Types() {
		if !disease.Lookup(t).Trigger.Matches(temperature, density) {
			continue
		}
		n := 0
		for _, o := range orgs {
			if !o.Alive {
				continue
			}
			if rng.Float32() < s.emergenceChance*(1-o.Genome.Immunity) && o.Disease.Infect(t, tick) {
				n++
			}
		}
		if n > 0 {
			slog.Debug("disease_emerged", "disease", t.String(), "tick", tick, "infected", n)
		}
		infected += n
	}
	return infected
}

// TriggerOutbreak infects each live organism with probability rate,
// restricted to organisms within radius of center when center is non-nil.
// Infections bypass the transmission roll but respect existing infections
// and immunities. It returns the number of newly infected organisms.
func TriggerOutbreak(rng *rand.Rand, t disease.Type, orgs []*organism.Organism, tick int64, rate float32, center *components.Position, radius float32) int {
	infected := 0
	for _, o := range orgs {
		if !o.Alive {
			continue
		}
		if center != nil {
			dx, dy := o.Delta(*center)
			if dx*dx+dy*dy > radius*radius {
				continue
			}
		}
		if rng.Float32() < rate && o.Disease.Infect(t, tick) {
			infected++
		}
	}
	slog.Info("outbreak", "disease", t.String(), "tick", tick, "rate", rate, "infected", infected)
	return infected
}
