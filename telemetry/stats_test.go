package telemetry

import (
	"math"
	"math/rand"
	"testing"

	"github.com/pthm-cable/ecosim/components"
	"github.com/pthm-cable/ecosim/config"
	"github.com/pthm-cable/ecosim/disease"
	"github.com/pthm-cable/ecosim/genome"
	"github.com/pthm-cable/ecosim/organism"
	"github.com/pthm-cable/ecosim/traits"
)

func init() {
	config.MustInit("")
}

// newOrganism creates a live organism with the given diet and size.
func newOrganism(t *testing.T, rng *rand.Rand, ids organism.IDSource, diet traits.Diet, size float32) *organism.Organism {
	t.Helper()
	g := genome.Random(rng)
	g.Diet = diet
	g.Size = size
	o, err := organism.New(rng, ids, organism.ParamsFromConfig(config.Cfg()), g, components.Position{X: 100, Y: 100})
	if err != nil {
		t.Fatalf("organism.New: %v", err)
	}
	return o
}

func TestPercentile(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		p      float64
		want   float64
	}{
		{"empty slice", []float64{}, 0.5, 0},
		{"single element", []float64{5.0}, 0.5, 5.0},
		{"p0", []float64{1, 2, 3, 4, 5}, 0.0, 1.0},
		{"p100", []float64{1, 2, 3, 4, 5}, 1.0, 5.0},
		{"p50 odd", []float64{1, 2, 3, 4, 5}, 0.5, 3.0},
		{"p50 even", []float64{1, 2, 3, 4}, 0.5, 2.5},
		{"p10", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.1, 1.9},
		{"p90", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.9, 9.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percentile(tt.sorted, tt.p)
			if math.Abs(got-tt.want) > 0.001 {
				t.Errorf("Percentile(%v, %v) = %v, want %v", tt.sorted, tt.p, got, tt.want)
			}
		})
	}
}

func TestComputeDistribution(t *testing.T) {
	values := []float64{1.0, 0.9, 0.8, 0.7, 0.6, 0.5, 0.4, 0.3, 0.2, 0.1}
	mean, std, p10, p50, p90 := ComputeDistribution(values)

	checks := []struct {
		name      string
		got, want float64
	}{
		{"mean", mean, 0.55},
		{"std", std, math.Sqrt(0.825 / 9)},
		{"p10", p10, 0.19},
		{"p50", p50, 0.55},
		{"p90", p90, 0.91},
	}
	for _, c := range checks {
		if math.Abs(c.got-c.want) > 0.001 {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}

	// Input order is preserved.
	if values[0] != 1.0 {
		t.Error("ComputeDistribution sorted its input")
	}
}

func TestComputeDistributionSmall(t *testing.T) {
	mean, std, p10, p50, p90 := ComputeDistribution(nil)
	if mean != 0 || std != 0 || p10 != 0 || p50 != 0 || p90 != 0 {
		t.Error("empty slice should return all zeros")
	}

	mean, std, _, p50, _ = ComputeDistribution([]float64{0.4})
	if mean != 0.4 || std != 0 || p50 != 0.4 {
		t.Errorf("single value: mean=%v std=%v p50=%v", mean, std, p50)
	}
}

func TestTakeCensus(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	ids := organism.NewSequence(0)

	plant := newOrganism(t, rng, ids, traits.DietPhotosynthetic, 2.0)
	protist := newOrganism(t, rng, ids, traits.DietFilterFeeder, 0.5)
	herb := newOrganism(t, rng, ids, traits.DietHerbivore, 1.0)
	carn := newOrganism(t, rng, ids, traits.DietCarnivore, 1.5)
	dead := newOrganism(t, rng, ids, traits.DietCarnivore, 3.0)
	dead.Kill(organism.CausePredation)

	herb.Generation = 7
	herb.Age = 42
	carn.Multicell = &organism.Multicellular{Cells: 9}
	protist.Disease.Infect(disease.TypeFever, 0)

	c := TakeCensus(100, []*organism.Organism{plant, protist, herb, carn, dead}, 12)

	if c.Population != 4 || c.Food != 12 || c.Tick != 100 {
		t.Errorf("population=%d food=%d tick=%d", c.Population, c.Food, c.Tick)
	}
	if c.ByKingdom[traits.KingdomPlant] != 1 || c.ByKingdom[traits.KingdomProtist] != 1 || c.ByKingdom[traits.KingdomAnimal] != 2 {
		t.Errorf("kingdom counts %v", c.ByKingdom)
	}
	if c.ByDiet[traits.DietCarnivore] != 1 {
		t.Errorf("dead carnivore counted: %v", c.ByDiet)
	}
	if c.Infected != 1 || c.Symptomatic != 0 {
		t.Errorf("infected=%d symptomatic=%d", c.Infected, c.Symptomatic)
	}
	if c.Multicellular != 1 || c.LargestColony != 9 {
		t.Errorf("multicellular=%d colony=%d", c.Multicellular, c.LargestColony)
	}
	if c.MaxGeneration != 7 || c.OldestAge != 42 {
		t.Errorf("generation=%d age=%v", c.MaxGeneration, c.OldestAge)
	}
	if c.MinSize != 0.5 || c.MaxSize != 2.0 {
		t.Errorf("size range [%v, %v], want [0.5, 2]", c.MinSize, c.MaxSize)
	}
	if math.Abs(c.SizeMean-1.25) > 1e-6 {
		t.Errorf("size mean %v, want 1.25", c.SizeMean)
	}
	if share := c.Share(traits.KingdomAnimal); share != 0.5 {
		t.Errorf("animal share %v, want 0.5", share)
	}
}

func TestTakeCensusEmpty(t *testing.T) {
	c := TakeCensus(0, nil, 0)
	if !c.Extinct() {
		t.Error("empty census should be extinct")
	}
	if c.EnergyMean != 0 || c.AgeMean != 0 {
		t.Errorf("empty census has nonzero means: %+v", c)
	}
	if !math.IsNaN(c.Share(traits.KingdomPlant)) {
		t.Error("share of an empty population should be NaN")
	}
}

func TestCollectorFlush(t *testing.T) {
	c := NewCollector(1.0, 0.1)
	if c.WindowDurationTicks() != 10 {
		t.Fatalf("ticks per window = %d, want 10", c.WindowDurationTicks())
	}
	if c.ShouldFlush(9) {
		t.Error("flush before the window elapsed")
	}
	if !c.ShouldFlush(10) {
		t.Error("no flush at the window end")
	}

	c.RecordBirth()
	c.RecordBirth()
	c.RecordDeath(organism.CausePredation)
	c.RecordDeath(organism.CauseDisease)
	c.RecordDeath(organism.CauseDisease)
	c.RecordHunt(true)
	c.RecordHunt(false)
	c.RecordHunt(false)
	c.RecordHunt(true)
	c.RecordInfections(3)
	c.RecordEmerged(2)
	c.RecordRecovery()
	c.RecordMulticell(1)
	c.RecordForage()
	c.RecordRespawn(5)

	census := Census{Population: 40, Food: 7}
	census.ByKingdom[traits.KingdomAnimal] = 25
	census.ByDiet[traits.DietOmnivore] = 11

	s := c.Flush(10, census)
	if s.Births != 2 || s.Deaths != 3 || s.DeathsDisease != 2 || s.DeathsPredation != 1 {
		t.Errorf("births/deaths: %+v", s)
	}
	if s.Hunts != 4 || s.Kills != 2 || s.FailedHunts != 2 || s.KillRate != 0.5 {
		t.Errorf("hunting: hunts=%d kills=%d failed=%d rate=%v", s.Hunts, s.Kills, s.FailedHunts, s.KillRate)
	}
	if s.Infections != 5 || s.Emerged != 2 || s.Recoveries != 1 || s.MulticellTransitions != 1 {
		t.Errorf("disease: %+v", s)
	}
	if s.Population != 40 || s.Animals != 25 || s.Omnivores != 11 || s.Food != 7 || s.Respawned != 5 {
		t.Errorf("census columns: %+v", s)
	}
	if math.Abs(s.SimTimeSec-1.0) > 1e-9 {
		t.Errorf("sim time %v, want 1", s.SimTimeSec)
	}

	// Counters reset and the next window starts at the flush tick.
	next := c.Flush(20, Census{})
	if next.WindowStartTick != 10 || next.Births != 0 || next.Deaths != 0 || next.Hunts != 0 {
		t.Errorf("counters not reset: %+v", next)
	}
	if c.ShouldFlush(29) || !c.ShouldFlush(30) {
		t.Error("window boundary not advanced")
	}
}
