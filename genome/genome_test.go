package genome

import (
	"math/rand"
	"testing"

	"github.com/pthm-cable/ecosim/traits"
)

const propertyIterations = 5000

func TestRandomInRange(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < propertyIterations; i++ {
		g := Random(rng)
		if err := g.Validate(); err != nil {
			t.Fatalf("iteration %d: %v", i, err)
		}
	}
}

func TestMutateInRange(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	g := Random(rng)
	for i := 0; i < propertyIterations; i++ {
		// Max out the rate so every operator gets exercised.
		g.MutationRate = MutationRateRange.Max
		g = Mutate(rng, g)
		if err := g.Validate(); err != nil {
			t.Fatalf("iteration %d: %v", i, err)
		}
	}
}

func TestCrossoverInRange(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < propertyIterations; i++ {
		a, b := Random(rng), Random(rng)
		c := Mutate(rng, Crossover(rng, a, b))
		if err := c.Validate(); err != nil {
			t.Fatalf("iteration %d: %v", i, err)
		}
	}
}

func TestMutateHabitatNeverRegresses(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < propertyIterations; i++ {
		parent := Random(rng)
		parent.MutationRate = MutationRateRange.Max
		child := Mutate(rng, parent)
		if child.Habitat < parent.Habitat {
			t.Fatalf("habitat regressed from %v to %v", parent.Habitat, child.Habitat)
		}
		if child.Habitat > parent.Habitat+1 {
			t.Fatalf("habitat jumped from %v to %v in one mutation", parent.Habitat, child.Habitat)
		}
	}
}

func TestMutateKeepsKingdomConsistent(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	g := Random(rng)
	dietChanges := 0
	for i := 0; i < propertyIterations; i++ {
		g.MutationRate = MutationRateRange.Max
		next := Mutate(rng, g)
		if next.Diet != g.Diet {
			dietChanges++
		}
		if next.Kingdom != traits.KingdomFor(next.Diet) {
			t.Fatalf("kingdom %v does not match diet %v", next.Kingdom, next.Diet)
		}
		g = next
	}
	if dietChanges == 0 {
		t.Error("diet never mutated")
	}
}

func TestMutateDoesNotTouchInput(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	g := Random(rng)
	g.MutationRate = MutationRateRange.Max
	before := g
	_ = Mutate(rng, g)
	if g != before {
		t.Error("Mutate modified its input")
	}
}

func TestCrossoverAveragesRateFields(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	a, b := Random(rng), Random(rng)
	a.MutationRate, b.MutationRate = 0.02, 0.2
	a.SexualMaturity, b.SexualMaturity = 10, 20
	a.Immunity, b.Immunity = 0.2, 0.6
	a.DiseaseResistance, b.DiseaseResistance = 0, 1
	a.MaxLifespan, b.MaxLifespan = 200, 400

	c := Crossover(rng, a, b)

	tests := []struct {
		name      string
		got, want float32
	}{
		{"mutation_rate", c.MutationRate, 0.11},
		{"sexual_maturity", c.SexualMaturity, 15},
		{"immunity", c.Immunity, 0.4},
		{"disease_resistance", c.DiseaseResistance, 0.5},
		{"max_lifespan", c.MaxLifespan, 300},
	}
	for _, tt := range tests {
		if diff := tt.got - tt.want; diff > 1e-5 || diff < -1e-5 {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestCrossoverPicksFromParents(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	a, b := Random(rng), Random(rng)
	fromA := 0
	const trials = 2000
	for i := 0; i < trials; i++ {
		c := Crossover(rng, a, b)
		if c.Size != a.Size && c.Size != b.Size {
			t.Fatalf("size %v came from neither parent (%v, %v)", c.Size, a.Size, b.Size)
		}
		if c.Size == a.Size {
			fromA++
		}
	}
	if fromA < trials*45/100 || fromA > trials*55/100 {
		t.Errorf("size taken from first parent %d/%d times, want ~50%%", fromA, trials)
	}
}

func TestClamp(t *testing.T) {
	g := Genome{
		Size:            100,
		Speed:           -1,
		SensorCount:     99,
		HiddenLayers:    0,
		NeuronsPerLayer: 1000,
		MutationRate:    5,
		Diet:            traits.DietCarnivore,
		Kingdom:         traits.KingdomPlant,
		Habitat:         traits.HabitatWater,
		Locomotion:      traits.LocomotionFly,
		MaxLifespan:     1,
	}
	c := g.Clamp()
	if err := c.Validate(); err != nil {
		t.Fatal(err)
	}
	if c.Size != SizeRange.Max || c.Speed != SpeedRange.Min {
		t.Errorf("Clamp size/speed = %v/%v", c.Size, c.Speed)
	}
	if c.Kingdom != traits.KingdomAnimal {
		t.Errorf("kingdom = %v, want animal", c.Kingdom)
	}
	if c.Locomotion != traits.LocomotionSwim {
		t.Errorf("flying in water clamped to %v, want swim", c.Locomotion)
	}
}

func TestRangeSample(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	r := IntRange{Min: 1, Max: 3}
	seen := make(map[int]bool)
	for i := 0; i < 200; i++ {
		v := r.Sample(rng)
		if !r.Contains(v) {
			t.Fatalf("sample %d outside %v", v, r)
		}
		seen[v] = true
	}
	if len(seen) != 3 {
		t.Errorf("saw %d distinct values, want 3", len(seen))
	}
}
