package systems

import (
	"math"
	"math/rand"
	"testing"

	"github.com/pthm-cable/ecosim/components"
	"github.com/pthm-cable/ecosim/config"
	"github.com/pthm-cable/ecosim/organism"
	"github.com/pthm-cable/ecosim/traits"
)

func TestPredationSuccessRate(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	ids := organism.NewSequence(0)
	pp := PredationParamsFromConfig(config.Cfg())

	pred := spawn(t, rng, ids, traits.DietCarnivore, traits.SexMale, 1.5, components.Position{X: 100, Y: 100})
	prey := spawn(t, rng, ids, traits.DietHerbivore, traits.SexFemale, 0.5, components.Position{X: 105, Y: 100})
	if pred.Genome.Kingdom != traits.KingdomAnimal || prey.Genome.Kingdom != traits.KingdomAnimal {
		t.Fatal("both organisms must be animals")
	}
	if !CanPrey(pred, prey) || !pp.InReach(pred, prey) {
		t.Fatal("prey should be attackable and in reach")
	}

	want := pp.PredationProbability(pred, prey)
	if want < pp.MinProbability || want > pp.MaxProbability {
		t.Fatalf("probability %v outside [%v, %v]", want, pp.MinProbability, pp.MaxProbability)
	}

	const trials = 1000
	wins := 0
	for i := 0; i < trials; i++ {
		a, b := *pred, *prey
		if pp.ResolvePredation(rng, &a, &b) {
			wins++
		}
	}
	if got := float64(wins) / trials; math.Abs(got-float64(want)) > 0.05 {
		t.Errorf("observed success %.3f, computed %.3f", got, want)
	}
}

func TestResolvePredationOutcomes(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	ids := organism.NewSequence(0)
	pp := PredationParamsFromConfig(config.Cfg())

	pred := spawn(t, rng, ids, traits.DietCarnivore, traits.SexMale, 2, components.Position{X: 100, Y: 100})
	prey := spawn(t, rng, ids, traits.DietHerbivore, traits.SexFemale, 0.5, components.Position{X: 104, Y: 100})
	pred.Energy = 10
	prey.Energy = 40

	sawWin, sawLoss := false, false
	for i := 0; i < 200 && !(sawWin && sawLoss); i++ {
		a, b := *pred, *prey
		if pp.ResolvePredation(rng, &a, &b) {
			sawWin = true
			if b.Alive || b.Cause != organism.CausePredation {
				t.Fatalf("prey alive=%v cause=%v after successful hunt", b.Alive, b.Cause)
			}
			if want := float32(10) + 40*pp.TransferFraction; math.Abs(float64(a.Energy-want)) > 1e-4 {
				t.Fatalf("predator energy %v, want %v", a.Energy, want)
			}
		} else {
			sawLoss = true
			if !b.Alive {
				t.Fatal("prey died on failed hunt")
			}
			if want := 10 - pp.FailCost; a.Energy != want {
				t.Fatalf("predator energy %v, want %v", a.Energy, want)
			}
		}
	}
	if !sawWin || !sawLoss {
		t.Errorf("win=%v loss=%v, want both outcomes", sawWin, sawLoss)
	}
}

func TestPredationProbabilityClamped(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	ids := organism.NewSequence(0)
	pp := PredationParamsFromConfig(config.Cfg())

	huge := spawn(t, rng, ids, traits.DietCarnivore, traits.SexMale, 3, components.Position{})
	tiny := spawn(t, rng, ids, traits.DietHerbivore, traits.SexMale, 0.3, components.Position{})
	huge.Energy, tiny.Energy = huge.MaxEnergy, 0
	if p := pp.PredationProbability(huge, tiny); p != pp.MaxProbability {
		t.Errorf("overwhelming predator p = %v, want %v", p, pp.MaxProbability)
	}
	// Inverted roles: a small, drained attacker against a large, fresh target.
	huge.Energy, tiny.Energy = huge.MaxEnergy, 0
	if p := pp.PredationProbability(tiny, huge); p != pp.MinProbability {
		t.Errorf("hopeless predator p = %v, want %v", p, pp.MinProbability)
	}
}

func TestCanPrey(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	ids := organism.NewSequence(0)
	at := components.Position{X: 50, Y: 50}
	mk := func(d traits.Diet, size float32) *organism.Organism {
		return spawn(t, rng, ids, d, traits.SexMale, size, at)
	}

	plant := mk(traits.DietPhotosynthetic, 1)
	bigPlant := mk(traits.DietPhotosynthetic, 3)
	herb := mk(traits.DietHerbivore, 1)
	omni := mk(traits.DietOmnivore, 1.2)
	carn := mk(traits.DietCarnivore, 2)
	filter := mk(traits.DietFilterFeeder, 0.5)

	tests := []struct {
		name       string
		pred, prey *organism.Organism
		want       bool
	}{
		{"herbivore grazes plant", herb, plant, true},
		{"herbivore grazes larger plant", herb, bigPlant, true},
		{"herbivore never hunts", herb, filter, false},
		{"carnivore ignores protists", carn, filter, false},
		{"omnivore ignores protists", omni, filter, false},
		{"carnivore hunts smaller", carn, omni, true},
		{"carnivore ignores plants", carn, plant, false},
		{"omnivore grazes", omni, plant, true},
		{"omnivore hunts smaller", omni, herb, true},
		{"omnivore never hunts larger", omni, carn, false},
		{"equal size is not prey", carn, mk(traits.DietHerbivore, 2), false},
		{"plants never feed", plant, filter, false},
		{"filter feeders never hunt", filter, mk(traits.DietHerbivore, 0.3), false},
		{"no self predation", carn, carn, false},
	}
	for _, tt := range tests {
		if got := CanPrey(tt.pred, tt.prey); got != tt.want {
			t.Errorf("%s: CanPrey = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestHungry(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	pp := PredationParamsFromConfig(config.Cfg())
	pred := spawn(t, rng, organism.NewSequence(0), traits.DietCarnivore, traits.SexMale, 1, components.Position{})
	pred.Energy = pred.MaxEnergy
	if pp.Hungry(pred) {
		t.Error("sated predator is hungry")
	}
	pred.Energy = pred.MaxEnergy * 0.5
	if !pp.Hungry(pred) {
		t.Error("half-fed predator is not hungry")
	}
}
