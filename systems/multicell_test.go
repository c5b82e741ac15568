package systems

import (
	"math/rand"
	"testing"

	"github.com/pthm-cable/ecosim/components"
	"github.com/pthm-cable/ecosim/config"
	"github.com/pthm-cable/ecosim/organism"
	"github.com/pthm-cable/ecosim/traits"
)

func TestMulticellTransition(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	cfg := config.Cfg().Multicellular
	cfg.Chance = 1
	cfg.GrowthChance = 0
	sys := NewMulticellSystem(cfg)

	eligible := spawn(t, rng, organism.NewSequence(0), traits.DietHerbivore, traits.SexMale, 1, components.Position{})
	eligible.Age = float32(cfg.MinAge) + 1
	eligible.Energy = eligible.MaxEnergy
	eligible.Generation = cfg.MinGeneration

	young := *eligible
	young.Age = 0
	firstGen := *eligible
	firstGen.Generation = 0

	orgs := []*organism.Organism{eligible, &young, &firstGen}

	if n, _ := sys.Update(rng, orgs, int64(cfg.CheckInterval)+1); n != 0 {
		t.Errorf("off-interval tick promoted %d organisms", n)
	}
	n, _ := sys.Update(rng, orgs, int64(cfg.CheckInterval))
	if n != 1 || eligible.Multicell == nil || eligible.Multicell.Cells != cfg.InitialCells {
		t.Fatalf("transitions = %d, multicell = %+v", n, eligible.Multicell)
	}
	if young.Multicell != nil || firstGen.Multicell != nil {
		t.Error("ineligible organism promoted")
	}
	if sys.Eligible(eligible) {
		t.Error("transition is not one-way")
	}
}

func TestMulticellGrowth(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	cfg := config.Cfg().Multicellular
	cfg.GrowthChance = 1
	sys := NewMulticellSystem(cfg)

	o := spawn(t, rng, organism.NewSequence(0), traits.DietHerbivore, traits.SexMale, 3, components.Position{})
	o.BecomeMulticellular(cfg.InitialCells)
	o.Energy = o.MaxEnergy

	_, grown := sys.Update(rng, []*organism.Organism{o}, 1)
	if grown != 1 || o.Multicell.Cells != cfg.InitialCells+1 {
		t.Errorf("grown = %d, cells = %d", grown, o.Multicell.Cells)
	}

	o.Energy = o.MaxEnergy * float32(cfg.GrowthMinRatio) * 0.5
	if _, grown := sys.Update(rng, []*organism.Organism{o}, 2); grown != 0 {
		t.Error("grew below the energy gate")
	}
}
