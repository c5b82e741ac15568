package systems

import (
	"math/rand"
	"testing"

	"github.com/pthm-cable/ecosim/components"
	"github.com/pthm-cable/ecosim/config"
	"github.com/pthm-cable/ecosim/disease"
	"github.com/pthm-cable/ecosim/organism"
	"github.com/pthm-cable/ecosim/traits"
)

func TestSpreadOnlyWithinRadius(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	ids := organism.NewSequence(0)
	sys := NewDiseaseSystem(config.Cfg().Disease)
	radius := float32(config.Cfg().Disease.SpreadRadius)

	carrier := spawn(t, rng, ids, traits.DietHerbivore, traits.SexMale, 1, components.Position{X: 300, Y: 300})
	carrier.Disease = disease.State{Current: disease.TypePlague, Symptomatic: true}

	var orgs []*organism.Organism
	orgs = append(orgs, carrier)
	for i := 0; i < 40; i++ {
		o := spawn(t, rng, ids, traits.DietHerbivore, traits.SexFemale, 1, components.Position{X: 300 + radius*0.2, Y: 300})
		o.Genome.Immunity = 0
		orgs = append(orgs, o)
	}
	outside := spawn(t, rng, ids, traits.DietHerbivore, traits.SexFemale, 1, components.Position{X: 300 + radius*1.5, Y: 300})
	orgs = append(orgs, outside)
	hash := indexHash(orgs)

	total := 0
	for tick := int64(1); tick <= 200; tick++ {
		total += sys.Spread(rng, orgs, hash, tick)
	}
	if total == 0 {
		t.Error("no infections next to a symptomatic carrier")
	}
	if outside.Disease.Infected() {
		t.Error("organism beyond spread radius infected")
	}
	for _, o := range orgs[1 : len(orgs)-1] {
		if o.Disease.Infected() && o.Disease.Current != disease.TypePlague {
			t.Fatalf("infected with %v, want plague", o.Disease.Current)
		}
	}
}

func TestSpreadRequiresContagiousSymptoms(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	ids := organism.NewSequence(0)
	sys := NewDiseaseSystem(config.Cfg().Disease)

	incubating := spawn(t, rng, ids, traits.DietHerbivore, traits.SexMale, 1, components.Position{X: 300, Y: 300})
	incubating.Disease.Infect(disease.TypePlague, 0)
	chilled := spawn(t, rng, ids, traits.DietHerbivore, traits.SexMale, 1, components.Position{X: 300, Y: 300})
	chilled.Disease = disease.State{Current: disease.TypeChill, Symptomatic: true}
	healthy := spawn(t, rng, ids, traits.DietHerbivore, traits.SexMale, 1, components.Position{X: 301, Y: 300})

	orgs := []*organism.Organism{incubating, chilled, healthy}
	hash := indexHash(orgs)
	for tick := int64(1); tick < 500; tick++ {
		if n := sys.Spread(rng, orgs, hash, tick); n != 0 {
			t.Fatalf("tick %d: %d infections from non-contagious carriers", tick, n)
		}
	}
}

func TestEmergeFollowsTriggers(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	ids := organism.NewSequence(0)
	cfg := config.Cfg().Disease
	cfg.EmergenceChance = 1
	sys := NewDiseaseSystem(cfg)

	mk := func(n int) []*organism.Organism {
		out := make([]*organism.Organism, n)
		for i := range out {
			out[i] = spawn(t, rng, ids, traits.DietHerbivore, traits.SexMale, 1, components.Position{X: 10, Y: 10})
			out[i].Genome.Immunity = 0
		}
		return out
	}

	mild := mk(20)
	if n := sys.Emerge(rng, mild, 0, 18, 1); n != 0 {
		t.Errorf("mild, sparse world: %d emerged infections, want 0", n)
	}

	hot := mk(20)
	if n := sys.Emerge(rng, hot, 0, 35, 1); n != len(hot) {
		t.Errorf("hot world: %d infections, want %d", n, len(hot))
	}
	for _, o := range hot {
		if o.Disease.Current != disease.TypeFever {
			t.Fatalf("hot world infected with %v, want fever", o.Disease.Current)
		}
	}

	immune := mk(5)
	for _, o := range immune {
		o.Genome.Immunity = 1
	}
	if n := sys.Emerge(rng, immune, 0, 35, 1); n != 0 {
		t.Errorf("fully immune organisms: %d emerged infections", n)
	}
}

func TestTriggerOutbreak(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	ids := organism.NewSequence(0)

	var orgs []*organism.Organism
	for i := 0; i < 50; i++ {
		x := float32(100 + i*20)
		orgs = append(orgs, spawn(t, rng, ids, traits.DietHerbivore, traits.SexMale, 1, components.Position{X: x, Y: 200}))
	}
	orgs[0].Disease.Infect(disease.TypeFever, 0)
	orgs[1].Disease.Immunities = map[disease.Type]int64{disease.TypePlague: 1000}
	orgs[2].Kill(organism.CausePredation)

	center := components.Position{X: 100, Y: 200}
	n := TriggerOutbreak(rng, disease.TypePlague, orgs, 10, 1, &center, 90)
	// Organisms 0-4 are within 90 units; 0, 1 and 2 are not eligible.
	if n != 2 {
		t.Errorf("geo-fenced outbreak infected %d, want 2", n)
	}
	for i, o := range orgs[5:] {
		if o.Disease.Infected() {
			t.Fatalf("organism %d outside the fence infected", i+5)
		}
	}

	n = TriggerOutbreak(rng, disease.TypePlague, orgs, 10, 1, nil, 0)
	if n != 45 {
		t.Errorf("global outbreak infected %d, want 45", n)
	}
	if got := TriggerOutbreak(rng, disease.TypeParasite, orgs, 10, 0, nil, 0); got != 0 {
		t.Errorf("zero-rate outbreak infected %d", got)
	}
}

func TestUpdatePurgesImmunity(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	cfg := config.Cfg().Disease
	sys := NewDiseaseSystem(cfg)
	o := spawn(t, rng, organism.NewSequence(0), traits.DietHerbivore, traits.SexMale, 1, components.Position{})
	o.Disease.Immunities = map[disease.Type]int64{disease.TypeFever: 5}
	orgs := []*organism.Organism{o}
	sys.Update(rng, orgs, indexHash(orgs), int64(cfg.ImmunityPurgeInterval), 18, 0)
	if len(o.Disease.Immunities) != 0 {
		t.Error("expired immunity survived the purge")
	}
}
