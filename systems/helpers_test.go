package systems

import (
	"math/rand"
	"testing"

	"github.com/pthm-cable/ecosim/components"
	"github.com/pthm-cable/ecosim/config"
	"github.com/pthm-cable/ecosim/genome"
	"github.com/pthm-cable/ecosim/organism"
	"github.com/pthm-cable/ecosim/traits"
)

func init() {
	config.MustInit("")
}

// spawn creates an organism at pos with the given diet, sex and size.
func spawn(t testing.TB, rng *rand.Rand, ids organism.IDSource, diet traits.Diet, sex traits.Sex, size float32, pos components.Position) *organism.Organism {
	t.Helper()
	g := genome.Random(rng)
	g.Diet = diet
	g.Sex = sex
	g.Size = size
	g.Speed = 1
	g.Locomotion = traits.LocomotionSwim
	g.LungCapacity, g.LimbDevelopment, g.DesiccationResistance = 0, 0, 0
	g.Habitat = traits.HabitatWater
	o, err := organism.New(rng, ids, organism.ParamsFromConfig(config.Cfg()), g, pos)
	if err != nil {
		t.Fatalf("organism.New: %v", err)
	}
	return o
}

func indexHash(orgs []*organism.Organism) *SpatialHash[int] {
	cfg := config.Cfg()
	h := NewSpatialHash[int](cfg.Derived.WorldW32, cfg.Derived.WorldH32, float32(cfg.Physics.GridCellSize))
	for i, o := range orgs {
		h.Insert(i, o.Position.X, o.Position.Y)
	}
	return h
}
