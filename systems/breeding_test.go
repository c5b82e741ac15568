package systems

import (
	"math/rand"
	"testing"

	"github.com/pthm-cable/ecosim/components"
	"github.com/pthm-cable/ecosim/organism"
	"github.com/pthm-cable/ecosim/traits"
)

func ready(o *organism.Organism) {
	o.Energy = o.MaxEnergy
	o.Age = o.Genome.SexualMaturity + 1
	o.MatingDrive = 1
}

func TestFindMate(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	ids := organism.NewSequence(0)
	at := func(x float32) components.Position { return components.Position{X: x, Y: 500} }

	seeker := spawn(t, rng, ids, traits.DietHerbivore, traits.SexFemale, 1, at(500))
	near := spawn(t, rng, ids, traits.DietHerbivore, traits.SexMale, 1, at(510))
	far := spawn(t, rng, ids, traits.DietHerbivore, traits.SexMale, 1, at(600))
	sameSex := spawn(t, rng, ids, traits.DietHerbivore, traits.SexFemale, 1, at(502))
	otherKingdom := spawn(t, rng, ids, traits.DietFilterFeeder, traits.SexMale, 1, at(503))
	tooFar := spawn(t, rng, ids, traits.DietHerbivore, traits.SexMale, 1, at(900))

	orgs := []*organism.Organism{seeker, near, far, sameSex, otherKingdom, tooFar}
	for _, o := range orgs {
		ready(o)
		o.Attractiveness = 0.5
	}
	hash := indexHash(orgs)
	const radius = 120
	neighbors := hash.Query(seeker.Position.X, seeker.Position.Y, radius)

	if got := FindMate(seeker, orgs, neighbors, radius); got != near {
		t.Errorf("FindMate = %v, want nearest compatible partner", got)
	}

	far.Attractiveness = 1
	near.Attractiveness = 0
	if got := FindMate(seeker, orgs, neighbors, radius); got != far {
		t.Errorf("FindMate ignored a much more attractive partner")
	}

	far.ReproCooldown = 5
	near.Energy = 0
	if got := FindMate(seeker, orgs, neighbors, radius); got != nil {
		t.Errorf("FindMate = %d, want nil when no candidate can breed", got.ID)
	}
}

func TestFindMateEmpty(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	seeker := spawn(t, rng, organism.NewSequence(0), traits.DietHerbivore, traits.SexFemale, 1, components.Position{X: 10, Y: 10})
	if got := FindMate(seeker, nil, nil, 100); got != nil {
		t.Error("FindMate with no neighbors returned a partner")
	}
}

func TestMateScoreWeights(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	o := spawn(t, rng, organism.NewSequence(0), traits.DietHerbivore, traits.SexMale, 1, components.Position{})
	o.Attractiveness = 1
	o.Health = organism.MaxHealth
	o.Energy = o.MaxEnergy
	if got := MateScore(o, 0, 100); got < 0.999 || got > 1.001 {
		t.Errorf("perfect candidate score = %v, want 1", got)
	}
	if got := MateScore(o, 100, 100); got < 0.699 || got > 0.701 {
		t.Errorf("candidate at the edge = %v, want 0.7", got)
	}
}
