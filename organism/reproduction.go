package organism

import (
	"math"
	"math/rand"

	"github.com/pthm-cable/ecosim/components"
	"github.com/pthm-cable/ecosim/genome"
	"github.com/pthm-cable/ecosim/neural"
	"github.com/pthm-cable/ecosim/traits"
)

// CanReproduce reports whether the organism may breed this tick: alive,
// energy at or above the threshold fraction of max, sexually mature, off
// cooldown and free of reproduction-blocking symptoms.
func (o *Organism) CanReproduce() bool {
	return o.Alive &&
		o.Energy >= o.p.ReproThreshold*o.MaxEnergy &&
		o.Age >= o.Genome.SexualMaturity &&
		o.ReproCooldown <= 0 &&
		!o.Disease.BlocksReproduction()
}

// WantsMate reports whether mating drive is high enough to look for a partner.
func (o *Organism) WantsMate() bool {
	return o.MatingDrive >= o.p.MatingDriveThreshold
}

// CanMateWith reports whether o and partner form a valid breeding pair:
// distinct, same kingdom and a compatible sex pairing.
func (o *Organism) CanMateWith(partner *Organism) bool {
	return partner != nil && partner != o && partner.Alive &&
		o.Genome.Kingdom == partner.Genome.Kingdom &&
		traits.Compatible(o.Genome.Sex, partner.Genome.Sex)
}

// AcceptanceProbability is the chance o accepts partner. Selective organisms
// weight the partner's attractiveness more heavily; low mating drive halves
// the chance.
func (o *Organism) AcceptanceProbability(partner *Organism) float32 {
	sel := o.Genome.Selectivity
	base := (1 - sel) + sel*partner.Attractiveness
	return clamp(base*(0.5+0.5*o.MatingDrive), 0, 1)
}

// Reproduce produces a mutated asexual offspring, charging the parent a
// fraction of its max energy. It returns nil when CanReproduce is false.
func (o *Organism) Reproduce(rng *rand.Rand, ids IDSource) *Organism {
	if !o.CanReproduce() {
		return nil
	}

	g := genome.Mutate(rng, o.Genome)
	brain := o.Brain.Clone()
	brain.Mutate(rng, g.MutationRate)

	cost := o.p.AsexualCost * o.MaxEnergy
	o.AddEnergy(-cost)
	o.ReproCooldown = o.p.AsexualCooldown

	return o.offspring(rng, ids, g, brain, cost, o.Generation+1)
}

// ReproduceWith breeds with partner. Both parents must be able to reproduce
// and form a valid pair, and o must accept partner on a probabilistic roll.
// Each parent is charged a fraction of its max energy. The child genome and
// brain are crossed over from both parents and then mutated once more.
func (o *Organism) ReproduceWith(rng *rand.Rand, ids IDSource, partner *Organism) *Organism {
	if !o.CanReproduce() || !partner.CanReproduce() || !o.CanMateWith(partner) {
		return nil
	}
	if rng.Float32() >= o.AcceptanceProbability(partner) {
		return nil
	}

	g := genome.Mutate(rng, genome.Crossover(rng, o.Genome, partner.Genome))
	brain, err := o.Brain.CrossoverWith(rng, partner.Brain)
	if err != nil {
		brain = o.Brain.Clone()
	}
	brain.Mutate(rng, g.MutationRate)

	var energy float32
	for _, parent := range []*Organism{o, partner} {
		cost := parent.p.SexualCost * parent.MaxEnergy
		parent.AddEnergy(-cost)
		parent.ReproCooldown = parent.p.SexualCooldown
		parent.MatingDrive = 0
		energy += cost
	}

	return o.offspring(rng, ids, g, brain, energy, max(o.Generation, partner.Generation)+1)
}

// offspring places a child near o. A brain whose shape no longer matches
// the child genome is replaced by a fresh one.
func (o *Organism) offspring(rng *rand.Rand, ids IDSource, g genome.Genome, brain *neural.Brain, energy float32, generation int) *Organism {
	if shape := ShapeFor(g); !brain.Shape().Equal(shape) {
		if fresh, err := neural.NewBrain(rng, shape); err == nil {
			brain = fresh
		}
	}

	angle := rng.Float64() * 2 * math.Pi
	pos := components.Position{
		X: o.Position.X + float32(math.Cos(angle))*o.p.SpawnOffset,
		Y: o.Position.Y + float32(math.Sin(angle))*o.p.SpawnOffset,
	}

	child := newOrganism(ids.Next(), o.p, g, brain, pos)
	child.Energy = clamp(energy, 0, child.MaxEnergy)
	child.Heading = float32(angle)
	child.Generation = generation
	child.refreshAttractiveness()
	return child
}
