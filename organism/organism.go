// Package organism implements the per-agent lifecycle: sensing, deciding,
// moving, feeding, metabolizing, reproducing, sickening and dying.
//
// An Organism never holds references to other organisms. The population
// manager passes borrowed views (Percept, partners, prey) into each call.
package organism

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/pthm-cable/ecosim/components"
	"github.com/pthm-cable/ecosim/disease"
	"github.com/pthm-cable/ecosim/genome"
	"github.com/pthm-cable/ecosim/neural"
	"github.com/pthm-cable/ecosim/traits"
)

// CauseOfDeath records why an organism left the live set.
type CauseOfDeath uint8

const (
	CauseNone CauseOfDeath = iota
	CauseStarvation
	CauseInjury
	CausePredation
	CauseDisease
	CauseOldAge
	NumCauses
)

func (c CauseOfDeath) String() string {
	switch c {
	case CauseNone:
		return "none"
	case CauseStarvation:
		return "starvation"
	case CauseInjury:
		return "injury"
	case CausePredation:
		return "predation"
	case CauseDisease:
		return "disease"
	case CauseOldAge:
		return "old_age"
	default:
		return "unknown"
	}
}

// Organism is a single simulated agent.
type Organism struct {
	ID     ID
	Genome genome.Genome
	Brain  *neural.Brain

	// Decider replaces Sense/Think when set.
	Decider Decider
	Intent  Intent // Last decision, consumed by Act

	Position components.Position
	Velocity components.Velocity
	Heading  float32 // radians

	Energy         float32
	MaxEnergy      float32
	Health         float32
	Age            float32 // seconds
	ReproCooldown  float32 // seconds
	Generation     int
	Attractiveness float32
	MatingDrive    float32

	Multicell *Multicellular
	Disease   disease.State

	Alive bool
	Cause CauseOfDeath

	p *Params
}

// ShapeFor returns the brain shape a genome calls for.
func ShapeFor(g genome.Genome) neural.Shape {
	return neural.NewShape(g.HiddenLayers, g.NeuronsPerLayer)
}

// New creates a generation-zero organism with a fresh brain at pos.
func New(rng *rand.Rand, ids IDSource, p *Params, g genome.Genome, pos components.Position) (*Organism, error) {
	g = g.Clamp()
	brain, err := neural.NewBrain(rng, ShapeFor(g))
	if err != nil {
		return nil, fmt.Errorf("creating brain: %w", err)
	}
	o := newOrganism(ids.Next(), p, g, brain, pos)
	o.Energy = o.MaxEnergy * p.InitialEnergyRatio
	o.Heading = (rng.Float32()*2 - 1) * math.Pi
	o.refreshAttractiveness()
	return o, nil
}

// FromTemplate creates a generation-zero organism carrying a stored genome
// and brain. The brain shape must match the genome.
func FromTemplate(rng *rand.Rand, ids IDSource, p *Params, g genome.Genome, w neural.BrainWeights, pos components.Position) (*Organism, error) {
	g = g.Clamp()
	brain, err := neural.NewBrainFromWeights(w)
	if err != nil {
		return nil, fmt.Errorf("restoring brain: %w", err)
	}
	if !brain.Shape().Equal(ShapeFor(g)) {
		return nil, fmt.Errorf("brain %v does not fit genome %v: %w", brain.Shape(), ShapeFor(g), neural.ErrShapeMismatch)
	}
	o := newOrganism(ids.Next(), p, g, brain, pos)
	o.Energy = o.MaxEnergy * p.InitialEnergyRatio
	o.Heading = (rng.Float32()*2 - 1) * math.Pi
	o.refreshAttractiveness()
	return o, nil
}

func newOrganism(id ID, p *Params, g genome.Genome, brain *neural.Brain, pos components.Position) *Organism {
	return &Organism{
		ID:        id,
		Genome:    g,
		Brain:     brain,
		Position:  components.Wrap(pos, p.WorldW, p.WorldH),
		MaxEnergy: p.BaseMaxEnergy * g.Size,
		Health:    MaxHealth,
		Alive:     true,
		p:         p,
	}
}

// Params returns the parameters the organism was created with.
func (o *Organism) Params() *Params {
	return o.p
}

// Radius returns the body radius used for feeding and predation range.
func (o *Organism) Radius() float32 {
	return o.p.BodyRadius * o.Genome.Size
}

// EnergyRatio returns Energy / MaxEnergy.
func (o *Organism) EnergyRatio() float32 {
	if o.MaxEnergy <= 0 {
		return 0
	}
	return o.Energy / o.MaxEnergy
}

// IsSessile reports whether the organism never moves.
func (o *Organism) IsSessile() bool {
	return o.Genome.Locomotion == traits.LocomotionSessile || o.Genome.Kingdom == traits.KingdomPlant
}

// MaxSpeed returns the current speed cap including disease slowdown.
func (o *Organism) MaxSpeed() float32 {
	if o.IsSessile() {
		return 0
	}
	s := o.p.MaxSpeed * o.Genome.Speed * o.Genome.Locomotion.SpeedMultiplier()
	return s * (1 - o.Disease.Symptoms().SpeedReduction)
}

// Kill marks the organism dead. The first recorded cause wins.
func (o *Organism) Kill(cause CauseOfDeath) {
	if !o.Alive {
		return
	}
	o.Alive = false
	o.Cause = cause
}

// Wrap maps the organism's position onto the toroidal world.
func (o *Organism) Wrap() {
	o.Position = components.Wrap(o.Position, o.p.WorldW, o.p.WorldH)
}

// Delta returns the shortest toroidal offset from o to pos.
func (o *Organism) Delta(pos components.Position) (dx, dy float32) {
	return components.ToroidalDelta(o.Position.X, o.Position.Y, pos.X, pos.Y, o.p.WorldW, o.p.WorldH)
}

// AddEnergy changes energy by delta, clamped to [0, MaxEnergy].
func (o *Organism) AddEnergy(delta float32) {
	o.Energy = clamp(o.Energy+delta, 0, o.MaxEnergy)
}

func (o *Organism) addHealth(delta float32) {
	o.Health = clamp(o.Health+delta, 0, MaxHealth)
}

// refreshAttractiveness derives display quality from ornamentation and condition.
func (o *Organism) refreshAttractiveness() {
	o.Attractiveness = clamp(0.5*o.Genome.Ornamentation+0.25*o.Health/MaxHealth+0.25*o.EnergyRatio(), 0, 1)
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
