// Package traits defines the closed classification enums organisms carry
// and the fixed rules that relate them.
package traits

import "math/rand"

// Kingdom is the coarse taxonomic group of an organism.
// It is never mutated directly: it is recomputed from Diet.
type Kingdom uint8

const (
	KingdomPlant Kingdom = iota
	KingdomProtist
	KingdomAnimal
	NumKingdoms
)

// Diet determines what an organism can feed on.
type Diet uint8

const (
	DietPhotosynthetic Diet = iota
	DietFilterFeeder
	DietHerbivore
	DietOmnivore
	DietCarnivore
	NumDiets
)

// Locomotion determines how an organism moves.
type Locomotion uint8

const (
	LocomotionSessile Locomotion = iota
	LocomotionCrawl
	LocomotionSwim
	LocomotionWalk
	LocomotionFly
	NumLocomotions
)

// Habitat is where an organism lives. Ordered water -> amphibious -> land.
type Habitat uint8

const (
	HabitatWater Habitat = iota
	HabitatAmphibious
	HabitatLand
	NumHabitats
)

// Sex determines which partners an organism can mate with.
type Sex uint8

const (
	SexMale Sex = iota
	SexFemale
	SexHermaphrodite
	NumSexes
)

// Habitat thresholds on the mean of the three land-adaptation traits.
const (
	AmphibiousThreshold = 0.35
	LandThreshold       = 0.70
)

func (k Kingdom) String() string {
	switch k {
	case KingdomPlant:
		return "plant"
	case KingdomProtist:
		return "protist"
	case KingdomAnimal:
		return "animal"
	default:
		return "unknown"
	}
}

func (d Diet) String() string {
	switch d {
	case DietPhotosynthetic:
		return "photosynthetic"
	case DietFilterFeeder:
		return "filter_feeder"
	case DietHerbivore:
		return "herbivore"
	case DietOmnivore:
		return "omnivore"
	case DietCarnivore:
		return "carnivore"
	default:
		return "unknown"
	}
}

func (l Locomotion) String() string {
	switch l {
	case LocomotionSessile:
		return "sessile"
	case LocomotionCrawl:
		return "crawl"
	case LocomotionSwim:
		return "swim"
	case LocomotionWalk:
		return "walk"
	case LocomotionFly:
		return "fly"
	default:
		return "unknown"
	}
}

func (h Habitat) String() string {
	switch h {
	case HabitatWater:
		return "water"
	case HabitatAmphibious:
		return "amphibious"
	case HabitatLand:
		return "land"
	default:
		return "unknown"
	}
}

func (s Sex) String() string {
	switch s {
	case SexMale:
		return "male"
	case SexFemale:
		return "female"
	case SexHermaphrodite:
		return "hermaphrodite"
	default:
		return "unknown"
	}
}

// KingdomFor returns the kingdom implied by a diet.
func KingdomFor(d Diet) Kingdom {
	switch d {
	case DietPhotosynthetic:
		return KingdomPlant
	case DietFilterFeeder:
		return KingdomProtist
	default:
		return KingdomAnimal
	}
}

// HabitatFor maps the mean land-adaptation value onto a habitat.
func HabitatFor(adaptation float32) Habitat {
	switch {
	case adaptation >= LandThreshold:
		return HabitatLand
	case adaptation >= AmphibiousThreshold:
		return HabitatAmphibious
	default:
		return HabitatWater
	}
}

// UpkeepWeight scales base metabolic upkeep per kingdom.
func (k Kingdom) UpkeepWeight() float32 {
	switch k {
	case KingdomPlant:
		return 0.5
	case KingdomProtist:
		return 0.75
	default:
		return 1.0
	}
}

// SpeedMultiplier scales movement per locomotion mode. Sessile never moves.
func (l Locomotion) SpeedMultiplier() float32 {
	switch l {
	case LocomotionCrawl:
		return 0.4
	case LocomotionSwim:
		return 1.0
	case LocomotionWalk:
		return 0.8
	case LocomotionFly:
		return 1.4
	default:
		return 0
	}
}

// Allowed reports whether a locomotion mode is usable in a habitat.
func (l Locomotion) Allowed(h Habitat) bool {
	switch l {
	case LocomotionSessile:
		return true
	case LocomotionSwim:
		return h != HabitatLand
	case LocomotionCrawl, LocomotionWalk:
		return h != HabitatWater
	case LocomotionFly:
		return h == HabitatLand
	default:
		return false
	}
}

// Compatible reports whether two sexes can produce offspring together.
// Same-sex pairings are rejected unless one partner is a hermaphrodite.
func Compatible(a, b Sex) bool {
	if a == SexHermaphrodite || b == SexHermaphrodite {
		return true
	}
	return a != b
}

// EatsFood reports whether a diet feeds on free-floating Food items.
func (d Diet) EatsFood() bool {
	return d == DietFilterFeeder || d == DietHerbivore || d == DietOmnivore
}

// EatsPlants reports whether a diet grazes on plant-kingdom organisms.
func (d Diet) EatsPlants() bool {
	return d == DietHerbivore || d == DietOmnivore
}

// Hunts reports whether a diet preys on other animals.
func (d Diet) Hunts() bool {
	return d == DietCarnivore || d == DietOmnivore
}

// DietEdge is a weighted transition in the diet progression graph.
type DietEdge struct {
	To     Diet
	Weight float32
}

// DietTransitions is the directed, weighted diet mutation graph. Forward edges
// follow photosynthetic -> filter feeder/herbivore -> omnivore -> carnivore;
// backward edges are reversals and carry low weight.
var DietTransitions = [NumDiets][]DietEdge{
	DietPhotosynthetic: {
		{To: DietFilterFeeder, Weight: 0.6},
		{To: DietHerbivore, Weight: 0.4},
	},
	DietFilterFeeder: {
		{To: DietOmnivore, Weight: 0.55},
		{To: DietHerbivore, Weight: 0.35},
		{To: DietPhotosynthetic, Weight: 0.10},
	},
	DietHerbivore: {
		{To: DietOmnivore, Weight: 0.85},
		{To: DietFilterFeeder, Weight: 0.10},
		{To: DietPhotosynthetic, Weight: 0.05},
	},
	DietOmnivore: {
		{To: DietCarnivore, Weight: 0.85},
		{To: DietHerbivore, Weight: 0.15},
	},
	DietCarnivore: {
		{To: DietOmnivore, Weight: 1.0},
	},
}

// DietMutability scales the chance that a diet mutates at all. Carnivory is
// the end of the progression, so leaving it is rare.
var DietMutability = [NumDiets]float32{
	DietPhotosynthetic: 1.0,
	DietFilterFeeder:   1.0,
	DietHerbivore:      1.0,
	DietOmnivore:       0.8,
	DietCarnivore:      0.2,
}

// NextDiet samples a successor from the diet transition graph.
func NextDiet(rng *rand.Rand, from Diet) Diet {
	edges := DietTransitions[from]
	if len(edges) == 0 {
		return from
	}
	var total float32
	for _, e := range edges {
		total += e.Weight
	}
	r := rng.Float32() * total
	for _, e := range edges {
		r -= e.Weight
		if r < 0 {
			return e.To
		}
	}
	return edges[len(edges)-1].To
}
