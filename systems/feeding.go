package systems

import (
	"math/rand"

	"github.com/pthm-cable/ecosim/config"
	"github.com/pthm-cable/ecosim/organism"
	"github.com/pthm-cable/ecosim/traits"
)

// Predation success weights.
const (
	predationBase         = 0.5
	predationSizeWeight   = 0.4
	predationSpeedWeight  = 0.2
	predationEnergyWeight = 0.1
)

// PredationParams holds predation resolution constants.
type PredationParams struct {
	TransferFraction float32
	FailCost         float32
	BiteRange        float32
	MinProbability   float32
	MaxProbability   float32
	HuntSatiety      float32
}

// PredationParamsFromConfig extracts predation parameters from a loaded config.
func PredationParamsFromConfig(cfg *config.Config) PredationParams {
	p := cfg.Predation
	return PredationParams{
		TransferFraction: float32(p.TransferFraction),
		FailCost:         float32(p.FailCost),
		BiteRange:        float32(p.BiteRange),
		MinProbability:   float32(p.MinProbability),
		MaxProbability:   float32(p.MaxProbability),
		HuntSatiety:      float32(p.HuntSatiety),
	}
}

// WantsFood reports whether an organism forages free food items.
func WantsFood(o *organism.Organism) bool {
	return o.Alive && o.Genome.Diet.EatsFood()
}

// Hungry reports whether a predator is below its hunting satiety.
func (pp PredationParams) Hungry(pred *organism.Organism) bool {
	return pred.EnergyRatio() < pp.HuntSatiety
}

// CanPrey reports whether pred's diet allows attacking prey. Grazers attack
// plant-kingdom organisms of any size; hunters attack animals only when they
// are strictly smaller. Protists are never prey. Photosynthetic organisms
// never feed.
func CanPrey(pred, prey *organism.Organism) bool {
	if pred == prey || !pred.Alive || !prey.Alive {
		return false
	}
	diet := pred.Genome.Diet
	if prey.Genome.Kingdom == traits.KingdomPlant {
		return diet.EatsPlants()
	}
	return diet.Hunts() && prey.Genome.Kingdom == traits.KingdomAnimal &&
		prey.Genome.Size < pred.Genome.Size
}

// InReach reports whether prey is within pred's combined radius plus bite range.
func (pp PredationParams) InReach(pred, prey *organism.Organism) bool {
	dx, dy := pred.Delta(prey.Position)
	reach := pred.Radius() + prey.Radius() + pp.BiteRange
	return dx*dx+dy*dy <= reach*reach
}

// PredationProbability is the chance pred kills prey in one attempt,
// weighted by relative size, speed and energy and clamped to the configured
// bounds. Hunted prey is always strictly smaller, so the lower bound is only
// reached when pred is the smaller of the two.
func (pp PredationParams) PredationProbability(pred, prey *organism.Organism) float32 {
	sizeAdv := relativeAdvantage(pred.Genome.Size, prey.Genome.Size)
	speedAdv := relativeAdvantage(pred.MaxSpeed(), prey.MaxSpeed())
	energyDiff := pred.EnergyRatio() - prey.EnergyRatio()

	p := predationBase +
		predationSizeWeight*sizeAdv +
		predationSpeedWeight*speedAdv +
		predationEnergyWeight*energyDiff
	return clampFloat(p, pp.MinProbability, pp.MaxProbability)
}

// ResolvePredation rolls one attack. On success the predator gains
// TransferFraction of the prey's energy and the prey dies; on failure the
// predator pays FailCost and the prey survives.
func (pp PredationParams) ResolvePredation(rng *rand.Rand, pred, prey *organism.Organism) bool {
	if rng.Float32() < pp.PredationProbability(pred, prey) {
		pred.AddEnergy(prey.Energy * pp.TransferFraction)
		prey.Kill(organism.CausePredation)
		return true
	}
	pred.AddEnergy(-pp.FailCost)
	if pred.Energy <= 0 {
		pred.Kill(organism.CauseStarvation)
	}
	return false
}
