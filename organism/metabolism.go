package organism

import (
	"math/rand"

	"github.com/pthm-cable/ecosim/components"
	"github.com/pthm-cable/ecosim/disease"
	"github.com/pthm-cable/ecosim/traits"
)

// regenMinRatio is the energy ratio above which health regenerates.
const regenMinRatio = 0.5

// Metabolize ages the organism by dt seconds and settles its energy budget.
// light in [0,1] is the ambient light at the organism's position.
func (o *Organism) Metabolize(dt, light float32) {
	if !o.Alive {
		return
	}
	g := &o.Genome

	o.Age += dt
	o.ReproCooldown = max(0, o.ReproCooldown-dt)

	var gain float32
	if g.Diet == traits.DietPhotosynthetic {
		leafArea := g.Size * g.Size
		gain = o.p.PhotosynthesisRate * leafArea * clamp(light, 0, 1) * dt
	}

	upkeep := o.p.BaseUpkeep * g.Kingdom.UpkeepWeight() * g.Metabolism
	var move float32
	if !o.IsSessile() {
		move = o.p.MoveCost * o.Velocity.Speed()
	}
	maintenance := o.p.SizeCost * g.Size
	cost := (upkeep + move + maintenance) * dt
	if o.Multicell != nil {
		cost *= 1 - o.Multicell.EfficiencyBonus()
	}
	o.AddEnergy(gain - cost)

	if o.Age >= g.SexualMaturity {
		o.MatingDrive = clamp(o.MatingDrive+o.p.MatingDriveGrowth*dt, 0, 1)
	}

	switch {
	case o.Age > g.MaxLifespan:
		o.addHealth(-o.p.SenescenceRate * dt)
	case o.EnergyRatio() > regenMinRatio && !o.Disease.Symptomatic:
		o.addHealth(o.p.HealthRegen * dt)
	}
	o.refreshAttractiveness()

	switch {
	case o.Energy <= 0:
		o.Kill(CauseStarvation)
	case o.Health <= 0 && o.Age > g.MaxLifespan:
		o.Kill(CauseOldAge)
	case o.Health <= 0:
		o.Kill(CauseInjury)
	}
}

// Eat consumes food lying within the combined radius. The full payload is
// transferred, capped at MaxEnergy. It returns false if the food is out of
// reach or already consumed.
func (o *Organism) Eat(foodPos components.Position, f *components.Food) bool {
	if !o.Alive || f.Consumed {
		return false
	}
	dx, dy := o.Delta(foodPos)
	reach := o.Radius() + f.Radius
	if dx*dx+dy*dy > reach*reach {
		return false
	}
	o.AddEnergy(f.Consume())
	return true
}

// TryInfect exposes the organism to t once. It fails if the organism is
// dead, already infected or immune.
func (o *Organism) TryInfect(rng *rand.Rand, t disease.Type, tick int64) bool {
	if !o.Alive {
		return false
	}
	return o.Disease.TryInfect(rng, t, tick, o.Genome.Immunity)
}

// UpdateDisease advances the infection to tick and applies symptoms for dt
// seconds. It returns the state machine outcome.
func (o *Organism) UpdateDisease(rng *rand.Rand, tick int64, dt float32) disease.Outcome {
	if !o.Alive || !o.Disease.Infected() {
		return disease.OutcomeNone
	}
	out := o.Disease.Advance(rng, tick, o.Genome.DiseaseResistance)
	if out == disease.OutcomeDied {
		o.Kill(CauseDisease)
		return out
	}
	if o.Disease.Symptomatic {
		sym := o.Disease.Symptoms()
		o.AddEnergy(-o.p.SymptomDrain * sym.EnergyDrainMultiplier * dt)
		o.addHealth(-o.p.SymptomHealthDecay * dt)
		if o.Health <= 0 {
			o.Kill(CauseDisease)
		} else if o.Energy <= 0 {
			o.Kill(CauseStarvation)
		}
	}
	return out
}
