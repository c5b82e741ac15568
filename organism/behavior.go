package organism

import (
	"fmt"
	"math"

	"github.com/pthm-cable/ecosim/neural"
)

// Sighting is the toroidal offset from an organism to something it can see.
type Sighting struct {
	DX, DY float32
	DistSq float32
}

// Percept is what the population manager shows an organism each tick:
// the nearest food and the nearest other organism, if any.
type Percept struct {
	Food         Sighting
	FoodSeen     bool
	Organism     Sighting
	OrganismSeen bool
}

// Intent is a movement decision. Both fields are in [-1,1].
type Intent struct {
	Thrust float32
	Turn   float32
}

// Decider is an alternative decision pipeline. When attached it replaces
// Sense and Think; the resulting Intent still drives Act.
type Decider interface {
	Decide(o *Organism, p Percept) Intent
}

// Sense builds the brain input vector:
// food sin/cos/proximity, organism sin/cos/proximity, energy ratio, speed ratio.
// Anything beyond the genome's sensor range is treated as unseen.
func (o *Organism) Sense(p Percept) []float32 {
	in := make([]float32, neural.NumInputs)
	sensorRange := o.Genome.SensorRange

	if p.FoodSeen {
		o.senseTarget(in[0:3], p.Food, sensorRange)
	}
	if p.OrganismSeen {
		o.senseTarget(in[3:6], p.Organism, sensorRange)
	}

	in[6] = o.EnergyRatio()
	if limit := o.MaxSpeed(); limit > 0 {
		in[7] = clamp(o.Velocity.Speed()/limit, 0, 1)
	}
	return in
}

func (o *Organism) senseTarget(dst []float32, s Sighting, sensorRange float32) {
	if s.DistSq > sensorRange*sensorRange {
		return
	}
	dist := float32(math.Sqrt(float64(s.DistSq)))
	angle := float64(float32(math.Atan2(float64(s.DY), float64(s.DX))) - o.Heading)
	dst[0] = float32(math.Sin(angle))
	dst[1] = float32(math.Cos(angle))
	dst[2] = 1 - dist/sensorRange
}

// Think runs one forward pass and returns thrust and turn in [-1,1].
func (o *Organism) Think(inputs []float32) (Intent, error) {
	out, err := o.Brain.Forward(inputs)
	if err != nil {
		return Intent{}, fmt.Errorf("organism %d: %w", o.ID, err)
	}
	return Intent{Thrust: clamp(out[0], -1, 1), Turn: clamp(out[1], -1, 1)}, nil
}

// Decide stores the next Intent, produced by the attached Decider or by
// Sense and Think.
func (o *Organism) Decide(p Percept) error {
	if o.Decider != nil {
		in := o.Decider.Decide(o, p)
		o.Intent = Intent{Thrust: clamp(in.Thrust, -1, 1), Turn: clamp(in.Turn, -1, 1)}
		return nil
	}
	intent, err := o.Think(o.Sense(p))
	if err != nil {
		return err
	}
	o.Intent = intent
	return nil
}

// Act integrates heading, velocity and position from the current Intent.
// Negative thrust brakes without reversing. Sessile organisms and plants
// never move.
func (o *Organism) Act(dt float32) {
	if !o.Alive {
		return
	}
	if o.IsSessile() {
		o.Velocity.X, o.Velocity.Y = 0, 0
		return
	}

	o.Heading += o.Intent.Turn * o.p.MaxTurnRate * dt
	if o.Heading > math.Pi {
		o.Heading -= 2 * math.Pi
	} else if o.Heading < -math.Pi {
		o.Heading += 2 * math.Pi
	}

	loco := o.Genome.Locomotion.SpeedMultiplier()
	thrust := clamp(o.Intent.Thrust, 0, 1)
	accel := thrust * o.p.Acceleration * o.Genome.Speed * loco * dt
	sin, cos := math.Sincos(float64(o.Heading))
	o.Velocity.X += float32(cos) * accel
	o.Velocity.Y += float32(sin) * accel

	damp := float32(math.Exp(float64(-o.p.Damping * dt)))
	o.Velocity.X *= damp
	o.Velocity.Y *= damp

	if limit, speed := o.MaxSpeed(), o.Velocity.Speed(); speed > limit && speed > 0 {
		scale := limit / speed
		o.Velocity.X *= scale
		o.Velocity.Y *= scale
	}

	o.Position.X += o.Velocity.X * dt
	o.Position.Y += o.Velocity.Y * dt
}
