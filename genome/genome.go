// Package genome holds the heritable trait vector of an organism and the
// genetic operators over it. Every operator returns a genome whose fields lie
// within the ranges declared in this file.
package genome

import (
	"fmt"
	"math/rand"

	"github.com/pthm-cable/ecosim/traits"
)

// Color is the display color gene, channels in [0,1].
type Color struct {
	R, G, B float32
}

// Genome is an immutable-by-convention trait vector. Operators never modify
// their inputs; they return new values.
type Genome struct {
	// Body
	Size       float32 `json:"size"`
	Speed      float32 `json:"speed"`
	Metabolism float32 `json:"metabolism"`

	// Senses
	SensorRange float32 `json:"sensor_range"`
	SensorCount int     `json:"sensor_count"`

	Color Color `json:"color"`

	// Neural shape
	HiddenLayers    int `json:"hidden_layers"`
	NeuronsPerLayer int `json:"neurons_per_layer"`

	MutationRate float32 `json:"mutation_rate"`

	// Social
	Cooperation    float32 `json:"cooperation"`
	BondStrength   float32 `json:"bond_strength"`
	Specialization float32 `json:"specialization"`

	// Classification. Kingdom is always KingdomFor(Diet).
	Kingdom    traits.Kingdom    `json:"kingdom"`
	Diet       traits.Diet       `json:"diet"`
	Locomotion traits.Locomotion `json:"locomotion"`
	Habitat    traits.Habitat    `json:"habitat"`

	// Sexual selection
	Sex            traits.Sex `json:"sex"`
	Ornamentation  float32    `json:"ornamentation"`
	Selectivity    float32    `json:"selectivity"`
	SexualMaturity float32    `json:"sexual_maturity"` // seconds of age

	// Land adaptation; their mean selects the habitat
	LungCapacity          float32 `json:"lung_capacity"`
	LimbDevelopment       float32 `json:"limb_development"`
	DesiccationResistance float32 `json:"desiccation_resistance"`

	// Disease
	Immunity          float32 `json:"immunity"`
	DiseaseResistance float32 `json:"disease_resistance"`
	MaxLifespan       float32 `json:"max_lifespan"` // seconds
}

// Trait ranges.
var (
	SizeRange           = Range{Min: 0.3, Max: 3.0}
	SpeedRange          = Range{Min: 0.2, Max: 3.0}
	MetabolismRange     = Range{Min: 0.3, Max: 2.0}
	SensorRangeRange    = Range{Min: 20, Max: 200}
	SensorCountRange    = IntRange{Min: 1, Max: 8}
	ColorRange          = Range{Min: 0, Max: 1}
	HiddenLayersRange   = IntRange{Min: 1, Max: 3}
	NeuronsRange        = IntRange{Min: 4, Max: 16}
	MutationRateRange   = Range{Min: 0.01, Max: 0.3}
	UnitRange           = Range{Min: 0, Max: 1}
	SexualMaturityRange = Range{Min: 5, Max: 60}
	MaxLifespanRange    = Range{Min: 120, Max: 1200}
)

// Per-field multipliers applied to MutationRate to get each field's
// mutation probability.
const (
	bodyMutation       = 1.0
	senseMutation      = 1.0
	sensorCountMut     = 0.3
	colorMutation      = 1.5
	hiddenLayersMut    = 0.1
	neuronsMutation    = 0.3
	mutationRateMut    = 0.5
	socialMutation     = 1.0
	selectionMutation  = 1.0
	maturityMutation   = 0.5
	adaptationMutation = 0.8
	diseaseMutation    = 0.5
	dietMutation       = 0.1
	locomotionMutation = 0.05
	sexMutation        = 0.01
)

// sigmaFraction is the standard deviation of a continuous mutation as a
// fraction of the field's range width.
const sigmaFraction = 0.1

// hermaphroditeChance is the chance a random genome is hermaphroditic.
const hermaphroditeChance = 0.1

// Random samples every field uniformly within its range.
func Random(rng *rand.Rand) Genome {
	g := Genome{
		Size:        SizeRange.Sample(rng),
		Speed:       SpeedRange.Sample(rng),
		Metabolism:  MetabolismRange.Sample(rng),
		SensorRange: SensorRangeRange.Sample(rng),
		SensorCount: SensorCountRange.Sample(rng),
		Color: Color{
			R: ColorRange.Sample(rng),
			G: ColorRange.Sample(rng),
			B: ColorRange.Sample(rng),
		},
		HiddenLayers:    HiddenLayersRange.Sample(rng),
		NeuronsPerLayer: NeuronsRange.Sample(rng),
		MutationRate:    MutationRateRange.Sample(rng),

		Cooperation:    UnitRange.Sample(rng),
		BondStrength:   UnitRange.Sample(rng),
		Specialization: UnitRange.Sample(rng),

		Diet: traits.Diet(rng.Intn(int(traits.NumDiets))),

		Ornamentation:  UnitRange.Sample(rng),
		Selectivity:    UnitRange.Sample(rng),
		SexualMaturity: SexualMaturityRange.Sample(rng),

		LungCapacity:          UnitRange.Sample(rng),
		LimbDevelopment:       UnitRange.Sample(rng),
		DesiccationResistance: UnitRange.Sample(rng),

		Immunity:          UnitRange.Sample(rng),
		DiseaseResistance: UnitRange.Sample(rng),
		MaxLifespan:       MaxLifespanRange.Sample(rng),
	}

	g.Kingdom = traits.KingdomFor(g.Diet)
	g.Habitat = traits.HabitatFor(g.LandAdaptation())
	g.Locomotion = randomLocomotion(rng, g.Habitat)

	if rng.Float32() < hermaphroditeChance {
		g.Sex = traits.SexHermaphrodite
	} else if rng.Intn(2) == 0 {
		g.Sex = traits.SexMale
	} else {
		g.Sex = traits.SexFemale
	}

	return g
}

// LandAdaptation returns the mean of the three land-adaptation traits.
func (g Genome) LandAdaptation() float32 {
	return (g.LungCapacity + g.LimbDevelopment + g.DesiccationResistance) / 3
}

// Mutate returns a mutated copy of g. Each field mutates independently with
// probability MutationRate times its per-field multiplier.
func Mutate(rng *rand.Rand, g Genome) Genome {
	m := mutator{rng: rng, rate: g.MutationRate}

	g.Size = m.float(g.Size, SizeRange, bodyMutation)
	g.Speed = m.float(g.Speed, SpeedRange, bodyMutation)
	g.Metabolism = m.float(g.Metabolism, MetabolismRange, bodyMutation)

	g.SensorRange = m.float(g.SensorRange, SensorRangeRange, senseMutation)
	g.SensorCount = m.int(g.SensorCount, SensorCountRange, sensorCountMut)

	g.Color.R = m.float(g.Color.R, ColorRange, colorMutation)
	g.Color.G = m.float(g.Color.G, ColorRange, colorMutation)
	g.Color.B = m.float(g.Color.B, ColorRange, colorMutation)

	g.HiddenLayers = m.int(g.HiddenLayers, HiddenLayersRange, hiddenLayersMut)
	g.NeuronsPerLayer = m.int(g.NeuronsPerLayer, NeuronsRange, neuronsMutation)

	g.Cooperation = m.float(g.Cooperation, UnitRange, socialMutation)
	g.BondStrength = m.float(g.BondStrength, UnitRange, socialMutation)
	g.Specialization = m.float(g.Specialization, UnitRange, socialMutation)

	if m.roll(dietMutation * traits.DietMutability[g.Diet]) {
		g.Diet = traits.NextDiet(rng, g.Diet)
	}
	g.Kingdom = traits.KingdomFor(g.Diet)

	g.Ornamentation = m.float(g.Ornamentation, UnitRange, selectionMutation)
	g.Selectivity = m.float(g.Selectivity, UnitRange, selectionMutation)
	g.SexualMaturity = m.float(g.SexualMaturity, SexualMaturityRange, maturityMutation)
	if m.roll(sexMutation) {
		g.Sex = traits.Sex(rng.Intn(int(traits.NumSexes)))
	}

	g.LungCapacity = m.float(g.LungCapacity, UnitRange, adaptationMutation)
	g.LimbDevelopment = m.float(g.LimbDevelopment, UnitRange, adaptationMutation)
	g.DesiccationResistance = m.float(g.DesiccationResistance, UnitRange, adaptationMutation)
	g.Habitat = advanceHabitat(g.Habitat, traits.HabitatFor(g.LandAdaptation()))

	if m.roll(locomotionMutation) {
		g.Locomotion = randomLocomotion(rng, g.Habitat)
	}
	g.Locomotion = fitLocomotion(g.Locomotion, g.Habitat)

	g.Immunity = m.float(g.Immunity, UnitRange, diseaseMutation)
	g.DiseaseResistance = m.float(g.DiseaseResistance, UnitRange, diseaseMutation)
	g.MaxLifespan = m.float(g.MaxLifespan, MaxLifespanRange, diseaseMutation)

	// Mutation rate mutates last so this pass used the parent's rate.
	g.MutationRate = m.float(g.MutationRate, MutationRateRange, mutationRateMut)

	return g
}

// Crossover produces a child by uniform crossover: each field comes from
// either parent with equal probability. Rate-like fields are averaged.
func Crossover(rng *rand.Rand, a, b Genome) Genome {
	pick := func() bool { return rng.Intn(2) == 0 }
	var c Genome

	c.Size = pickF(pick(), a.Size, b.Size)
	c.Speed = pickF(pick(), a.Speed, b.Speed)
	c.Metabolism = pickF(pick(), a.Metabolism, b.Metabolism)
	c.SensorRange = pickF(pick(), a.SensorRange, b.SensorRange)
	c.SensorCount = pickI(pick(), a.SensorCount, b.SensorCount)
	c.Color.R = pickF(pick(), a.Color.R, b.Color.R)
	c.Color.G = pickF(pick(), a.Color.G, b.Color.G)
	c.Color.B = pickF(pick(), a.Color.B, b.Color.B)
	c.HiddenLayers = pickI(pick(), a.HiddenLayers, b.HiddenLayers)
	c.NeuronsPerLayer = pickI(pick(), a.NeuronsPerLayer, b.NeuronsPerLayer)
	c.Cooperation = pickF(pick(), a.Cooperation, b.Cooperation)
	c.BondStrength = pickF(pick(), a.BondStrength, b.BondStrength)
	c.Specialization = pickF(pick(), a.Specialization, b.Specialization)
	c.Ornamentation = pickF(pick(), a.Ornamentation, b.Ornamentation)
	c.Selectivity = pickF(pick(), a.Selectivity, b.Selectivity)
	c.LungCapacity = pickF(pick(), a.LungCapacity, b.LungCapacity)
	c.LimbDevelopment = pickF(pick(), a.LimbDevelopment, b.LimbDevelopment)
	c.DesiccationResistance = pickF(pick(), a.DesiccationResistance, b.DesiccationResistance)

	if pick() {
		c.Diet = a.Diet
	} else {
		c.Diet = b.Diet
	}
	if pick() {
		c.Sex = a.Sex
	} else {
		c.Sex = b.Sex
	}
	if pick() {
		c.Locomotion = a.Locomotion
	} else {
		c.Locomotion = b.Locomotion
	}

	c.MutationRate = (a.MutationRate + b.MutationRate) / 2
	c.SexualMaturity = (a.SexualMaturity + b.SexualMaturity) / 2
	c.Immunity = (a.Immunity + b.Immunity) / 2
	c.DiseaseResistance = (a.DiseaseResistance + b.DiseaseResistance) / 2
	c.MaxLifespan = (a.MaxLifespan + b.MaxLifespan) / 2

	c.Kingdom = traits.KingdomFor(c.Diet)
	c.Habitat = traits.HabitatFor(c.LandAdaptation())
	c.Locomotion = fitLocomotion(c.Locomotion, c.Habitat)

	return c.Clamp()
}

// Clamp returns g with every field forced into its range and every derived
// classification made consistent.
func (g Genome) Clamp() Genome {
	g.Size = SizeRange.Clamp(g.Size)
	g.Speed = SpeedRange.Clamp(g.Speed)
	g.Metabolism = MetabolismRange.Clamp(g.Metabolism)
	g.SensorRange = SensorRangeRange.Clamp(g.SensorRange)
	g.SensorCount = SensorCountRange.Clamp(g.SensorCount)
	g.Color.R = ColorRange.Clamp(g.Color.R)
	g.Color.G = ColorRange.Clamp(g.Color.G)
	g.Color.B = ColorRange.Clamp(g.Color.B)
	g.HiddenLayers = HiddenLayersRange.Clamp(g.HiddenLayers)
	g.NeuronsPerLayer = NeuronsRange.Clamp(g.NeuronsPerLayer)
	g.MutationRate = MutationRateRange.Clamp(g.MutationRate)
	g.Cooperation = UnitRange.Clamp(g.Cooperation)
	g.BondStrength = UnitRange.Clamp(g.BondStrength)
	g.Specialization = UnitRange.Clamp(g.Specialization)
	g.Ornamentation = UnitRange.Clamp(g.Ornamentation)
	g.Selectivity = UnitRange.Clamp(g.Selectivity)
	g.SexualMaturity = SexualMaturityRange.Clamp(g.SexualMaturity)
	g.LungCapacity = UnitRange.Clamp(g.LungCapacity)
	g.LimbDevelopment = UnitRange.Clamp(g.LimbDevelopment)
	g.DesiccationResistance = UnitRange.Clamp(g.DesiccationResistance)
	g.Immunity = UnitRange.Clamp(g.Immunity)
	g.DiseaseResistance = UnitRange.Clamp(g.DiseaseResistance)
	g.MaxLifespan = MaxLifespanRange.Clamp(g.MaxLifespan)

	if g.Diet >= traits.NumDiets {
		g.Diet = traits.DietHerbivore
	}
	if g.Sex >= traits.NumSexes {
		g.Sex = traits.SexHermaphrodite
	}
	if g.Habitat >= traits.NumHabitats {
		g.Habitat = traits.HabitatFor(g.LandAdaptation())
	}
	g.Kingdom = traits.KingdomFor(g.Diet)
	g.Locomotion = fitLocomotion(g.Locomotion, g.Habitat)
	return g
}

// Validate reports the first field found outside its range, or nil.
func (g Genome) Validate() error {
	checks := []struct {
		name string
		ok   bool
	}{
		{"size", SizeRange.Contains(g.Size)},
		{"speed", SpeedRange.Contains(g.Speed)},
		{"metabolism", MetabolismRange.Contains(g.Metabolism)},
		{"sensor_range", SensorRangeRange.Contains(g.SensorRange)},
		{"sensor_count", SensorCountRange.Contains(g.SensorCount)},
		{"color.r", ColorRange.Contains(g.Color.R)},
		{"color.g", ColorRange.Contains(g.Color.G)},
		{"color.b", ColorRange.Contains(g.Color.B)},
		{"hidden_layers", HiddenLayersRange.Contains(g.HiddenLayers)},
		{"neurons_per_layer", NeuronsRange.Contains(g.NeuronsPerLayer)},
		{"mutation_rate", MutationRateRange.Contains(g.MutationRate)},
		{"cooperation", UnitRange.Contains(g.Cooperation)},
		{"bond_strength", UnitRange.Contains(g.BondStrength)},
		{"specialization", UnitRange.Contains(g.Specialization)},
		{"ornamentation", UnitRange.Contains(g.Ornamentation)},
		{"selectivity", UnitRange.Contains(g.Selectivity)},
		{"sexual_maturity", SexualMaturityRange.Contains(g.SexualMaturity)},
		{"lung_capacity", UnitRange.Contains(g.LungCapacity)},
		{"limb_development", UnitRange.Contains(g.LimbDevelopment)},
		{"desiccation_resistance", UnitRange.Contains(g.DesiccationResistance)},
		{"immunity", UnitRange.Contains(g.Immunity)},
		{"disease_resistance", UnitRange.Contains(g.DiseaseResistance)},
		{"max_lifespan", MaxLifespanRange.Contains(g.MaxLifespan)},
		{"diet", g.Diet < traits.NumDiets},
		{"sex", g.Sex < traits.NumSexes},
		{"habitat", g.Habitat < traits.NumHabitats},
		{"kingdom", g.Kingdom == traits.KingdomFor(g.Diet)},
		{"locomotion", g.Locomotion < traits.NumLocomotions && g.Locomotion.Allowed(g.Habitat)},
	}
	for _, c := range checks {
		if !c.ok {
			return fmt.Errorf("genome field %s out of range", c.name)
		}
	}
	return nil
}

// mutator applies per-field mutation rolls at a fixed base rate.
type mutator struct {
	rng  *rand.Rand
	rate float32
}

func (m mutator) roll(multiplier float32) bool {
	return m.rng.Float32() < m.rate*multiplier
}

func (m mutator) float(v float32, r Range, multiplier float32) float32 {
	if !m.roll(multiplier) {
		return v
	}
	delta := float32(m.rng.NormFloat64()) * sigmaFraction * r.Width()
	return r.Clamp(v + delta)
}

func (m mutator) int(v int, r IntRange, multiplier float32) int {
	if !m.roll(multiplier) {
		return v
	}
	if m.rng.Intn(2) == 0 {
		return r.Clamp(v - 1)
	}
	return r.Clamp(v + 1)
}

// advanceHabitat moves at most one step toward derived and never regresses.
func advanceHabitat(current, derived traits.Habitat) traits.Habitat {
	if derived > current {
		return current + 1
	}
	return current
}

// randomLocomotion samples a locomotion mode usable in h.
func randomLocomotion(rng *rand.Rand, h traits.Habitat) traits.Locomotion {
	var options []traits.Locomotion
	for l := traits.Locomotion(0); l < traits.NumLocomotions; l++ {
		if l.Allowed(h) {
			options = append(options, l)
		}
	}
	return options[rng.Intn(len(options))]
}

// fitLocomotion replaces a locomotion mode that is unusable in h with the
// closest usable one.
func fitLocomotion(l traits.Locomotion, h traits.Habitat) traits.Locomotion {
	if l < traits.NumLocomotions && l.Allowed(h) {
		return l
	}
	switch h {
	case traits.HabitatWater:
		return traits.LocomotionSwim
	case traits.HabitatLand:
		return traits.LocomotionWalk
	default:
		if l == traits.LocomotionFly {
			return traits.LocomotionWalk
		}
		return traits.LocomotionCrawl
	}
}

func pickF(first bool, a, b float32) float32 {
	if first {
		return a
	}
	return b
}

func pickI(first bool, a, b int) int {
	if first {
		return a
	}
	return b
}

// InRange reports whether every field lies within its documented range.
func (g Genome) InRange() bool {
	return g.Validate() == nil
}
