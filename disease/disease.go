// Package disease defines the closed set of diseases, their immutable
// configuration table and the per-organism infection state machine.
package disease

import "fmt"

// Type identifies a disease. TypeNone means not infected.
type Type uint8

const (
	TypeNone Type = iota
	TypePlague
	TypeFever
	TypeChill
	TypeParasite
	NumTypes
)

func (t Type) String() string {
	switch t {
	case TypeNone:
		return "none"
	case TypePlague:
		return "plague"
	case TypeFever:
		return "fever"
	case TypeChill:
		return "chill"
	case TypeParasite:
		return "parasite"
	default:
		return "unknown"
	}
}

// ParseType resolves a disease name as produced by String.
func ParseType(name string) (Type, error) {
	for t := TypePlague; t < NumTypes; t++ {
		if t.String() == name {
			return t, nil
		}
	}
	return TypeNone, fmt.Errorf("unknown disease %q", name)
}

// Types returns every real disease type in table order.
func Types() []Type {
	out := make([]Type, 0, NumTypes-1)
	for t := TypePlague; t < NumTypes; t++ {
		out = append(out, t)
	}
	return out
}

// TriggerKind selects which ambient quantity an environmental trigger reads.
type TriggerKind uint8

const (
	TriggerNone TriggerKind = iota
	TriggerTempAbove
	TriggerTempBelow
	TriggerDensityAbove // organisms per 10,000 square units
)

// Trigger is an environmental emergence condition.
type Trigger struct {
	Kind      TriggerKind
	Threshold float32
}

// Matches reports whether the ambient conditions satisfy the trigger.
// A disease without a trigger never emerges on its own.
func (tr Trigger) Matches(temperature, density float32) bool {
	switch tr.Kind {
	case TriggerTempAbove:
		return temperature > tr.Threshold
	case TriggerTempBelow:
		return temperature < tr.Threshold
	case TriggerDensityAbove:
		return density > tr.Threshold
	default:
		return false
	}
}

// Symptoms describes the effects of a disease while symptomatic.
type Symptoms struct {
	SpeedReduction        float32 // Fraction of max speed lost
	EnergyDrainMultiplier float32 // Scales the configured symptomatic energy drain
	MortalityRate         float32 // Per-tick death chance before resistance
	BlocksReproduction    bool
	Contagious            bool
}

// Config is the static description of one disease.
type Config struct {
	Name             string
	TransmissionRate float32
	Trigger          Trigger
	IncubationTicks  int64
	DurationTicks    int64 // Symptomatic phase length
	Symptoms         Symptoms
	ImmunityTicks    int64 // Zero grants no immunity on recovery
	BaseResistance   float32
}

var table = [NumTypes]Config{
	TypePlague: {
		Name:             "plague",
		TransmissionRate: 0.6,
		Trigger:          Trigger{Kind: TriggerDensityAbove, Threshold: 8},
		IncubationTicks:  120,
		DurationTicks:    600,
		Symptoms: Symptoms{
			SpeedReduction:        0.3,
			EnergyDrainMultiplier: 1.5,
			MortalityRate:         0.0008,
			BlocksReproduction:    true,
			Contagious:            true,
		},
		ImmunityTicks:  1800,
		BaseResistance: 0.6,
	},
	TypeFever: {
		Name:             "fever",
		TransmissionRate: 0.4,
		Trigger:          Trigger{Kind: TriggerTempAbove, Threshold: 28},
		IncubationTicks:  60,
		DurationTicks:    300,
		Symptoms: Symptoms{
			SpeedReduction:        0.2,
			EnergyDrainMultiplier: 1.2,
			MortalityRate:         0.0003,
			Contagious:            true,
		},
		ImmunityTicks:  900,
		BaseResistance: 0.4,
	},
	TypeChill: {
		Name:             "chill",
		TransmissionRate: 0.2,
		Trigger:          Trigger{Kind: TriggerTempBelow, Threshold: 8},
		IncubationTicks:  30,
		DurationTicks:    240,
		Symptoms: Symptoms{
			SpeedReduction:        0.4,
			EnergyDrainMultiplier: 1.3,
			MortalityRate:         0.0005,
		},
		ImmunityTicks:  600,
		BaseResistance: 0.5,
	},
	TypeParasite: {
		Name:             "parasite",
		TransmissionRate: 0.5,
		IncubationTicks:  180,
		DurationTicks:    900,
		Symptoms: Symptoms{
			SpeedReduction:        0.1,
			EnergyDrainMultiplier: 2.0,
			MortalityRate:         0.0001,
			BlocksReproduction:    true,
			Contagious:            true,
		},
		BaseResistance: 0.3,
	},
}

// Lookup returns the configuration of t. TypeNone yields the zero Config.
func Lookup(t Type) Config {
	if t >= NumTypes {
		return Config{}
	}
	return table[t]
}

// Resistance blends an organism's innate immunity with the disease's base
// resistance.
func Resistance(immunity float32, t Type) float32 {
	return (immunity + Lookup(t).BaseResistance) / 2
}

// InfectionChance is the probability that one exposure infects an organism
// with the given innate immunity.
func InfectionChance(t Type, immunity float32) float32 {
	return Lookup(t).TransmissionRate * (1 - Resistance(immunity, t))
}
