package disease

import "math/rand"

// Outcome is the result of advancing a State by one tick.
type Outcome uint8

const (
	OutcomeNone Outcome = iota
	OutcomeSymptomatic // Incubation ended this tick
	OutcomeRecovered
	OutcomeDied
)

// State is the infection state of one organism. At most one disease is
// active at a time; immunities are tracked per type.
type State struct {
	Current     Type
	InfectedAt  int64
	Incubating  bool
	Symptomatic bool
	Immunities  map[Type]int64 // disease -> tick at which immunity expires
}

// Infected reports whether any disease is active.
func (s *State) Infected() bool {
	return s.Current != TypeNone
}

// IsImmune reports whether the organism is immune to t at tick.
func (s *State) IsImmune(t Type, tick int64) bool {
	expiry, ok := s.Immunities[t]
	return ok && tick < expiry
}

// CanInfect reports whether t could take hold at tick.
func (s *State) CanInfect(t Type, tick int64) bool {
	return t != TypeNone && t < NumTypes && !s.Infected() && !s.IsImmune(t, tick)
}

// Infect starts incubating t without a transmission roll.
// It returns false if the organism is already infected or immune.
func (s *State) Infect(t Type, tick int64) bool {
	if !s.CanInfect(t, tick) {
		return false
	}
	s.Current = t
	s.InfectedAt = tick
	s.Incubating = true
	s.Symptomatic = false
	return true
}

// TryInfect rolls one exposure to t with probability InfectionChance.
func (s *State) TryInfect(rng *rand.Rand, t Type, tick int64, immunity float32) bool {
	if !s.CanInfect(t, tick) {
		return false
	}
	if rng.Float32() >= InfectionChance(t, immunity) {
		return false
	}
	return s.Infect(t, tick)
}

// Advance moves the state machine to tick. resistance in [0,1] scales down
// the per-tick mortality roll while symptomatic.
func (s *State) Advance(rng *rand.Rand, tick int64, resistance float32) Outcome {
	if !s.Infected() {
		return OutcomeNone
	}
	cfg := Lookup(s.Current)
	elapsed := tick - s.InfectedAt

	if elapsed >= cfg.IncubationTicks+cfg.DurationTicks {
		s.recover(cfg, tick)
		return OutcomeRecovered
	}

	outcome := OutcomeNone
	if s.Incubating && elapsed >= cfg.IncubationTicks {
		s.Incubating = false
		s.Symptomatic = true
		outcome = OutcomeSymptomatic
	}

	if s.Symptomatic && rng.Float32() < cfg.Symptoms.MortalityRate*(1-resistance) {
		return OutcomeDied
	}
	return outcome
}

func (s *State) recover(cfg Config, tick int64) {
	if cfg.ImmunityTicks > 0 {
		if s.Immunities == nil {
			s.Immunities = make(map[Type]int64)
		}
		s.Immunities[s.Current] = tick + cfg.ImmunityTicks
	}
	s.Current = TypeNone
	s.Incubating = false
	s.Symptomatic = false
}

// Symptoms returns the active symptom profile, or the zero profile when not
// symptomatic.
func (s *State) Symptoms() Symptoms {
	if !s.Symptomatic {
		return Symptoms{}
	}
	return Lookup(s.Current).Symptoms
}

// Contagious reports whether the organism can currently spread its disease.
func (s *State) Contagious() bool {
	return s.Symptoms().Contagious
}

// BlocksReproduction reports whether active symptoms prevent breeding.
func (s *State) BlocksReproduction() bool {
	return s.Symptoms().BlocksReproduction
}

// PurgeExpired drops immunities that have lapsed by tick.
func (s *State) PurgeExpired(tick int64) {
	for t, expiry := range s.Immunities {
		if tick >= expiry {
			delete(s.Immunities, t)
		}
	}
}
