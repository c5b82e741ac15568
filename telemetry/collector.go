package telemetry

import (
	"github.com/pthm-cable/ecosim/organism"
	"github.com/pthm-cable/ecosim/traits"
)

// Collector accumulates events within time windows and produces WindowStats.
type Collector struct {
	windowDurationSec   float64
	windowDurationTicks int64
	dt                  float64

	// Current window tracking
	windowStartTick int64

	// Event counters for current window
	births      int
	deaths      [organism.NumCauses]int
	respawned   int
	foodEaten   int
	hunts       int
	kills       int
	failedHunts int
	infections  int
	recoveries  int
	emerged     int
	transitions int
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per tick (used for tick-to-time conversion)
func NewCollector(windowDurationSec, dt float64) *Collector {
	ticksPerWindow := int64(windowDurationSec / dt)
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}

	return &Collector{
		windowDurationSec:   windowDurationSec,
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
	}
}

// RecordBirth records a birth event.
func (c *Collector) RecordBirth() {
	c.births++
}

// RecordDeath records a death event.
func (c *Collector) RecordDeath(cause organism.CauseOfDeath) {
	if cause >= organism.NumCauses {
		cause = organism.CauseNone
	}
	c.deaths[cause]++
}

// RecordRespawn records n organisms spawned to refill a crashed population.
func (c *Collector) RecordRespawn(n int) {
	c.respawned += n
}

// RecordForage records a food item eaten.
func (c *Collector) RecordForage() {
	c.foodEaten++
}

// RecordHunt records a predation attempt and its outcome.
func (c *Collector) RecordHunt(success bool) {
	c.hunts++
	if success {
		c.kills++
	} else {
		c.failedHunts++
	}
}

// RecordInfections records n new infections from any source.
func (c *Collector) RecordInfections(n int) {
	c.infections += n
}

// RecordEmerged records n infections caused by environmental emergence.
// They are also counted as infections.
func (c *Collector) RecordEmerged(n int) {
	c.emerged += n
	c.infections += n
}

// RecordRecovery records an organism clearing its infection.
func (c *Collector) RecordRecovery() {
	c.recoveries++
}

// RecordMulticell records n single-cell to multicellular transitions.
func (c *Collector) RecordMulticell(n int) {
	c.transitions += n
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int64) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Flush produces a WindowStats from the window counters and a census taken
// at the window end, then resets counters for the next window.
func (c *Collector) Flush(currentTick int64, census Census) WindowStats {
	var killRate float64
	if c.hunts > 0 {
		killRate = float64(c.kills) / float64(c.hunts)
	}

	var deaths int
	for _, n := range c.deaths {
		deaths += n
	}

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * c.dt,

		Population:    census.Population,
		Food:          census.Food,
		Plants:        census.ByKingdom[traits.KingdomPlant],
		Protists:      census.ByKingdom[traits.KingdomProtist],
		Animals:       census.ByKingdom[traits.KingdomAnimal],
		Producers:     census.ByDiet[traits.DietPhotosynthetic],
		Filterers:     census.ByDiet[traits.DietFilterFeeder],
		Herbivores:    census.ByDiet[traits.DietHerbivore],
		Omnivores:     census.ByDiet[traits.DietOmnivore],
		Carnivores:    census.ByDiet[traits.DietCarnivore],
		Infected:      census.Infected,
		Multicellular: census.Multicellular,

		Births:           c.births,
		Deaths:           deaths,
		DeathsStarvation: c.deaths[organism.CauseStarvation],
		DeathsInjury:     c.deaths[organism.CauseInjury],
		DeathsPredation:  c.deaths[organism.CausePredation],
		DeathsDisease:    c.deaths[organism.CauseDisease],
		DeathsOldAge:     c.deaths[organism.CauseOldAge],
		Respawned:        c.respawned,

		FoodEaten:   c.foodEaten,
		Hunts:       c.hunts,
		Kills:       c.kills,
		FailedHunts: c.failedHunts,
		KillRate:    killRate,

		Infections:           c.infections,
		Recoveries:           c.recoveries,
		Emerged:              c.emerged,
		MulticellTransitions: c.transitions,

		EnergyMean: census.EnergyMean,
		EnergyStd:  census.EnergyStd,
		EnergyP10:  census.EnergyP10,
		EnergyP50:  census.EnergyP50,
		EnergyP90:  census.EnergyP90,

		AgeMean:       census.AgeMean,
		OldestAge:     float64(census.OldestAge),
		SizeMean:      census.SizeMean,
		MaxGeneration: census.MaxGeneration,
	}

	// Reset for next window
	windowStart := currentTick
	*c = Collector{
		windowDurationSec:   c.windowDurationSec,
		windowDurationTicks: c.windowDurationTicks,
		dt:                  c.dt,
		windowStartTick:     windowStart,
	}

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int64 {
	return c.windowDurationTicks
}
