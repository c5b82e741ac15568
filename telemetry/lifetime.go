package telemetry

import "github.com/pthm-cable/ecosim/organism"

// LifetimeStats tracks per-organism statistics over its lifetime.
type LifetimeStats struct {
	BirthTick int64

	Hunts    int
	Kills    int
	Children int

	PeakEnergy   float32
	TotalForaged float32 // Energy gained from food items
}

// LifetimeTracker manages per-organism lifetime statistics.
type LifetimeTracker struct {
	stats map[organism.ID]*LifetimeStats
}

// NewLifetimeTracker creates a new lifetime tracker.
func NewLifetimeTracker() *LifetimeTracker {
	return &LifetimeTracker{
		stats: make(map[organism.ID]*LifetimeStats),
	}
}

// Register creates lifetime stats for a new organism.
func (lt *LifetimeTracker) Register(id organism.ID, birthTick int64) {
	lt.stats[id] = &LifetimeStats{BirthTick: birthTick}
}

// Get returns the lifetime stats for an organism, or nil if not found.
func (lt *LifetimeTracker) Get(id organism.ID) *LifetimeStats {
	return lt.stats[id]
}

// Remove removes an organism's stats and returns them.
func (lt *LifetimeTracker) Remove(id organism.ID) *LifetimeStats {
	stats := lt.stats[id]
	delete(lt.stats, id)
	return stats
}

// Len returns the number of tracked organisms.
func (lt *LifetimeTracker) Len() int {
	return len(lt.stats)
}

// RecordHunt increments the hunt count and, on success, the kill count.
func (lt *LifetimeTracker) RecordHunt(id organism.ID, success bool) {
	if s := lt.stats[id]; s != nil {
		s.Hunts++
		if success {
			s.Kills++
		}
	}
}

// RecordChild increments the child count.
func (lt *LifetimeTracker) RecordChild(id organism.ID) {
	if s := lt.stats[id]; s != nil {
		s.Children++
	}
}

// RecordForage adds energy gained from a food item.
func (lt *LifetimeTracker) RecordForage(id organism.ID, amount float32) {
	if s := lt.stats[id]; s != nil {
		s.TotalForaged += amount
	}
}

// UpdatePeakEnergy records energy if it exceeds the previous peak.
func (lt *LifetimeTracker) UpdatePeakEnergy(id organism.ID, energy float32) {
	if s := lt.stats[id]; s != nil && energy > s.PeakEnergy {
		s.PeakEnergy = energy
	}
}
