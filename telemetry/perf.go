package telemetry

import (
	"log/slog"
	"time"
)

// Phase is one timed section of a simulation tick.
type Phase int

// Phases in tick order.
const (
	PhaseCleanup Phase = iota
	PhaseSpatialGrid
	PhaseOrganisms
	PhaseDisease
	PhaseMulticell
	PhaseFood
	PhaseTelemetry

	numPhases
	phaseNone Phase = -1
)

var phaseNames = [numPhases]string{
	"cleanup", "spatial_grid", "organisms", "disease", "multicell", "food", "telemetry",
}

func (p Phase) String() string {
	if p < 0 || p >= numPhases {
		return "unknown"
	}
	return phaseNames[p]
}

// phaseTimes holds per-phase durations for one tick.
type phaseTimes [numPhases]time.Duration

// PerfCollector times tick phases over a ring of the last windowSize ticks.
// It allocates nothing per tick.
type PerfCollector struct {
	ticks  []time.Duration
	phases []phaseTimes
	next   int
	filled int

	current    phaseTimes
	tickStart  time.Time
	phaseStart time.Time
	active     Phase
}

// NewPerfCollector creates a collector averaging over windowSize ticks.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{
		ticks:  make([]time.Duration, windowSize),
		phases: make([]phaseTimes, windowSize),
		active: phaseNone,
	}
}

// StartTick begins timing a new tick.
func (p *PerfCollector) StartTick() {
	p.tickStart = time.Now()
	p.current = phaseTimes{}
	p.active = phaseNone
}

// StartPhase closes the running phase, if any, and starts timing phase.
func (p *PerfCollector) StartPhase(phase Phase) {
	now := time.Now()
	p.closePhase(now)
	p.phaseStart = now
	p.active = phase
}

// EndTick closes the running phase and records the tick.
func (p *PerfCollector) EndTick() {
	now := time.Now()
	p.closePhase(now)

	p.ticks[p.next] = now.Sub(p.tickStart)
	p.phases[p.next] = p.current
	p.next = (p.next + 1) % len(p.ticks)
	p.filled = min(p.filled+1, len(p.ticks))
}

func (p *PerfCollector) closePhase(now time.Time) {
	if p.active >= 0 && p.active < numPhases {
		p.current[p.active] += now.Sub(p.phaseStart)
	}
}

// PerfStats summarizes tick timing over the collector's window.
type PerfStats struct {
	AvgTickDuration time.Duration
	MinTickDuration time.Duration
	MaxTickDuration time.Duration
	TicksPerSecond  float64

	// PhasePct is each phase's share of the average tick, in percent.
	PhasePct [numPhases]float64
	// Slowest is the phase with the largest share.
	Slowest Phase
}

// Stats aggregates the recorded ticks.
func (p *PerfCollector) Stats() PerfStats {
	s := PerfStats{Slowest: phaseNone}
	if p.filled == 0 {
		return s
	}

	var total time.Duration
	var sums phaseTimes
	for i := 0; i < p.filled; i++ {
		d := p.ticks[i]
		total += d
		if i == 0 || d < s.MinTickDuration {
			s.MinTickDuration = d
		}
		s.MaxTickDuration = max(s.MaxTickDuration, d)
		for ph, pd := range p.phases[i] {
			sums[ph] += pd
		}
	}

	s.AvgTickDuration = total / time.Duration(p.filled)
	if total <= 0 {
		return s
	}
	s.TicksPerSecond = float64(time.Second) / float64(s.AvgTickDuration)
	for ph, sum := range sums {
		s.PhasePct[ph] = float64(sum) / float64(total) * 100
		if sum > 0 && (s.Slowest == phaseNone || s.PhasePct[ph] > s.PhasePct[s.Slowest]) {
			s.Slowest = Phase(ph)
		}
	}
	return s
}

// LogValue implements slog.LogValuer. Phases under 0.1% are omitted.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_tick_us", s.AvgTickDuration.Microseconds()),
		slog.Int64("min_tick_us", s.MinTickDuration.Microseconds()),
		slog.Int64("max_tick_us", s.MaxTickDuration.Microseconds()),
		slog.Int("ticks_per_sec", int(s.TicksPerSecond)),
		slog.String("slowest", s.Slowest.String()),
	}
	for ph, pct := range s.PhasePct {
		if pct > 0.1 {
			attrs = append(attrs, slog.Float64(Phase(ph).String()+"_pct", float64(int(pct*10))/10))
		}
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is one perf.csv row.
type PerfStatsCSV struct {
	WindowEnd      int64   `csv:"window_end"`
	AvgTickUS      int64   `csv:"avg_tick_us"`
	MinTickUS      int64   `csv:"min_tick_us"`
	MaxTickUS      int64   `csv:"max_tick_us"`
	TicksPerSec    float64 `csv:"ticks_per_sec"`
	Slowest        string  `csv:"slowest"`
	CleanupPct     float64 `csv:"cleanup_pct"`
	SpatialGridPct float64 `csv:"spatial_grid_pct"`
	OrganismsPct   float64 `csv:"organisms_pct"`
	DiseasePct     float64 `csv:"disease_pct"`
	MulticellPct   float64 `csv:"multicell_pct"`
	FoodPct        float64 `csv:"food_pct"`
	TelemetryPct   float64 `csv:"telemetry_pct"`
}

// ToCSV flattens s into a perf.csv row for the window ending at windowEnd.
func (s PerfStats) ToCSV(windowEnd int64) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:      windowEnd,
		AvgTickUS:      s.AvgTickDuration.Microseconds(),
		MinTickUS:      s.MinTickDuration.Microseconds(),
		MaxTickUS:      s.MaxTickDuration.Microseconds(),
		TicksPerSec:    s.TicksPerSecond,
		Slowest:        s.Slowest.String(),
		CleanupPct:     s.PhasePct[PhaseCleanup],
		SpatialGridPct: s.PhasePct[PhaseSpatialGrid],
		OrganismsPct:   s.PhasePct[PhaseOrganisms],
		DiseasePct:     s.PhasePct[PhaseDisease],
		MulticellPct:   s.PhasePct[PhaseMulticell],
		FoodPct:        s.PhasePct[PhaseFood],
		TelemetryPct:   s.PhasePct[PhaseTelemetry],
	}
}
