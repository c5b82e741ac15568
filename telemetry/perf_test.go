package telemetry

import (
	"testing"
	"time"
)

func TestPerfCollectorTracksPhases(t *testing.T) {
	pc := NewPerfCollector(10)
	for i := 0; i < 5; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseSpatialGrid)
		time.Sleep(100 * time.Microsecond)
		pc.StartPhase(PhaseOrganisms)
		time.Sleep(400 * time.Microsecond)
		pc.EndTick()
	}

	s := pc.Stats()
	if s.AvgTickDuration <= 0 || s.TicksPerSecond <= 0 {
		t.Fatalf("no timing recorded: %+v", s)
	}
	if s.MinTickDuration > s.AvgTickDuration || s.AvgTickDuration > s.MaxTickDuration {
		t.Errorf("min/avg/max out of order: %v %v %v", s.MinTickDuration, s.AvgTickDuration, s.MaxTickDuration)
	}
	if s.PhasePct[PhaseSpatialGrid] <= 0 || s.PhasePct[PhaseOrganisms] <= s.PhasePct[PhaseSpatialGrid] {
		t.Errorf("phase shares grid=%v organisms=%v", s.PhasePct[PhaseSpatialGrid], s.PhasePct[PhaseOrganisms])
	}
	if s.PhasePct[PhaseDisease] != 0 {
		t.Errorf("untimed phase share = %v, want 0", s.PhasePct[PhaseDisease])
	}
	if s.Slowest != PhaseOrganisms {
		t.Errorf("slowest = %v, want organisms", s.Slowest)
	}
	var total float64
	for _, pct := range s.PhasePct {
		total += pct
	}
	if total > 100.0001 {
		t.Errorf("phase shares sum to %v%%", total)
	}
}

func TestPerfCollectorRollingWindow(t *testing.T) {
	pc := NewPerfCollector(5)
	for i := 0; i < 12; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseFood)
		pc.EndTick()
	}
	if pc.filled != 5 {
		t.Errorf("filled = %d, want 5", pc.filled)
	}
	if s := pc.Stats(); s.AvgTickDuration <= 0 {
		t.Error("no timing after the window wrapped")
	}
}

func TestPerfCollectorEmpty(t *testing.T) {
	s := NewPerfCollector(0).Stats()
	if s.AvgTickDuration != 0 || s.TicksPerSecond != 0 {
		t.Errorf("empty collector stats = %+v", s)
	}
	if s.Slowest.String() != "unknown" {
		t.Errorf("slowest = %v, want unknown", s.Slowest)
	}
}

func TestPerfStatsToCSV(t *testing.T) {
	var s PerfStats
	s.AvgTickDuration = 1500 * time.Microsecond
	s.MinTickDuration = time.Millisecond
	s.MaxTickDuration = 3 * time.Millisecond
	s.TicksPerSecond = 666.6
	s.PhasePct[PhaseOrganisms] = 70
	s.PhasePct[PhaseDisease] = 20
	s.Slowest = PhaseOrganisms

	row := s.ToCSV(1200)
	if row.WindowEnd != 1200 || row.AvgTickUS != 1500 || row.MinTickUS != 1000 || row.MaxTickUS != 3000 {
		t.Errorf("unexpected timing columns: %+v", row)
	}
	if row.OrganismsPct != 70 || row.DiseasePct != 20 || row.FoodPct != 0 {
		t.Errorf("unexpected phase columns: %+v", row)
	}
	if row.Slowest != "organisms" {
		t.Errorf("slowest column = %q", row.Slowest)
	}
}
