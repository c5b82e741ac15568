package telemetry

import (
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pthm-cable/ecosim/components"
	"github.com/pthm-cable/ecosim/config"
	"github.com/pthm-cable/ecosim/organism"
	"github.com/pthm-cable/ecosim/traits"
)

func TestLifetimeTracker(t *testing.T) {
	lt := NewLifetimeTracker()
	lt.Register(1, 50)

	lt.RecordHunt(1, true)
	lt.RecordHunt(1, false)
	lt.RecordChild(1)
	lt.RecordForage(1, 30)
	lt.RecordForage(1, 12)
	lt.UpdatePeakEnergy(1, 80)
	lt.UpdatePeakEnergy(1, 60)
	lt.RecordChild(99) // unknown IDs are ignored

	want := &LifetimeStats{BirthTick: 50, Hunts: 2, Kills: 1, Children: 1, PeakEnergy: 80, TotalForaged: 42}
	if diff := cmp.Diff(want, lt.Get(1)); diff != "" {
		t.Errorf("lifetime stats mismatch (-want +got):\n%s", diff)
	}

	if got := lt.Remove(1); got == nil || lt.Len() != 0 || lt.Get(1) != nil {
		t.Error("Remove did not hand back and forget the stats")
	}
}

func TestHallOfFameEntryCriteria(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	ids := organism.NewSequence(0)
	cfg := config.Cfg().HallOfFame
	hof := NewHallOfFame(cfg, rng)

	tests := []struct {
		name  string
		diet  traits.Diet
		age   float32
		stats LifetimeStats
		want  bool
	}{
		{"parent", traits.DietHerbivore, 1, LifetimeStats{Children: cfg.MinChildren}, true},
		{"young and childless", traits.DietHerbivore, 1, LifetimeStats{}, false},
		{"old grazer", traits.DietHerbivore, float32(cfg.MinSurvival), LifetimeStats{}, true},
		{"old hunter without kills", traits.DietCarnivore, float32(cfg.MinSurvival), LifetimeStats{}, false},
		{"old hunter with kills", traits.DietCarnivore, float32(cfg.MinSurvival), LifetimeStats{Kills: cfg.MinKills}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := newOrganism(t, rng, ids, tt.diet, 1)
			o.Age = tt.age
			stats := tt.stats
			if got := hof.Consider(o, &stats); got != tt.want {
				t.Errorf("Consider = %v, want %v", got, tt.want)
			}
		})
	}

	if hof.Consider(newOrganism(t, rng, ids, traits.DietHerbivore, 1), nil) {
		t.Error("organism without lifetime stats admitted")
	}
}

func TestHallOfFameKeepsBest(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	ids := organism.NewSequence(0)
	cfg := config.Cfg().HallOfFame
	cfg.Size = 3
	hof := NewHallOfFame(cfg, rng)

	for children := 2; children <= 7; children++ {
		o := newOrganism(t, rng, ids, traits.DietPhotosynthetic, 1)
		hof.Consider(o, &LifetimeStats{Children: children})
	}

	if hof.Size(traits.KingdomPlant) != 3 {
		t.Fatalf("hall size %d, want 3", hof.Size(traits.KingdomPlant))
	}
	if hof.Size(traits.KingdomAnimal) != 0 {
		t.Error("plant entries leaked into the animal hall")
	}
	wantTop := float32(7) * float32(cfg.ChildrenWeight)
	if hof.TopFitness(traits.KingdomPlant) != wantTop {
		t.Errorf("top fitness %v, want %v", hof.TopFitness(traits.KingdomPlant), wantTop)
	}

	// A weaker entry does not displace a full hall.
	weak := newOrganism(t, rng, ids, traits.DietPhotosynthetic, 1)
	if hof.Consider(weak, &LifetimeStats{Children: 2}) {
		t.Error("weak entry admitted to a full hall")
	}

	for i := 0; i < 50; i++ {
		e := hof.Sample(traits.KingdomPlant)
		if e == nil || e.Children < 5 {
			t.Fatalf("sampled entry %+v outside the kept top three", e)
		}
	}
	if hof.Sample(traits.KingdomProtist) != nil {
		t.Error("sample from an empty hall should be nil")
	}
	if e := hof.SampleAny(); e == nil || e.Genome.Kingdom != traits.KingdomPlant {
		t.Errorf("SampleAny = %+v, want a plant entry", e)
	}
}

func TestHallOfFameFileRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	ids := organism.NewSequence(0)
	cfg := config.Cfg().HallOfFame
	hof := NewHallOfFame(cfg, rng)

	for _, diet := range []traits.Diet{traits.DietPhotosynthetic, traits.DietFilterFeeder, traits.DietCarnivore} {
		o := newOrganism(t, rng, ids, diet, 1)
		hof.Consider(o, &LifetimeStats{Children: 4, Kills: 3})
	}

	dir := t.TempDir()
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager: %v", err)
	}
	if err := om.WriteHallOfFame(hof); err != nil {
		t.Fatalf("WriteHallOfFame: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	loaded, err := LoadHallOfFameFromFile(filepath.Join(dir, "hall_of_fame.json"), cfg, rng)
	if err != nil {
		t.Fatalf("LoadHallOfFameFromFile: %v", err)
	}
	for k := traits.Kingdom(0); k < traits.NumKingdoms; k++ {
		if loaded.Size(k) != 1 {
			t.Errorf("kingdom %v: loaded %d entries, want 1", k, loaded.Size(k))
		}
		if diff := cmp.Diff(hof.Sample(k), loaded.Sample(k)); diff != "" {
			t.Errorf("kingdom %v entry mismatch (-saved +loaded):\n%s", k, diff)
		}
	}

	restored := loaded.Sample(traits.KingdomAnimal)
	o, err := organism.FromTemplate(rng, ids, organism.ParamsFromConfig(config.Cfg()), restored.Genome, restored.Weights, components.Position{X: 10, Y: 10})
	if err != nil {
		t.Fatalf("FromTemplate: %v", err)
	}
	if o.Genome.Diet != traits.DietCarnivore || o.Generation != 0 {
		t.Errorf("restored organism diet=%v generation=%d", o.Genome.Diet, o.Generation)
	}
}

func TestOutputManagerCSV(t *testing.T) {
	dir := t.TempDir()
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager: %v", err)
	}

	for i := int64(1); i <= 3; i++ {
		if err := om.WriteTelemetry(WindowStats{WindowEndTick: i * 600, Population: int(i) * 10}); err != nil {
			t.Fatalf("WriteTelemetry: %v", err)
		}
	}
	if err := om.WriteBookmark(Bookmark{Type: BookmarkEpidemic, Tick: 600, Description: "spike"}); err != nil {
		t.Fatalf("WriteBookmark: %v", err)
	}
	if err := om.WriteConfig(config.Cfg()); err != nil {
		t.Fatalf("WriteConfig: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "telemetry.csv"))
	if err != nil {
		t.Fatalf("reading telemetry.csv: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 4 {
		t.Fatalf("telemetry.csv has %d lines, want header + 3 rows", len(lines))
	}
	if !strings.HasPrefix(lines[0], "window_end,sim_time,population,") {
		t.Errorf("unexpected header %q", lines[0])
	}
	if strings.Count(string(data), "window_end") != 1 {
		t.Error("header written more than once")
	}

	if _, err := config.Load(filepath.Join(dir, "config.yaml")); err != nil {
		t.Errorf("written config does not load back: %v", err)
	}
}

func TestOutputManagerDisabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil || om != nil {
		t.Fatalf("NewOutputManager(\"\") = %v, %v; want nil, nil", om, err)
	}
	if err := om.WriteTelemetry(WindowStats{}); err != nil {
		t.Errorf("nil manager WriteTelemetry: %v", err)
	}
	if om.Dir() != "" {
		t.Error("nil manager has a directory")
	}
}
