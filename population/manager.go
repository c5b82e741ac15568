// Package population owns the live organisms and food and runs the
// per-tick simulation loop over them.
package population

import (
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/ecosim/components"
	"github.com/pthm-cable/ecosim/config"
	"github.com/pthm-cable/ecosim/disease"
	"github.com/pthm-cable/ecosim/environment"
	"github.com/pthm-cable/ecosim/genome"
	"github.com/pthm-cable/ecosim/organism"
	"github.com/pthm-cable/ecosim/systems"
	"github.com/pthm-cable/ecosim/telemetry"
)

// Options configures a Manager. Zero fields get defaults.
type Options struct {
	Seed   int64
	Config *config.Config        // Defaults to config.Cfg()
	IDs    organism.IDSource     // Defaults to a Sequence starting at zero
	Env    environment.Ambient   // Defaults to a noise Field seeded with Seed
	Hall   *telemetry.HallOfFame // Defaults to an empty hall

	// Output receives window telemetry, bookmarks and perf rows. Nil
	// disables file output.
	Output   *telemetry.OutputManager
	LogStats bool
	Perf     bool

	// Empty starts with no organisms and no food.
	Empty bool
}

// Manager owns the population. Organisms live in a slice indexed by
// position; food lives in an ECS world. Both are reindexed into spatial
// hashes once per tick.
type Manager struct {
	cfg        *config.Config
	params     *organism.Params
	predation  systems.PredationParams
	mateRadius float32
	rng        *rand.Rand
	ids        organism.IDSource
	env        environment.Ambient

	orgs   []*organism.Organism
	births []*organism.Organism
	food   *foodStore

	orgHash       *systems.SpatialHash[int]
	neighbors     []systems.Neighbor[int]
	foodNeighbors []systems.Neighbor[ecs.Entity]

	disease   *systems.DiseaseSystem
	multicell *systems.MulticellSystem

	collector *telemetry.Collector
	lifetimes *telemetry.LifetimeTracker
	hall      *telemetry.HallOfFame
	bookmarks *telemetry.BookmarkDetector
	perf      *telemetry.PerfCollector
	output    *telemetry.OutputManager
	logStats  bool

	tick        int64
	foodDebt    float32
	totalBirths int
	totalDeaths int
	extinct     bool
	lastWindow  *telemetry.WindowStats
}

// New creates a manager and, unless opts.Empty is set, spawns the initial
// organisms and food.
func New(opts Options) (*Manager, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Cfg()
	}
	rng := rand.New(rand.NewSource(opts.Seed))

	m := &Manager{
		cfg:        cfg,
		params:     organism.ParamsFromConfig(cfg),
		predation:  systems.PredationParamsFromConfig(cfg),
		mateRadius: float32(cfg.Reproduction.MateSearchRadius),
		rng:        rng,
		ids:        opts.IDs,
		env:        opts.Env,
		food:       newFoodStore(cfg.Derived.WorldW32, cfg.Derived.WorldH32, float32(cfg.Physics.FoodGridCellSize)),
		orgHash:    systems.NewSpatialHash[int](cfg.Derived.WorldW32, cfg.Derived.WorldH32, float32(cfg.Physics.GridCellSize)),
		disease:    systems.NewDiseaseSystem(cfg.Disease),
		multicell:  systems.NewMulticellSystem(cfg.Multicellular),
		collector:  telemetry.NewCollector(cfg.Telemetry.StatsWindow, cfg.Physics.DT),
		lifetimes:  telemetry.NewLifetimeTracker(),
		hall:       opts.Hall,
		bookmarks:  telemetry.NewBookmarkDetector(cfg.Telemetry.BookmarkHistory),
		output:     opts.Output,
		logStats:   opts.LogStats,
	}
	if m.ids == nil {
		m.ids = organism.NewSequence(0)
	}
	if m.env == nil {
		m.env = environment.NewField(cfg.Environment, cfg.Physics.DT, opts.Seed)
	}
	if m.hall == nil {
		m.hall = telemetry.NewHallOfFame(cfg.HallOfFame, rng)
	}
	if opts.Perf {
		m.perf = telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow)
	}

	if !opts.Empty {
		for i := 0; i < cfg.Population.Initial; i++ {
			if _, err := m.SpawnOrganism(genome.Random(rng), m.randomPosition()); err != nil {
				return nil, fmt.Errorf("spawning initial population: %w", err)
			}
		}
		for i := 0; i < cfg.Population.InitialFood; i++ {
			m.SpawnFood(m.randomPosition())
		}
	}

	slog.Info("population_created",
		"seed", opts.Seed,
		"organisms", len(m.orgs),
		"food", m.food.count,
		"world_w", cfg.World.Width,
		"world_h", cfg.World.Height,
	)
	return m, nil
}

// SpawnOrganism adds a generation-zero organism with genome g at pos.
func (m *Manager) SpawnOrganism(g genome.Genome, pos components.Position) (*organism.Organism, error) {
	o, err := organism.New(m.rng, m.ids, m.params, g, pos)
	if err != nil {
		return nil, err
	}
	m.add(o)
	return o, nil
}

// SpawnFood adds a food item with the configured payload at pos.
func (m *Manager) SpawnFood(pos components.Position) ecs.Entity {
	pos = components.Wrap(pos, m.cfg.Derived.WorldW32, m.cfg.Derived.WorldH32)
	return m.food.spawn(pos, float32(m.cfg.Population.FoodEnergy), float32(m.cfg.Population.FoodRadius))
}

func (m *Manager) add(o *organism.Organism) {
	m.orgs = append(m.orgs, o)
	m.lifetimes.Register(o.ID, m.tick)
}

func (m *Manager) randomPosition() components.Position {
	return components.Position{
		X: m.rng.Float32() * m.cfg.Derived.WorldW32,
		Y: m.rng.Float32() * m.cfg.Derived.WorldH32,
	}
}

// Organisms returns the organism collection. Entries may be dead until the
// next cleanup. Callers must not retain or modify the slice.
func (m *Manager) Organisms() []*organism.Organism {
	return m.orgs
}

// EachFood calls fn for every food item, including consumed items awaiting
// cleanup.
func (m *Manager) EachFood(fn func(pos components.Position, food components.Food)) {
	m.food.each(fn)
}

// FoodCount returns the number of food items, including consumed items
// awaiting cleanup.
func (m *Manager) FoodCount() int {
	return m.food.count
}

// Tick returns the index of the next tick to run.
func (m *Manager) Tick() int64 {
	return m.tick
}

// HallOfFame returns the hall of fame fed by dead organisms.
func (m *Manager) HallOfFame() *telemetry.HallOfFame {
	return m.hall
}

// LastWindow returns the most recently flushed window stats, or nil.
func (m *Manager) LastWindow() *telemetry.WindowStats {
	return m.lastWindow
}

// Stats aggregates the current population. It does not modify any state.
func (m *Manager) Stats() telemetry.Census {
	c := telemetry.TakeCensus(m.tick, m.orgs, m.food.count)
	c.TotalBirths = m.totalBirths
	c.TotalDeaths = m.totalDeaths
	return c
}

// Density returns live organisms per systems.DensityArea square units.
func (m *Manager) Density() float32 {
	area := m.cfg.World.Width * m.cfg.World.Height
	return float32(float64(m.liveCount()) * systems.DensityArea / area)
}

func (m *Manager) liveCount() int {
	n := 0
	for _, o := range m.orgs {
		if o.Alive {
			n++
		}
	}
	return n
}

// TriggerOutbreak infects live organisms with disease t at the given rate,
// optionally restricted to radius around center. It returns the number of
// new infections.
func (m *Manager) TriggerOutbreak(t disease.Type, rate float32, center *components.Position, radius float32) int {
	n := systems.TriggerOutbreak(m.rng, t, m.orgs, m.tick, rate, center, radius)
	m.collector.RecordInfections(n)
	return n
}

// Close flushes a final hall of fame to the output directory.
func (m *Manager) Close() error {
	for _, o := range m.orgs {
		if o.Alive {
			m.hall.Consider(o, m.lifetimes.Get(o.ID))
		}
	}
	return m.output.WriteHallOfFame(m.hall)
}
