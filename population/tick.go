package population

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/ecosim/disease"
	"github.com/pthm-cable/ecosim/genome"
	"github.com/pthm-cable/ecosim/organism"
	"github.com/pthm-cable/ecosim/systems"
	"github.com/pthm-cable/ecosim/telemetry"
)

// Update advances the simulation by one tick of dt seconds:
//
//  1. remove dead organisms and consumed food
//  2. rebuild both spatial hashes
//  3. for each organism in order: wrap, perceive, decide, act, feed,
//     metabolize, advance disease, try to reproduce
//  4. append newborns, run disease orchestration and multicellular checks
//  5. regrow food, respawn a crashed population, flush telemetry
//
// Organisms later in the slice see the already updated state of earlier
// ones. Newborns act from the next tick. Errors are structural (a brain
// whose shape does not match its inputs) and leave the tick half applied.
func (m *Manager) Update(dt float32) error {
	m.startTick()

	m.phase(telemetry.PhaseCleanup)
	m.cleanup()

	m.phase(telemetry.PhaseSpatialGrid)
	m.rebuild()

	m.phase(telemetry.PhaseOrganisms)
	for i, o := range m.orgs {
		if !o.Alive {
			continue
		}
		if err := m.step(i, o, dt); err != nil {
			return fmt.Errorf("tick %d: %w", m.tick, err)
		}
	}
	for _, child := range m.births {
		m.add(child)
	}
	m.births = m.births[:0]

	m.phase(telemetry.PhaseDisease)
	report := m.disease.Update(m.rng, m.orgs, m.orgHash, m.tick, m.env.Temperature(m.tick), m.Density())
	m.collector.RecordInfections(report.Spread)
	m.collector.RecordEmerged(report.Emerged)

	m.phase(telemetry.PhaseMulticell)
	transitions, _ := m.multicell.Update(m.rng, m.orgs, m.tick)
	m.collector.RecordMulticell(transitions)

	m.phase(telemetry.PhaseFood)
	m.regrowFood(dt)
	m.respawn()

	m.phase(telemetry.PhaseTelemetry)
	m.tick++
	m.flushTelemetry()

	m.endTick()
	return nil
}

// step runs one organism's state machine for the tick.
func (m *Manager) step(i int, o *organism.Organism, dt float32) error {
	o.Wrap()

	radius := max(o.Genome.SensorRange, m.mateRadius)
	m.neighbors = m.orgHash.QueryInto(m.neighbors[:0], o.Position.X, o.Position.Y, radius)
	m.foodNeighbors = m.food.hash.QueryInto(m.foodNeighbors[:0], o.Position.X, o.Position.Y, o.Genome.SensorRange)

	if err := o.Decide(m.perceive(i)); err != nil {
		return err
	}
	o.Act(dt)

	m.forage(o)
	m.hunt(i, o)

	o.Metabolize(dt, m.env.Light(o.Position, m.tick))
	m.lifetimes.UpdatePeakEnergy(o.ID, o.Energy)

	if o.UpdateDisease(m.rng, m.tick, dt) == disease.OutcomeRecovered {
		m.collector.RecordRecovery()
	}

	m.reproduce(i, o)
	return nil
}

// perceive finds the nearest unconsumed food and nearest other live
// organism among the current neighbor lists.
func (m *Manager) perceive(i int) organism.Percept {
	var p organism.Percept
	for _, n := range m.foodNeighbors {
		if _, food := m.food.get(n.Key); food.Consumed {
			continue
		}
		if !p.FoodSeen || n.DistSq < p.Food.DistSq {
			p.Food = organism.Sighting{DX: n.DX, DY: n.DY, DistSq: n.DistSq}
			p.FoodSeen = true
		}
	}
	for _, n := range m.neighbors {
		if n.Key == i || !m.orgs[n.Key].Alive {
			continue
		}
		if !p.OrganismSeen || n.DistSq < p.Organism.DistSq {
			p.Organism = organism.Sighting{DX: n.DX, DY: n.DY, DistSq: n.DistSq}
			p.OrganismSeen = true
		}
	}
	return p
}

// forage eats the first food item within reach.
func (m *Manager) forage(o *organism.Organism) {
	if !systems.WantsFood(o) || o.Energy >= o.MaxEnergy {
		return
	}
	for _, n := range m.foodNeighbors {
		pos, food := m.food.get(n.Key)
		energy := food.Energy
		if o.Eat(*pos, food) {
			m.collector.RecordForage()
			m.lifetimes.RecordForage(o.ID, energy)
			return
		}
	}
}

// hunt attacks the nearest reachable prey, at most once per tick.
func (m *Manager) hunt(i int, o *organism.Organism) {
	if !o.Alive || !(o.Genome.Diet.EatsPlants() || o.Genome.Diet.Hunts()) || !m.predation.Hungry(o) {
		return
	}

	var prey *organism.Organism
	var best float32
	for _, n := range m.neighbors {
		if n.Key == i {
			continue
		}
		cand := m.orgs[n.Key]
		if !systems.CanPrey(o, cand) || !m.predation.InReach(o, cand) {
			continue
		}
		if prey == nil || n.DistSq < best {
			prey, best = cand, n.DistSq
		}
	}
	if prey == nil {
		return
	}

	success := m.predation.ResolvePredation(m.rng, o, prey)
	m.collector.RecordHunt(success)
	m.lifetimes.RecordHunt(o.ID, success)
}

// reproduce prefers a sexual partner when mating drive is high and one is
// near, and otherwise reproduces asexually. A rejected courtship uses up
// the attempt for this tick.
func (m *Manager) reproduce(i int, o *organism.Organism) {
	if !o.CanReproduce() || len(m.orgs)+len(m.births) >= m.cfg.Population.MaxOrganisms {
		return
	}

	var child *organism.Organism
	if o.WantsMate() {
		if mate := systems.FindMate(o, m.orgs, m.neighbors, m.mateRadius); mate != nil {
			if child = o.ReproduceWith(m.rng, m.ids, mate); child != nil {
				m.lifetimes.RecordChild(mate.ID)
			}
			m.recordBirth(o, child)
			return
		}
	}
	m.recordBirth(o, o.Reproduce(m.rng, m.ids))
}

func (m *Manager) recordBirth(parent, child *organism.Organism) {
	if child == nil {
		return
	}
	m.births = append(m.births, child)
	m.lifetimes.RecordChild(parent.ID)
	m.collector.RecordBirth()
	m.totalBirths++
}

// cleanup removes dead organisms, offering each to the hall of fame, and
// sweeps consumed food.
func (m *Manager) cleanup() {
	live := m.orgs[:0]
	for _, o := range m.orgs {
		if o.Alive {
			live = append(live, o)
			continue
		}
		m.collector.RecordDeath(o.Cause)
		m.hall.Consider(o, m.lifetimes.Remove(o.ID))
		m.totalDeaths++
	}
	clear(m.orgs[len(live):])
	m.orgs = live

	m.food.sweep()
}

// rebuild reindexes organisms by slice position and food by entity.
func (m *Manager) rebuild() {
	m.orgHash.Clear()
	for i, o := range m.orgs {
		o.Wrap()
		m.orgHash.Insert(i, o.Position.X, o.Position.Y)
	}
	m.food.rebuild()
}

// regrowFood spawns food at the configured rate up to the cap.
func (m *Manager) regrowFood(dt float32) {
	pc := m.cfg.Population
	m.foodDebt += float32(pc.FoodSpawnRate) * dt
	for m.foodDebt >= 1 {
		m.foodDebt--
		if m.food.count >= pc.MaxFood {
			m.foodDebt = 0
			break
		}
		m.SpawnFood(m.randomPosition())
	}
}

// respawn tops up a population that fell below the threshold, drawing a
// share of the newcomers from the hall of fame.
func (m *Manager) respawn() {
	pc := m.cfg.Population
	live := m.liveCount()
	if live == 0 && !m.extinct {
		m.extinct = true
		slog.Warn("population_extinct", "tick", m.tick, "births", m.totalBirths, "deaths", m.totalDeaths)
	}
	if live > 0 {
		m.extinct = false
	}
	if pc.RespawnCount <= 0 || live >= pc.RespawnThreshold {
		return
	}

	spawned, reseeded := 0, 0
	for ; spawned < pc.RespawnCount && live+spawned < pc.MaxOrganisms; spawned++ {
		o := m.fromHall()
		if o != nil {
			reseeded++
		} else {
			var err error
			if o, err = organism.New(m.rng, m.ids, m.params, genome.Random(m.rng), m.randomPosition()); err != nil {
				slog.Error("respawn failed", "error", err)
				return
			}
		}
		m.add(o)
	}
	m.collector.RecordRespawn(spawned)
	slog.Info("respawn", "tick", m.tick, "live", live, "spawned", spawned, "from_hall", reseeded)
}

// fromHall builds an organism from a sampled hall of fame entry with the
// configured probability, or returns nil.
func (m *Manager) fromHall() *organism.Organism {
	if m.rng.Float64() >= m.cfg.HallOfFame.ReseedFraction {
		return nil
	}
	entry := m.hall.SampleAny()
	if entry == nil {
		return nil
	}
	o, err := organism.FromTemplate(m.rng, m.ids, m.params, genome.Mutate(m.rng, entry.Genome), entry.Weights, m.randomPosition())
	if err != nil {
		// Mutation can change the brain shape the genome calls for.
		o, err = organism.FromTemplate(m.rng, m.ids, m.params, entry.Genome, entry.Weights, m.randomPosition())
		if err != nil {
			return nil
		}
	}
	return o
}

// flushTelemetry emits window stats, bookmarks and perf rows when a window
// has elapsed.
func (m *Manager) flushTelemetry() {
	if !m.collector.ShouldFlush(m.tick) {
		return
	}

	stats := m.collector.Flush(m.tick, m.Stats())
	m.lastWindow = &stats
	if m.logStats {
		stats.LogStats()
	}
	if err := m.output.WriteTelemetry(stats); err != nil {
		slog.Error("failed to write telemetry", "error", err)
	}

	for _, b := range m.bookmarks.Check(stats) {
		b.LogBookmark()
		if err := m.output.WriteBookmark(b); err != nil {
			slog.Error("failed to write bookmark", "error", err)
		}
	}

	if m.perf != nil {
		ps := m.perf.Stats()
		if m.logStats {
			slog.Info("perf", "window_end", m.tick, "stats", ps)
		}
		if err := m.output.WritePerf(ps, m.tick); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}
}

func (m *Manager) startTick() {
	if m.perf != nil {
		m.perf.StartTick()
	}
}

func (m *Manager) phase(p telemetry.Phase) {
	if m.perf != nil {
		m.perf.StartPhase(p)
	}
}

func (m *Manager) endTick() {
	if m.perf != nil {
		m.perf.EndTick()
	}
}
