package main

import (
	"log/slog"
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/ecosim/config"
	"github.com/pthm-cable/ecosim/population"
	"github.com/pthm-cable/ecosim/telemetry"
	"github.com/pthm-cable/ecosim/traits"
)

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params      *ParamVector
	maxTicks    int64
	seeds       []int64
	baseConfig  *config.Config
	statsWindow float64

	// Best run tracking
	mu             sync.Mutex
	bestFitness    float64
	bestHallOfFame *telemetry.HallOfFame
	last           Evaluation
}

// Evaluation summarizes one Evaluate call, averaged over seeds.
type Evaluation struct {
	Fitness       float64
	Quality       float64
	SurvivalTicks float64
	// Kingdoms holds the mean kingdom counts at the last window.
	Kingdoms [traits.NumKingdoms]float64
	// Collapsed counts the seeds that stopped because of each kingdom.
	Collapsed [traits.NumKingdoms]int
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks int64, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxTicks:    maxTicks,
		seeds:       seeds,
		baseConfig:  baseCfg,
		statsWindow: 10.0, // 10 seconds per window
		bestFitness: math.Inf(1),
	}
}

// BestHallOfFame returns the hall of fame from the best evaluation.
func (fe *FitnessEvaluator) BestHallOfFame() *telemetry.HallOfFame {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.bestHallOfFame
}

// LastEvaluation returns the summary of the most recent Evaluate call.
func (fe *FitnessEvaluator) LastEvaluation() Evaluation {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.last
}

// A kingdom that stays below minViablePop for extinctionGraceWindows
// consecutive windows counts as functionally extinct.
const (
	minViablePop           = 3
	extinctionGraceWindows = 3
)

// runResult holds the results from a single simulation run.
type runResult struct {
	survivalTicks int64 // ticks before functional extinction (or maxTicks if survived)
	windowStats   []telemetry.WindowStats
	hallOfFame    *telemetry.HallOfFame
	collapsed     traits.Kingdom // NumKingdoms unless a kingdom ended the run
}

// kingdoms returns the kingdom counts of the last recorded window.
func (r *runResult) kingdoms() [traits.NumKingdoms]int {
	if len(r.windowStats) == 0 {
		return [traits.NumKingdoms]int{}
	}
	return kingdomCounts(&r.windowStats[len(r.windowStats)-1])
}

func kingdomCounts(w *telemetry.WindowStats) [traits.NumKingdoms]int {
	return [traits.NumKingdoms]int{
		traits.KingdomPlant:   w.Plants,
		traits.KingdomProtist: w.Protists,
		traits.KingdomAnimal:  w.Animals,
	}
}

// Evaluate computes fitness for a parameter vector (lower = better).
// Fitness is negative survival ticks: longer survival = lower (better) fitness.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	results := make([]*runResult, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			results[idx] = fe.runSimulation(fe.configFor(x), s)
		}(i, seed)
	}
	wg.Wait()

	var ev Evaluation
	bestSeedFitness := math.Inf(1)
	var bestSeedHallOfFame *telemetry.HallOfFame

	for _, r := range results {
		fitness := computeFitness(r)
		ev.Fitness += fitness
		ev.Quality += computeQuality(r.windowStats)
		ev.SurvivalTicks += float64(r.survivalTicks)
		for k, n := range r.kingdoms() {
			ev.Kingdoms[k] += float64(n)
		}
		if r.collapsed < traits.NumKingdoms {
			ev.Collapsed[r.collapsed]++
		}
		if fitness < bestSeedFitness {
			bestSeedFitness = fitness
			bestSeedHallOfFame = r.hallOfFame
		}
	}

	n := float64(len(fe.seeds))
	ev.Fitness /= n
	ev.Quality /= n
	ev.SurvivalTicks /= n
	for k := range ev.Kingdoms {
		ev.Kingdoms[k] /= n
	}

	fe.mu.Lock()
	if ev.Fitness < fe.bestFitness {
		fe.bestFitness = ev.Fitness
		fe.bestHallOfFame = bestSeedHallOfFame
	}
	fe.last = ev
	fe.mu.Unlock()

	return ev.Fitness
}

// configFor returns a private copy of the base config with x applied.
// Respawn is disabled so survival measures a self-sustaining ecosystem.
func (fe *FitnessEvaluator) configFor(x []float64) *config.Config {
	cfg := fe.baseConfig.Clone()
	cfg.Population.RespawnCount = 0
	cfg.Telemetry.StatsWindow = fe.statsWindow
	fe.params.ApplyToConfig(cfg, x)
	return cfg
}

// runSimulation executes a single headless simulation run until functional
// extinction or maxTicks, whichever comes first.
func (fe *FitnessEvaluator) runSimulation(cfg *config.Config, seed int64) *runResult {
	result := &runResult{survivalTicks: fe.maxTicks, collapsed: traits.NumKingdoms}

	m, err := population.New(population.Options{Seed: seed, Config: cfg})
	if err != nil {
		slog.Error("failed to create population", "seed", seed, "error", err)
		result.survivalTicks = 0
		return result
	}

	var below [traits.NumKingdoms]int // consecutive windows under minViablePop
	var last *telemetry.WindowStats

	for m.Tick() < fe.maxTicks {
		if err := m.Update(cfg.Derived.DT32); err != nil {
			slog.Error("simulation failed", "seed", seed, "tick", m.Tick(), "error", err)
			result.survivalTicks = m.Tick()
			break
		}

		w := m.LastWindow()
		if w == nil || w == last {
			continue
		}
		last = w
		result.windowStats = append(result.windowStats, *w)

		if w.Population == 0 {
			result.survivalTicks = m.Tick()
			break
		}
		if k, extinct := functionallyExtinct(&below, w); extinct {
			result.survivalTicks = m.Tick()
			result.collapsed = k
			slog.Debug("kingdom collapsed", "seed", seed, "tick", m.Tick(), "kingdom", k)
			break
		}
	}

	if err := m.Close(); err != nil {
		slog.Warn("failed to close population", "seed", seed, "error", err)
	}
	result.hallOfFame = m.HallOfFame()
	return result
}

// functionallyExtinct updates the per-kingdom low-population streaks and
// reports the first kingdom that has been below minViablePop for too long.
func functionallyExtinct(below *[traits.NumKingdoms]int, w *telemetry.WindowStats) (traits.Kingdom, bool) {
	for k, n := range kingdomCounts(w) {
		if n < minViablePop {
			below[k]++
		} else {
			below[k] = 0
		}
		if below[k] >= extinctionGraceWindows {
			return traits.Kingdom(k), true
		}
	}
	return traits.NumKingdoms, false
}

// computeFitness calculates the scalar fitness (lower = better).
// Formula: -(survivalTicks × (1.0 + 0.2 × quality))
// Survival dominates; quality adds up to 20% bonus to differentiate
// configs with similar survival.
func computeFitness(r *runResult) float64 {
	survival := float64(r.survivalTicks)
	quality := computeQuality(r.windowStats)
	return -(survival * (1.0 + 0.2*quality))
}

// Quality component weights.
const (
	qualityWeightBalance   = 0.30
	qualityWeightStability = 0.25
	qualityWeightEnergy    = 0.25
	qualityWeightHunting   = 0.20

	qualityWarmupWindows = 3 // skip first N windows (warmup)
	qualityMinPop        = 3 // exclude windows where any kingdom < this
)

// computeQuality computes ecosystem quality ∈ [0, 1] from window stats.
func computeQuality(windows []telemetry.WindowStats) float64 {
	if len(windows) <= qualityWarmupWindows {
		return 0
	}
	valid := windows[qualityWarmupWindows:]

	var balanceSum, energySum, huntSum float64
	var count, huntCount int
	pops := make([]float64, 0, len(valid))

	for _, w := range valid {
		if w.Plants < qualityMinPop || w.Protists < qualityMinPop || w.Animals < qualityMinPop {
			continue
		}
		pops = append(pops, float64(w.Population))

		// 1. Kingdom balance: Shannon evenness over the three kingdoms
		balanceSum += evenness(float64(w.Plants), float64(w.Protists), float64(w.Animals))

		// 2. Energy health: median energy ratio near 0.5
		energySum += math.Exp(-math.Pow((w.EnergyP50-0.5)/0.2, 2))

		// 3. Hunting activity: kill rate near 0.3 when hunts happen
		if w.Hunts > 0 {
			huntSum += math.Exp(-math.Pow((w.KillRate-0.3)/0.15, 2))
			huntCount++
		}
		count++
	}

	if count == 0 {
		return 0
	}

	stabilityScore := 0.0
	if len(pops) >= 2 {
		mean, std := stat.MeanStdDev(pops, nil)
		if mean > 0 {
			cv := std / mean
			stabilityScore = math.Exp(-cv * cv)
		}
	}

	huntScore := 0.0
	if huntCount > 0 {
		huntScore = huntSum / float64(huntCount)
	}

	quality := qualityWeightBalance*balanceSum/float64(count) +
		qualityWeightStability*stabilityScore +
		qualityWeightEnergy*energySum/float64(count) +
		qualityWeightHunting*huntScore

	return clamp01(quality)
}

// evenness returns Shannon entropy of the counts divided by its maximum,
// in [0, 1].
func evenness(counts ...float64) float64 {
	var total float64
	for _, c := range counts {
		total += c
	}
	if total == 0 || len(counts) < 2 {
		return 0
	}
	p := make([]float64, 0, len(counts))
	for _, c := range counts {
		p = append(p, c/total)
	}
	return stat.Entropy(p) / math.Log(float64(len(counts)))
}

// clamp01 clamps x to [0, 1].
func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
