package telemetry

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"sort"

	"github.com/pthm-cable/ecosim/config"
	"github.com/pthm-cable/ecosim/genome"
	"github.com/pthm-cable/ecosim/neural"
	"github.com/pthm-cable/ecosim/organism"
	"github.com/pthm-cable/ecosim/traits"
)

// HallEntry represents a successful organism's genome, brain and fitness.
type HallEntry struct {
	Genome     genome.Genome       `json:"genome"`
	Weights    neural.BrainWeights `json:"brain"`
	Fitness    float32             `json:"fitness"`
	ID         organism.ID         `json:"id"`
	Generation int                 `json:"generation"`
	Children   int                 `json:"children"`
	Kills      int                 `json:"kills"`
	Survival   float32             `json:"survival_sec"`
	Foraging   float32             `json:"foraging"`
}

// HallOfFame stores proven lineages for reseeding when populations crash.
// There is one hall per kingdom.
type HallOfFame struct {
	halls   [traits.NumKingdoms][]HallEntry
	maxSize int
	cfg     config.HallOfFameConfig
	rng     *rand.Rand
}

// NewHallOfFame creates a hall of fame with cfg.Size entries per kingdom.
func NewHallOfFame(cfg config.HallOfFameConfig, rng *rand.Rand) *HallOfFame {
	maxSize := max(cfg.Size, 1)
	hof := &HallOfFame{maxSize: maxSize, cfg: cfg, rng: rng}
	for i := range hof.halls {
		hof.halls[i] = make([]HallEntry, 0, maxSize)
	}
	return hof
}

// Consider evaluates a dead organism for hall of fame entry.
// Returns true if the organism was added to the hall.
func (hof *HallOfFame) Consider(o *organism.Organism, stats *LifetimeStats) bool {
	if stats == nil || !hof.meetsEntryCriteria(o, stats) {
		return false
	}

	entry := HallEntry{
		Genome:     o.Genome,
		Weights:    o.Brain.MarshalWeights(),
		Fitness:    hof.calculateFitness(o, stats),
		ID:         o.ID,
		Generation: o.Generation,
		Children:   stats.Children,
		Kills:      stats.Kills,
		Survival:   o.Age,
		Foraging:   stats.TotalForaged,
	}

	k := o.Genome.Kingdom
	before := len(hof.halls[k])
	var inserted bool
	hof.halls[k], inserted = hof.insertEntry(hof.halls[k], entry)
	if inserted && before == 0 {
		slog.Debug("hall_of_fame_seeded", "kingdom", k.String(), "id", o.ID, "fitness", entry.Fitness)
	}
	return inserted
}

// meetsEntryCriteria checks if an organism qualifies for the hall.
func (hof *HallOfFame) meetsEntryCriteria(o *organism.Organism, stats *LifetimeStats) bool {
	// Primary criterion: reproduced enough
	if stats.Children >= hof.cfg.MinChildren {
		return true
	}

	// Secondary criterion: survived long enough and, for hunters, killed
	if o.Age >= float32(hof.cfg.MinSurvival) {
		if o.Genome.Diet.Hunts() {
			return stats.Kills >= hof.cfg.MinKills
		}
		return true
	}

	return false
}

// calculateFitness computes the weighted fitness score.
func (hof *HallOfFame) calculateFitness(o *organism.Organism, stats *LifetimeStats) float32 {
	fitness := float32(stats.Children) * float32(hof.cfg.ChildrenWeight)
	fitness += o.Age * float32(hof.cfg.SurvivalWeight)
	fitness += float32(stats.Kills) * float32(hof.cfg.KillsWeight)
	fitness += stats.TotalForaged * float32(hof.cfg.ForageWeight)
	return fitness
}

// insertEntry adds an entry to the hall, maintaining sorted order by fitness.
// If the hall is full, the lowest-fitness entry is removed.
func (hof *HallOfFame) insertEntry(hall []HallEntry, entry HallEntry) ([]HallEntry, bool) {
	// Find insertion point (sorted descending by fitness)
	idx := sort.Search(len(hall), func(i int) bool {
		return hall[i].Fitness < entry.Fitness
	})

	if idx >= hof.maxSize {
		return hall, false
	}

	hall = append(hall, HallEntry{})
	copy(hall[idx+1:], hall[idx:])
	hall[idx] = entry

	if len(hall) > hof.maxSize {
		hall = hall[:hof.maxSize]
	}
	return hall, true
}

// Sample selects an entry from the kingdom's hall using tournament
// selection. Returns nil if the hall is empty.
func (hof *HallOfFame) Sample(k traits.Kingdom) *HallEntry {
	if k >= traits.NumKingdoms {
		return nil
	}
	hall := hof.halls[k]
	if len(hall) == 0 {
		return nil
	}

	const tournamentSize = 3
	var best *HallEntry
	for i := 0; i < tournamentSize && i < len(hall); i++ {
		candidate := &hall[hof.rng.Intn(len(hall))]
		if best == nil || candidate.Fitness > best.Fitness {
			best = candidate
		}
	}

	entry := *best
	return &entry
}

// SampleAny samples from a random non-empty hall. Returns nil if every hall
// is empty.
func (hof *HallOfFame) SampleAny() *HallEntry {
	var kingdoms []traits.Kingdom
	for k := range hof.halls {
		if len(hof.halls[k]) > 0 {
			kingdoms = append(kingdoms, traits.Kingdom(k))
		}
	}
	if len(kingdoms) == 0 {
		return nil
	}
	return hof.Sample(kingdoms[hof.rng.Intn(len(kingdoms))])
}

// Size returns the number of entries for a kingdom.
func (hof *HallOfFame) Size(k traits.Kingdom) int {
	if k >= traits.NumKingdoms {
		return 0
	}
	return len(hof.halls[k])
}

// TopFitness returns the highest fitness for a kingdom, or 0 if empty.
func (hof *HallOfFame) TopFitness(k traits.Kingdom) float32 {
	if hof.Size(k) == 0 {
		return 0
	}
	return hof.halls[k][0].Fitness
}

// MarshalJSON serializes the hall of fame keyed by kingdom name.
func (hof *HallOfFame) MarshalJSON() ([]byte, error) {
	export := make(map[string][]HallEntry, len(hof.halls))
	for k, hall := range hof.halls {
		export[traits.Kingdom(k).String()] = hall
	}
	return json.MarshalIndent(export, "", "  ")
}

// LoadHallOfFameFromFile reads a hall of fame written by MarshalJSON.
// Entries whose brain does not fit their genome are skipped.
func LoadHallOfFameFromFile(path string, cfg config.HallOfFameConfig, rng *rand.Rand) (*HallOfFame, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading hall of fame: %w", err)
	}

	var raw map[string][]HallEntry
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing hall of fame JSON: %w", err)
	}

	kingdoms := make(map[string]traits.Kingdom, traits.NumKingdoms)
	for k := traits.Kingdom(0); k < traits.NumKingdoms; k++ {
		kingdoms[k.String()] = k
	}

	hof := NewHallOfFame(cfg, rng)
	for name, entries := range raw {
		k, ok := kingdoms[name]
		if !ok {
			slog.Warn("hall_of_fame_load: unknown kingdom, skipping", "kingdom", name)
			continue
		}
		for _, e := range entries {
			if !e.Weights.Shape.Equal(organism.ShapeFor(e.Genome)) {
				slog.Warn("hall_of_fame_load: brain does not fit genome, skipping", "id", e.ID)
				continue
			}
			hof.halls[k], _ = hof.insertEntry(hof.halls[k], e)
		}
	}
	return hof, nil
}
