package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int64   `csv:"-"`
	WindowEndTick   int64   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Population counts at window end
	Population    int `csv:"population"`
	Food          int `csv:"food"`
	Plants        int `csv:"plants"`
	Protists      int `csv:"protists"`
	Animals       int `csv:"animals"`
	Producers     int `csv:"photosynthetic"`
	Filterers     int `csv:"filter_feeders"`
	Herbivores    int `csv:"herbivores"`
	Omnivores     int `csv:"omnivores"`
	Carnivores    int `csv:"carnivores"`
	Infected      int `csv:"infected"`
	Multicellular int `csv:"multicellular"`

	// Events during window
	Births           int `csv:"births"`
	Deaths           int `csv:"deaths"`
	DeathsStarvation int `csv:"deaths_starvation"`
	DeathsInjury     int `csv:"deaths_injury"`
	DeathsPredation  int `csv:"deaths_predation"`
	DeathsDisease    int `csv:"deaths_disease"`
	DeathsOldAge     int `csv:"deaths_old_age"`
	Respawned        int `csv:"respawned"`

	// Feeding
	FoodEaten   int     `csv:"food_eaten"`
	Hunts       int     `csv:"hunts"`
	Kills       int     `csv:"kills"`
	FailedHunts int     `csv:"failed_hunts"`
	KillRate    float64 `csv:"kill_rate"`

	// Disease and development
	Infections           int `csv:"infections"`
	Recoveries           int `csv:"recoveries"`
	Emerged              int `csv:"emerged"`
	MulticellTransitions int `csv:"multicell_transitions"`

	// Energy ratio distribution (sampled at window end)
	EnergyMean float64 `csv:"energy_mean"`
	EnergyStd  float64 `csv:"energy_std"`
	EnergyP10  float64 `csv:"energy_p10"`
	EnergyP50  float64 `csv:"energy_p50"`
	EnergyP90  float64 `csv:"energy_p90"`

	AgeMean       float64 `csv:"age_mean"`
	OldestAge     float64 `csv:"age_max"`
	SizeMean      float64 `csv:"size_mean"`
	MaxGeneration int     `csv:"max_generation"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeDistribution returns the mean, sample standard deviation and
// 10/50/90th percentiles of values. The standard deviation of fewer than
// two values is zero.
func ComputeDistribution(values []float64) (mean, std, p10, p50, p90 float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0, 0, 0
	}

	if n == 1 {
		mean = values[0]
	} else {
		mean, std = stat.MeanStdDev(values, nil)
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	p10 = Percentile(sorted, 0.10)
	p50 = Percentile(sorted, 0.50)
	p90 = Percentile(sorted, 0.90)

	return mean, std, p10, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("window_start", s.WindowStartTick),
		slog.Int64("window_end", s.WindowEndTick),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("population", s.Population),
		slog.Int("food", s.Food),
		slog.Int("plants", s.Plants),
		slog.Int("protists", s.Protists),
		slog.Int("animals", s.Animals),
		slog.Int("births", s.Births),
		slog.Int("deaths", s.Deaths),
		slog.Int("deaths_predation", s.DeathsPredation),
		slog.Int("deaths_disease", s.DeathsDisease),
		slog.Int("kills", s.Kills),
		slog.Int("failed_hunts", s.FailedHunts),
		slog.Float64("kill_rate", s.KillRate),
		slog.Int("infections", s.Infections),
		slog.Int("recoveries", s.Recoveries),
		slog.Int("infected", s.Infected),
		slog.Int("multicellular", s.Multicellular),
		slog.Float64("energy_mean", s.EnergyMean),
		slog.Float64("energy_p50", s.EnergyP50),
		slog.Int("max_generation", s.MaxGeneration),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"population", s.Population,
		"food", s.Food,
		"plants", s.Plants,
		"protists", s.Protists,
		"animals", s.Animals,
		"photosynthetic", s.Producers,
		"filter_feeders", s.Filterers,
		"herbivores", s.Herbivores,
		"omnivores", s.Omnivores,
		"carnivores", s.Carnivores,
		"births", s.Births,
		"deaths", s.Deaths,
		"deaths_starvation", s.DeathsStarvation,
		"deaths_injury", s.DeathsInjury,
		"deaths_predation", s.DeathsPredation,
		"deaths_disease", s.DeathsDisease,
		"deaths_old_age", s.DeathsOldAge,
		"respawned", s.Respawned,
		"food_eaten", s.FoodEaten,
		"hunts", s.Hunts,
		"kills", s.Kills,
		"failed_hunts", s.FailedHunts,
		"kill_rate", s.KillRate,
		"infections", s.Infections,
		"recoveries", s.Recoveries,
		"emerged", s.Emerged,
		"infected", s.Infected,
		"multicellular", s.Multicellular,
		"multicell_transitions", s.MulticellTransitions,
		"energy_mean", s.EnergyMean,
		"energy_std", s.EnergyStd,
		"energy_p10", s.EnergyP10,
		"energy_p50", s.EnergyP50,
		"energy_p90", s.EnergyP90,
		"age_mean", s.AgeMean,
		"age_max", s.OldestAge,
		"size_mean", s.SizeMean,
		"max_generation", s.MaxGeneration,
	)
}
