// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	World         WorldConfig         `yaml:"world"`
	Physics       PhysicsConfig       `yaml:"physics"`
	Population    PopulationConfig    `yaml:"population"`
	Organism      OrganismConfig      `yaml:"organism"`
	Reproduction  ReproductionConfig  `yaml:"reproduction"`
	Predation     PredationConfig     `yaml:"predation"`
	Disease       DiseaseConfig       `yaml:"disease"`
	Multicellular MulticellularConfig `yaml:"multicellular"`
	Environment   EnvironmentConfig   `yaml:"environment"`
	Telemetry     TelemetryConfig     `yaml:"telemetry"`
	HallOfFame    HallOfFameConfig    `yaml:"hall_of_fame"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// WorldConfig holds simulation world dimensions.
// The world is toroidal: positions wrap on both axes.
type WorldConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// PhysicsConfig holds simulation physics parameters.
type PhysicsConfig struct {
	DT               float64 `yaml:"dt"`
	GridCellSize     float64 `yaml:"grid_cell_size"`      // Organism hash cell size (near typical sensor range)
	FoodGridCellSize float64 `yaml:"food_grid_cell_size"` // Food hash cell size
}

// PopulationConfig holds population and food management parameters.
type PopulationConfig struct {
	Initial          int     `yaml:"initial"`
	MaxOrganisms     int     `yaml:"max_organisms"`
	InitialFood      int     `yaml:"initial_food"`
	MaxFood          int     `yaml:"max_food"`
	FoodSpawnRate    float64 `yaml:"food_spawn_rate"` // Food items per second
	FoodEnergy       float64 `yaml:"food_energy"`
	FoodRadius       float64 `yaml:"food_radius"`
	RespawnThreshold int     `yaml:"respawn_threshold"` // Respawn when live count drops below this
	RespawnCount     int     `yaml:"respawn_count"`
}

// OrganismConfig holds per-organism physiology and energy economics.
type OrganismConfig struct {
	BaseMaxEnergy      float64 `yaml:"base_max_energy"`      // MaxEnergy = base * size
	InitialEnergyRatio float64 `yaml:"initial_energy_ratio"` // Fraction of max for fresh spawns
	BodyRadius         float64 `yaml:"body_radius"`          // Radius = body_radius * size
	MaxSpeed           float64 `yaml:"max_speed"`            // Max speed = max_speed * genome speed * locomotion
	Acceleration       float64 `yaml:"acceleration"`
	MaxTurnRate        float64 `yaml:"max_turn_rate"` // radians per second
	Damping            float64 `yaml:"damping"`       // Exponential velocity damping per second
	BaseUpkeep         float64 `yaml:"base_upkeep"`   // Energy per second, scaled by kingdom weight and metabolism
	MoveCost           float64 `yaml:"move_cost"`     // Energy per unit of speed per second
	SizeCost           float64 `yaml:"size_cost"`     // Energy per unit of size per second
	PhotosynthesisRate float64 `yaml:"photosynthesis_rate"`
	HealthRegen        float64 `yaml:"health_regen"`    // Health per second when well fed
	SenescenceRate     float64 `yaml:"senescence_rate"` // Health lost per second past max lifespan
}

// ReproductionConfig holds reproduction parameters.
type ReproductionConfig struct {
	EnergyThreshold      float64 `yaml:"energy_threshold"` // Fraction of max energy required
	AsexualCost          float64 `yaml:"asexual_cost"`     // Fraction of max energy charged
	SexualCost           float64 `yaml:"sexual_cost"`      // Fraction of max energy charged per parent
	AsexualCooldown      float64 `yaml:"asexual_cooldown"` // Seconds
	SexualCooldown       float64 `yaml:"sexual_cooldown"`  // Seconds
	MatingDriveThreshold float64 `yaml:"mating_drive_threshold"`
	MatingDriveGrowth    float64 `yaml:"mating_drive_growth"` // Drive per second past maturity
	MateSearchRadius     float64 `yaml:"mate_search_radius"`
	SpawnOffset          float64 `yaml:"spawn_offset"`
}

// PredationConfig holds predation resolution parameters.
type PredationConfig struct {
	TransferFraction float64 `yaml:"transfer_fraction"` // Fraction of prey energy gained on success
	FailCost         float64 `yaml:"fail_cost"`         // Flat energy penalty on failure
	BiteRange        float64 `yaml:"bite_range"`        // Added to combined radius
	MinProbability   float64 `yaml:"min_probability"`
	MaxProbability   float64 `yaml:"max_probability"`
	HuntSatiety      float64 `yaml:"hunt_satiety"` // Predators above this energy ratio don't hunt
}

// DiseaseConfig holds disease orchestration parameters.
type DiseaseConfig struct {
	SpreadRadius          float64 `yaml:"spread_radius"`
	BaseSpreadRate        float64 `yaml:"base_spread_rate"`
	EmergenceInterval     int     `yaml:"emergence_interval"` // Ticks between environmental checks
	EmergenceChance       float64 `yaml:"emergence_chance"`
	ImmunityPurgeInterval int     `yaml:"immunity_purge_interval"` // Ticks between immunity sweeps
	SymptomDrain          float64 `yaml:"symptom_drain"`           // Energy per second, scaled by drain multiplier
	SymptomHealthDecay    float64 `yaml:"symptom_health_decay"`    // Health per second while symptomatic
}

// MulticellularConfig holds multicellular transition parameters.
type MulticellularConfig struct {
	CheckInterval  int     `yaml:"check_interval"` // Ticks between transition checks
	MinAge         float64 `yaml:"min_age"`
	MinEnergyRatio float64 `yaml:"min_energy_ratio"`
	MinGeneration  int     `yaml:"min_generation"`
	MinHealth      float64 `yaml:"min_health"`
	Chance         float64 `yaml:"chance"`
	InitialCells   int     `yaml:"initial_cells"`
	MaxCells       int     `yaml:"max_cells"`
	GrowthChance   float64 `yaml:"growth_chance"`    // Per tick
	GrowthCost     float64 `yaml:"growth_cost"`      // Energy per new cell
	GrowthMinRatio float64 `yaml:"growth_min_ratio"` // Energy ratio required to grow
}

// EnvironmentConfig holds ambient field parameters.
type EnvironmentConfig struct {
	BaseTemperature   float64 `yaml:"base_temperature"`
	SeasonalAmplitude float64 `yaml:"seasonal_amplitude"`
	SeasonLength      float64 `yaml:"season_length"` // Seconds per full seasonal cycle
	NoiseAmplitude    float64 `yaml:"noise_amplitude"`
	NoiseScale        float64 `yaml:"noise_scale"`
	DayLength         float64 `yaml:"day_length"` // Seconds per day/night cycle
	MinLight          float64 `yaml:"min_light"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow float64 `yaml:"stats_window"` // Seconds
	PerfWindow  int     `yaml:"perf_window"`  // Ticks

	// Windows of history the bookmark detector compares against.
	BookmarkHistory int `yaml:"bookmark_history"`
}

// HallOfFameConfig controls which dead organisms are remembered for reseeding.
type HallOfFameConfig struct {
	Size           int     `yaml:"size"` // Entries per kingdom
	MinChildren    int     `yaml:"min_children"`
	MinSurvival    float64 `yaml:"min_survival"` // Seconds
	MinKills       int     `yaml:"min_kills"`
	ChildrenWeight float64 `yaml:"children_weight"`
	SurvivalWeight float64 `yaml:"survival_weight"`
	KillsWeight    float64 `yaml:"kills_weight"`
	ForageWeight   float64 `yaml:"forage_weight"`
	ReseedFraction float64 `yaml:"reseed_fraction"` // Share of respawns drawn from the hall
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DT32     float32 // Physics.DT as float32
	WorldW32 float32
	WorldH32 float32
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

// validate rejects values that would make the simulation ill-defined.
func (c *Config) validate() error {
	if c.World.Width <= 0 || c.World.Height <= 0 {
		return fmt.Errorf("world size must be positive, got %vx%v", c.World.Width, c.World.Height)
	}
	if c.Physics.DT <= 0 {
		return fmt.Errorf("physics.dt must be positive, got %v", c.Physics.DT)
	}
	if c.Physics.GridCellSize <= 0 || c.Physics.FoodGridCellSize <= 0 {
		return fmt.Errorf("grid cell sizes must be positive")
	}
	if c.Predation.MinProbability > c.Predation.MaxProbability {
		return fmt.Errorf("predation.min_probability %v exceeds max_probability %v",
			c.Predation.MinProbability, c.Predation.MaxProbability)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.DT32 = float32(c.Physics.DT)
	c.Derived.WorldW32 = float32(c.World.Width)
	c.Derived.WorldH32 = float32(c.World.Height)
}

// Recompute refreshes derived values after fields were changed programmatically.
func (c *Config) Recompute() {
	c.computeDerived()
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
