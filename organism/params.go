package organism

import "github.com/pthm-cable/ecosim/config"

// MaxHealth is the health of an uninjured organism.
const MaxHealth = 100

// Params holds the float32 physiology constants organisms read every tick.
// Organisms share one Params value and never modify it.
type Params struct {
	WorldW, WorldH float32

	BaseMaxEnergy      float32
	InitialEnergyRatio float32
	BodyRadius         float32
	MaxSpeed           float32
	Acceleration       float32
	MaxTurnRate        float32
	Damping            float32
	BaseUpkeep         float32
	MoveCost           float32
	SizeCost           float32
	PhotosynthesisRate float32
	HealthRegen        float32
	SenescenceRate     float32

	ReproThreshold       float32
	AsexualCost          float32
	SexualCost           float32
	AsexualCooldown      float32
	SexualCooldown       float32
	MatingDriveThreshold float32
	MatingDriveGrowth    float32
	SpawnOffset          float32

	SymptomDrain       float32
	SymptomHealthDecay float32
}

// ParamsFromConfig extracts organism parameters from a loaded config.
func ParamsFromConfig(cfg *config.Config) *Params {
	o, r, d := cfg.Organism, cfg.Reproduction, cfg.Disease
	return &Params{
		WorldW: cfg.Derived.WorldW32,
		WorldH: cfg.Derived.WorldH32,

		BaseMaxEnergy:      float32(o.BaseMaxEnergy),
		InitialEnergyRatio: float32(o.InitialEnergyRatio),
		BodyRadius:         float32(o.BodyRadius),
		MaxSpeed:           float32(o.MaxSpeed),
		Acceleration:       float32(o.Acceleration),
		MaxTurnRate:        float32(o.MaxTurnRate),
		Damping:            float32(o.Damping),
		BaseUpkeep:         float32(o.BaseUpkeep),
		MoveCost:           float32(o.MoveCost),
		SizeCost:           float32(o.SizeCost),
		PhotosynthesisRate: float32(o.PhotosynthesisRate),
		HealthRegen:        float32(o.HealthRegen),
		SenescenceRate:     float32(o.SenescenceRate),

		ReproThreshold:       float32(r.EnergyThreshold),
		AsexualCost:          float32(r.AsexualCost),
		SexualCost:           float32(r.SexualCost),
		AsexualCooldown:      float32(r.AsexualCooldown),
		SexualCooldown:       float32(r.SexualCooldown),
		MatingDriveThreshold: float32(r.MatingDriveThreshold),
		MatingDriveGrowth:    float32(r.MatingDriveGrowth),
		SpawnOffset:          float32(r.SpawnOffset),

		SymptomDrain:       float32(d.SymptomDrain),
		SymptomHealthDecay: float32(d.SymptomHealthDecay),
	}
}
