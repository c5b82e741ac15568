// Package main provides CMA-ES optimization for ecosystem simulation parameters.
package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/pthm-cable/ecosim/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value

	field func(*config.Config) *float64
}

// Group is the config section the parameter lives in.
func (s ParamSpec) Group() string {
	group, _, _ := strings.Cut(s.Path, ".")
	return group
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of optimizable parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			// Reproduction
			{Name: "repro_threshold", Path: "reproduction.energy_threshold", Min: 0.5, Max: 0.9, Default: 0.7,
				field: func(c *config.Config) *float64 { return &c.Reproduction.EnergyThreshold }},
			{Name: "asexual_cost", Path: "reproduction.asexual_cost", Min: 0.2, Max: 0.6, Default: 0.4,
				field: func(c *config.Config) *float64 { return &c.Reproduction.AsexualCost }},
			{Name: "sexual_cost", Path: "reproduction.sexual_cost", Min: 0.15, Max: 0.5, Default: 0.3,
				field: func(c *config.Config) *float64 { return &c.Reproduction.SexualCost }},
			{Name: "asexual_cooldown", Path: "reproduction.asexual_cooldown", Min: 2, Max: 20, Default: 6,
				field: func(c *config.Config) *float64 { return &c.Reproduction.AsexualCooldown }},
			{Name: "sexual_cooldown", Path: "reproduction.sexual_cooldown", Min: 4, Max: 30, Default: 10,
				field: func(c *config.Config) *float64 { return &c.Reproduction.SexualCooldown }},
			{Name: "mating_drive_growth", Path: "reproduction.mating_drive_growth", Min: 0.01, Max: 0.2, Default: 0.05,
				field: func(c *config.Config) *float64 { return &c.Reproduction.MatingDriveGrowth }},
			// Predation
			{Name: "transfer_fraction", Path: "predation.transfer_fraction", Min: 0.4, Max: 0.95, Default: 0.7,
				field: func(c *config.Config) *float64 { return &c.Predation.TransferFraction }},
			{Name: "fail_cost", Path: "predation.fail_cost", Min: 1, Max: 10, Default: 4,
				field: func(c *config.Config) *float64 { return &c.Predation.FailCost }},
			{Name: "hunt_satiety", Path: "predation.hunt_satiety", Min: 0.5, Max: 1.0, Default: 0.9,
				field: func(c *config.Config) *float64 { return &c.Predation.HuntSatiety }},
			// Energy economics
			{Name: "base_upkeep", Path: "organism.base_upkeep", Min: 0.2, Max: 1.5, Default: 0.6,
				field: func(c *config.Config) *float64 { return &c.Organism.BaseUpkeep }},
			{Name: "photosynthesis_rate", Path: "organism.photosynthesis_rate", Min: 0.4, Max: 3.0, Default: 1.2,
				field: func(c *config.Config) *float64 { return &c.Organism.PhotosynthesisRate }},
			// Food
			{Name: "food_spawn_rate", Path: "population.food_spawn_rate", Min: 10, Max: 120, Default: 40,
				field: func(c *config.Config) *float64 { return &c.Population.FoodSpawnRate }},
			{Name: "food_energy", Path: "population.food_energy", Min: 10, Max: 60, Default: 30,
				field: func(c *config.Config) *float64 { return &c.Population.FoodEnergy }},
			// Disease
			{Name: "base_spread_rate", Path: "disease.base_spread_rate", Min: 0.02, Max: 0.3, Default: 0.1,
				field: func(c *config.Config) *float64 { return &c.Disease.BaseSpreadRate }},
			{Name: "symptom_drain", Path: "disease.symptom_drain", Min: 0.2, Max: 2.0, Default: 0.8,
				field: func(c *config.Config) *float64 { return &c.Disease.SymptomDrain }},
		},
	}
}

// Groups lists the config sections covered by pv, in spec order.
func (pv *ParamVector) Groups() []string {
	var groups []string
	for _, spec := range pv.Specs {
		if g := spec.Group(); !slices.Contains(groups, g) {
			groups = append(groups, g)
		}
	}
	return groups
}

// Select narrows pv to the parameters of the named groups. Parameters left
// out keep whatever value the base config holds. An empty list keeps all.
func (pv *ParamVector) Select(groups []string) (*ParamVector, error) {
	if len(groups) == 0 {
		return pv, nil
	}
	known := pv.Groups()
	for _, g := range groups {
		if !slices.Contains(known, g) {
			return nil, fmt.Errorf("unknown parameter group %q (have %s)", g, strings.Join(known, ", "))
		}
	}
	out := &ParamVector{}
	for _, spec := range pv.Specs {
		if slices.Contains(groups, spec.Group()) {
			out.Specs = append(out.Specs, spec)
		}
	}
	return out, nil
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig writes clamped parameter values into cfg and refreshes its
// derived values.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	for i, v := range pv.Clamp(values) {
		*pv.Specs[i].field(cfg) = v
	}
	cfg.Recompute()
}

// ExtractFromConfig extracts current parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = *spec.field(cfg)
	}
	return v
}
