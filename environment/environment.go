// Package environment provides the read-only ambient conditions organisms
// and diseases respond to: temperature and light.
package environment

import (
	"math"

	"github.com/ojrac/opensimplex-go"

	"github.com/pthm-cable/ecosim/components"
	"github.com/pthm-cable/ecosim/config"
)

// Ambient exposes world conditions at a given tick.
type Ambient interface {
	// Temperature returns the global temperature in degrees.
	Temperature(tick int64) float32
	// Light returns the light level in [0,1] at pos.
	Light(pos components.Position, tick int64) float32
}

// Static is an Ambient with constant conditions.
type Static struct {
	Temp       float32
	LightLevel float32
}

func (s Static) Temperature(int64) float32 {
	return s.Temp
}

func (s Static) Light(components.Position, int64) float32 {
	return s.LightLevel
}

// timeScale converts seconds into noise-space distance.
const timeScale = 0.01

// Field is an Ambient driven by seasonal and day cycles modulated by
// simplex noise over space and time.
type Field struct {
	cfg   config.EnvironmentConfig
	dt    float64
	temp  opensimplex.Noise
	light opensimplex.Noise
}

// NewField creates a noise-driven environment. dt is the tick length in
// seconds.
func NewField(cfg config.EnvironmentConfig, dt float64, seed int64) *Field {
	return &Field{
		cfg:   cfg,
		dt:    dt,
		temp:  opensimplex.NewNormalized(seed),
		light: opensimplex.NewNormalized(seed + 1),
	}
}

func (f *Field) seconds(tick int64) float64 {
	return float64(tick) * f.dt
}

// Temperature follows a seasonal sine wave plus slow noise drift.
func (f *Field) Temperature(tick int64) float32 {
	t := f.seconds(tick)
	temp := f.cfg.BaseTemperature
	if f.cfg.SeasonLength > 0 {
		temp += f.cfg.SeasonalAmplitude * math.Sin(2*math.Pi*t/f.cfg.SeasonLength)
	}
	temp += f.cfg.NoiseAmplitude * (f.temp.Eval2(t*timeScale, 0)*2 - 1)
	return float32(temp)
}

// Light combines the day cycle with spatial cloud cover, floored at MinLight.
func (f *Field) Light(pos components.Position, tick int64) float32 {
	t := f.seconds(tick)
	day := 1.0
	if f.cfg.DayLength > 0 {
		day = 0.5 + 0.5*math.Sin(2*math.Pi*t/f.cfg.DayLength)
	}
	cover := f.light.Eval3(float64(pos.X)*f.cfg.NoiseScale, float64(pos.Y)*f.cfg.NoiseScale, t*timeScale)
	level := f.cfg.MinLight + (1-f.cfg.MinLight)*day*(0.5+0.5*cover)
	return float32(math.Max(0, math.Min(1, level)))
}
