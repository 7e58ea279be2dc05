package game

import "github.com/milk9111/platformcore/prefabs"

// Config holds the simulation constants.
type Config struct {
	FixedDt       float64
	MaxFixedSteps int
	Gravity       float64
	Iterations    int
	GroundRadius  float64
	Seed          uint64
}

func DefaultConfig() Config {
	return ConfigFromTuning(prefabs.TuningSpec{})
}

// ConfigFromTuning converts a tuning spec, filling unset fields.
func ConfigFromTuning(spec prefabs.TuningSpec) Config {
	spec = spec.WithDefaults()
	return Config{
		FixedDt:       spec.FixedDt,
		MaxFixedSteps: spec.MaxFixedSteps,
		Gravity:       spec.Gravity,
		Iterations:    spec.Iterations,
		GroundRadius:  spec.GroundRadius,
		Seed:          spec.Seed,
	}
}

// LoadConfig reads tuning.yaml.
func LoadConfig() (Config, error) {
	spec, err := prefabs.LoadTuningSpec()
	if err != nil {
		return Config{}, err
	}
	return ConfigFromTuning(*spec), nil
}

func (c Config) withDefaults() Config {
	return ConfigFromTuning(prefabs.TuningSpec{
		FixedDt:       c.FixedDt,
		MaxFixedSteps: c.MaxFixedSteps,
		Gravity:       c.Gravity,
		Iterations:    c.Iterations,
		GroundRadius:  c.GroundRadius,
		Seed:          c.Seed,
	})
}
