package serving

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// BaselineRates is the static lookup of provider no-show baselines used at
// single-appointment inference time. These are operational estimates kept
// in configuration, not values computed by the feature pipeline.
type BaselineRates struct {
	PracticeRate float64            `yaml:"practice_rate"`
	Providers    map[string]float64 `yaml:"providers"`
}

// ProviderRate returns a provider's baseline, falling back to the
// clinic-wide rate for unknown providers.
func (r BaselineRates) ProviderRate(name string) float64 {
	if rate, ok := r.Providers[name]; ok {
		return rate
	}
	return r.PracticeRate
}

// LoadBaselineRates parses the YAML lookup file.
func LoadBaselineRates(path string) (BaselineRates, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return BaselineRates{}, fmt.Errorf("read baseline rates %s: %w", path, err)
	}
	var rates BaselineRates
	if err := yaml.Unmarshal(content, &rates); err != nil {
		return BaselineRates{}, fmt.Errorf("parse baseline rates %s: %w", path, err)
	}
	return rates, nil
}
