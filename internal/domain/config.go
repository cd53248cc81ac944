package domain

import (
	"fmt"
	"time"
)

// EngineConfig holds run configuration loaded from .plugincheck.yaml, the
// environment and CLI flags. It is assembled once and never mutated during a run.
type EngineConfig struct {
	Concurrency      int                   `yaml:"concurrency"       mapstructure:"concurrency"       json:"concurrency"`
	UnitTimeout      time.Duration         `yaml:"unit_timeout"      mapstructure:"unit_timeout"      json:"unit_timeout"`
	FailureThreshold float64               `yaml:"failure_threshold" mapstructure:"failure_threshold" json:"failure_threshold"`
	NoCache          bool                  `yaml:"no_cache"          mapstructure:"no_cache"          json:"no_cache"`
	Weights          map[string]float64    `yaml:"weights"           mapstructure:"weights"           json:"weights,omitempty"`
	PassThreshold    float64               `yaml:"pass_threshold"    mapstructure:"pass_threshold"    json:"pass_threshold"`
	StructuralFloor  float64               `yaml:"structural_floor"  mapstructure:"structural_floor"  json:"structural_floor"`
	Thresholds       map[string]float64    `yaml:"thresholds"        mapstructure:"thresholds"        json:"thresholds,omitempty"`
	Disabled         []string              `yaml:"disabled"          mapstructure:"disabled"          json:"disabled,omitempty"`
	Tools            map[string]ToolConfig `yaml:"tools"             mapstructure:"tools"             json:"tools,omitempty"`
	UserTests        UserTestPolicy        `yaml:"user_tests"        mapstructure:"user_tests"        json:"user_tests"`
}

// ToolConfig configures one external-tool validator.
type ToolConfig struct {
	Path     string        `yaml:"path"     mapstructure:"path"     json:"path,omitempty"`
	Timeout  time.Duration `yaml:"timeout"  mapstructure:"timeout"  json:"timeout"`
	Optional bool          `yaml:"optional" mapstructure:"optional" json:"optional"`
}

// UserTestPolicy carries the user-test scoring constants. They are defaults,
// not law, and can be overridden per project.
type UserTestPolicy struct {
	CoverageTiers   []CoverageTier `yaml:"coverage_tiers"     mapstructure:"coverage_tiers"     json:"coverage_tiers"`
	CriticalPenalty float64        `yaml:"critical_penalty"   mapstructure:"critical_penalty"   json:"critical_penalty"`
	BlockingPenalty float64        `yaml:"blocking_penalty"   mapstructure:"blocking_penalty"   json:"blocking_penalty"`
	WarningPenalty  float64        `yaml:"warning_penalty"    mapstructure:"warning_penalty"    json:"warning_penalty"`
	AdvisoryPenalty float64        `yaml:"advisory_penalty"   mapstructure:"advisory_penalty"   json:"advisory_penalty"`
	PenaltyCap      float64        `yaml:"penalty_cap"        mapstructure:"penalty_cap"        json:"penalty_cap"`
	NeutralBaseline float64        `yaml:"neutral_baseline"   mapstructure:"neutral_baseline"   json:"neutral_baseline"`
	OmissionPenalty float64        `yaml:"omission_penalty"   mapstructure:"omission_penalty"   json:"omission_penalty"`
}

// CoverageTier awards Bonus points when component coverage reaches MinRatio.
type CoverageTier struct {
	MinRatio float64 `yaml:"min_ratio" mapstructure:"min_ratio" json:"min_ratio"`
	Bonus    float64 `yaml:"bonus"     mapstructure:"bonus"     json:"bonus"`
}

// Tool timeouts must stay inside this window.
const (
	MinToolTimeout = 10 * time.Second
	MaxToolTimeout = 300 * time.Second
)

// DefaultRecommendationThreshold applies to sub-metrics without an explicit threshold.
const DefaultRecommendationThreshold = 70.0

// DefaultUserTestPolicy returns the stock coverage bonuses and failure penalties.
func DefaultUserTestPolicy() UserTestPolicy {
	return UserTestPolicy{
		CoverageTiers: []CoverageTier{
			{MinRatio: 0.80, Bonus: 5},
			{MinRatio: 0.50, Bonus: 3},
			{MinRatio: 0.25, Bonus: 1},
		},
		CriticalPenalty: 30,
		BlockingPenalty: 15,
		WarningPenalty:  5,
		AdvisoryPenalty: 0,
		PenaltyCap:      50,
		NeutralBaseline: 50,
		OmissionPenalty: 5,
	}
}

// DefaultEngineConfig returns the configuration used when nothing is overridden.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Concurrency:      4,
		UnitTimeout:      30 * time.Second,
		FailureThreshold: 0.5,
		PassThreshold:    60,
		StructuralFloor:  50,
		Thresholds: map[string]float64{
			MetricSecurity: 90,
		},
		Tools: map[string]ToolConfig{
			"shellcheck":   {Timeout: 30 * time.Second, Optional: true},
			"markdownlint": {Timeout: 60 * time.Second, Optional: true},
		},
		UserTests: DefaultUserTestPolicy(),
	}
}

// ThresholdFor returns the recommendation threshold for a sub-metric.
func (c EngineConfig) ThresholdFor(subMetric string) float64 {
	if t, ok := c.Thresholds[subMetric]; ok {
		return t
	}
	return DefaultRecommendationThreshold
}

// IsDisabled reports whether the named validator is switched off.
func (c EngineConfig) IsDisabled(validator string) bool {
	for _, d := range c.Disabled {
		if d == validator {
			return true
		}
	}
	return false
}

// Tool returns the settings for an external tool, falling back to an optional
// tool with the minimum timeout.
func (c EngineConfig) Tool(name string) ToolConfig {
	if t, ok := c.Tools[name]; ok {
		if t.Timeout == 0 {
			t.Timeout = MinToolTimeout
		}
		return t
	}
	return ToolConfig{Timeout: MinToolTimeout, Optional: true}
}

// Validate checks the config for invalid values and returns a descriptive error.
func (c EngineConfig) Validate() error {
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be >= 1 (got %d)", c.Concurrency)
	}
	if c.UnitTimeout <= 0 {
		return fmt.Errorf("unit_timeout must be positive (got %s)", c.UnitTimeout)
	}
	if c.FailureThreshold <= 0 || c.FailureThreshold > 1 {
		return fmt.Errorf("failure_threshold must be in (0, 1] (got %.2f)", c.FailureThreshold)
	}

	for k, w := range c.Weights {
		if !isValidDimension(k) {
			return fmt.Errorf("unknown dimension %q in weights", k)
		}
		if w < 0 {
			return fmt.Errorf("weights[%q] must be >= 0 (got %.2f)", k, w)
		}
	}
	if len(c.Weights) == len(Dimensions) {
		sum := 0.0
		for _, w := range c.Weights {
			sum += w
		}
		if sum < 0.95 || sum > 1.05 {
			return fmt.Errorf("weights sum to %.2f (must be between 0.95 and 1.05)", sum)
		}
	}

	if c.PassThreshold < 0 || c.PassThreshold > 100 {
		return fmt.Errorf("pass_threshold must be between 0 and 100 (got %.1f)", c.PassThreshold)
	}
	if c.StructuralFloor < 0 || c.StructuralFloor > 100 {
		return fmt.Errorf("structural_floor must be between 0 and 100 (got %.1f)", c.StructuralFloor)
	}

	for k, v := range c.Thresholds {
		if _, ok := SubMetricDimension[k]; !ok {
			return fmt.Errorf("unknown sub-metric %q in thresholds", k)
		}
		if v < 0 || v > 100 {
			return fmt.Errorf("thresholds[%q] = %.1f (must be between 0 and 100)", k, v)
		}
	}

	for name, t := range c.Tools {
		if t.Timeout != 0 && (t.Timeout < MinToolTimeout || t.Timeout > MaxToolTimeout) {
			return fmt.Errorf("tools.%s.timeout must be between %s and %s (got %s)",
				name, MinToolTimeout, MaxToolTimeout, t.Timeout)
		}
	}

	return c.UserTests.validate()
}

func (p UserTestPolicy) validate() error {
	for i, tier := range p.CoverageTiers {
		if tier.MinRatio <= 0 || tier.MinRatio > 1 {
			return fmt.Errorf("user_tests.coverage_tiers[%d].min_ratio must be in (0, 1] (got %.2f)", i, tier.MinRatio)
		}
		if tier.Bonus < 0 {
			return fmt.Errorf("user_tests.coverage_tiers[%d].bonus must be >= 0 (got %.1f)", i, tier.Bonus)
		}
	}
	penalties := map[string]float64{
		"critical_penalty": p.CriticalPenalty,
		"blocking_penalty": p.BlockingPenalty,
		"warning_penalty":  p.WarningPenalty,
		"advisory_penalty": p.AdvisoryPenalty,
		"penalty_cap":      p.PenaltyCap,
		"omission_penalty": p.OmissionPenalty,
	}
	for name, v := range penalties {
		if v < 0 {
			return fmt.Errorf("user_tests.%s must be >= 0 (got %.1f)", name, v)
		}
	}
	if p.NeutralBaseline < 0 || p.NeutralBaseline > 100 {
		return fmt.Errorf("user_tests.neutral_baseline must be between 0 and 100 (got %.1f)", p.NeutralBaseline)
	}
	return nil
}

func isValidDimension(name string) bool {
	for _, d := range Dimensions {
		if string(d) == name {
			return true
		}
	}
	return false
}
