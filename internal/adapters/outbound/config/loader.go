package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/abdidvp/plugincheck/internal/domain"
)

const (
	fileName  = ".plugincheck.yaml"
	envPrefix = "PLUGINCHECK"
)

// Loader implements domain.ConfigLoader on top of viper. Values come from, in
// increasing precedence: DefaultEngineConfig, the YAML file, PLUGINCHECK_*
// environment variables.
type Loader struct {
	file string
}

// New creates a Loader that reads .plugincheck.yaml from the plugin root.
func New() *Loader { return &Loader{} }

// NewWithFile creates a Loader bound to an explicit config file. Unlike the
// per-plugin file, an explicit file must exist.
func NewWithFile(path string) *Loader { return &Loader{file: path} }

// Load assembles the engine configuration for pluginRoot.
// Returns DefaultEngineConfig when no file exists and no env var is set.
func (l *Loader) Load(pluginRoot string) (domain.EngineConfig, error) {
	cfg := domain.DefaultEngineConfig()

	// New instance per load: viper's global is not safe to share across runs.
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, cfg)

	path, name := l.resolve(pluginRoot)
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return domain.EngineConfig{}, fmt.Errorf("parsing %s: %w", name, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) || l.file != "" {
		return domain.EngineConfig{}, fmt.Errorf("reading %s: %w", name, err)
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return domain.EngineConfig{}, fmt.Errorf("decoding %s: %w", name, err)
	}
	if err := cfg.Validate(); err != nil {
		return domain.EngineConfig{}, fmt.Errorf("invalid %s: %w", name, err)
	}
	return cfg, nil
}

func (l *Loader) resolve(pluginRoot string) (path, name string) {
	if l.file != "" {
		return l.file, l.file
	}
	return filepath.Join(pluginRoot, fileName), fileName
}

// setDefaults registers the scalar keys so AutomaticEnv can see them;
// viper only consults the environment for keys it already knows.
func setDefaults(v *viper.Viper, cfg domain.EngineConfig) {
	v.SetDefault("concurrency", cfg.Concurrency)
	v.SetDefault("unit_timeout", cfg.UnitTimeout)
	v.SetDefault("failure_threshold", cfg.FailureThreshold)
	v.SetDefault("no_cache", cfg.NoCache)
	v.SetDefault("pass_threshold", cfg.PassThreshold)
	v.SetDefault("structural_floor", cfg.StructuralFloor)
	v.SetDefault("user_tests.neutral_baseline", cfg.UserTests.NeutralBaseline)
	v.SetDefault("user_tests.omission_penalty", cfg.UserTests.OmissionPenalty)
	v.SetDefault("user_tests.penalty_cap", cfg.UserTests.PenaltyCap)
}
