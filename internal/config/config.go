// Package config provides Viper-based configuration loading for the NPC simulator.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// SimulationConfig drives the tick loop.
type SimulationConfig struct {
	// TickInterval is the wall-clock time between two ticks.
	TickInterval time.Duration `mapstructure:"tick_interval"`
	// WorldRadius bounds wander targets around each agent's spawn point.
	WorldRadius float64 `mapstructure:"world_radius"`
	// Seed feeds the wander target generator; 0 picks a time-based seed.
	Seed int64 `mapstructure:"seed"`
}

// DebugConfig holds the snapshot stream server settings.
type DebugConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

// AgentConfig describes one NPC to spawn.
type AgentConfig struct {
	Name string `mapstructure:"name"`
	// Kind selects the tree: "brain", "wander", "hostility" or "file".
	Kind string `mapstructure:"kind"`
	// TreeFile is the YAML tree definition used when Kind is "file".
	TreeFile string  `mapstructure:"tree_file"`
	X        float64 `mapstructure:"x"`
	Y        float64 `mapstructure:"y"`
	// Speed is in world units per second.
	Speed float64 `mapstructure:"speed"`
	// SenseRadius is how far the agent notices hostile targets.
	SenseRadius float64 `mapstructure:"sense_radius"`
	// AttackRange is how close a hostile target must be to be attacked.
	AttackRange float64 `mapstructure:"attack_range"`
	// ChargeWait is how long the agent winds up before and after a charge.
	ChargeWait time.Duration `mapstructure:"charge_wait"`
}

// IntruderConfig describes a hostile target circling a fixed point.
type IntruderConfig struct {
	ID string  `mapstructure:"id"`
	X  float64 `mapstructure:"x"`
	Y  float64 `mapstructure:"y"`
	// Radius of the orbit; zero keeps the intruder in place.
	Radius float64 `mapstructure:"radius"`
	// Period is the time of one full orbit.
	Period time.Duration `mapstructure:"period"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging    LoggingConfig    `mapstructure:"logging"`
	Simulation SimulationConfig `mapstructure:"simulation"`
	Debug      DebugConfig      `mapstructure:"debug"`
	Agents     []AgentConfig    `mapstructure:"agents"`
	Intruders  []IntruderConfig `mapstructure:"intruders"`
}

var agentKinds = map[string]bool{"brain": true, "wander": true, "hostility": true, "file": true}

// Validate checks all configuration invariants and reports every violation.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateSimulation(c.Simulation); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Debug.Enabled && c.Debug.Addr == "" {
		errs = append(errs, "debug.addr must not be empty when debug.enabled is set")
	}
	names := make(map[string]bool, len(c.Agents))
	for i, a := range c.Agents {
		if err := validateAgent(a); err != nil {
			errs = append(errs, fmt.Sprintf("agents[%d]: %s", i, err))
		}
		if names[a.Name] {
			errs = append(errs, fmt.Sprintf("agents[%d]: duplicate name %q", i, a.Name))
		}
		names[a.Name] = true
	}
	ids := make(map[string]bool, len(c.Intruders))
	for i, in := range c.Intruders {
		if in.ID == "" {
			errs = append(errs, fmt.Sprintf("intruders[%d]: id must not be empty", i))
		}
		if in.Radius < 0 {
			errs = append(errs, fmt.Sprintf("intruders[%d]: radius must not be negative", i))
		}
		if in.Radius > 0 && in.Period <= 0 {
			errs = append(errs, fmt.Sprintf("intruders[%d]: period must be positive for a moving intruder", i))
		}
		if ids[in.ID] {
			errs = append(errs, fmt.Sprintf("intruders[%d]: duplicate id %q", i, in.ID))
		}
		ids[in.ID] = true
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateSimulation(s SimulationConfig) error {
	var errs []string
	if s.TickInterval <= 0 {
		errs = append(errs, fmt.Sprintf("simulation.tick_interval must be positive, got %s", s.TickInterval))
	}
	if s.WorldRadius <= 0 {
		errs = append(errs, fmt.Sprintf("simulation.world_radius must be positive, got %g", s.WorldRadius))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateAgent(a AgentConfig) error {
	var errs []string
	if a.Name == "" {
		errs = append(errs, "name must not be empty")
	}
	if !agentKinds[a.Kind] {
		errs = append(errs, fmt.Sprintf("kind must be one of [brain, wander, hostility, file], got %q", a.Kind))
	}
	if a.Kind == "file" && a.TreeFile == "" {
		errs = append(errs, "tree_file is required for kind file")
	}
	if a.Speed < 0 {
		errs = append(errs, "speed must not be negative")
	}
	if a.SenseRadius < 0 || a.AttackRange < 0 {
		errs = append(errs, "sense_radius and attack_range must not be negative")
	}
	if a.ChargeWait < 0 {
		errs = append(errs, "charge_wait must not be negative")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, ", "))
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides (prefix BEHAVE_), fills agent defaults and validates the result.
// Relative tree_file paths are resolved against the directory holding path.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	v.SetEnvPrefix("BEHAVE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	cfg, err := LoadFromViper(v)
	if err != nil {
		return Config{}, err
	}
	dir := filepath.Dir(path)
	for i := range cfg.Agents {
		if f := cfg.Agents[i].TreeFile; f != "" && !filepath.IsAbs(f) {
			cfg.Agents[i].TreeFile = filepath.Join(dir, f)
		}
	}
	return cfg, nil
}

// LoadFromViper builds a Config from an already-configured Viper instance.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	for i := range cfg.Agents {
		applyAgentDefaults(&cfg.Agents[i])
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() Config {
	v := viper.New()
	setDefaults(v)
	cfg, err := LoadFromViper(v)
	if err != nil {
		panic(fmt.Sprintf("default configuration is invalid: %v", err))
	}
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("simulation.tick_interval", "100ms")
	v.SetDefault("simulation.world_radius", 20.0)
	v.SetDefault("simulation.seed", 0)

	v.SetDefault("debug.enabled", false)
	v.SetDefault("debug.addr", "127.0.0.1:8088")
}

func applyAgentDefaults(a *AgentConfig) {
	if a.Kind == "" {
		a.Kind = "brain"
	}
	if a.Speed == 0 {
		a.Speed = 3.5
	}
	if a.SenseRadius == 0 {
		a.SenseRadius = 10
	}
	if a.AttackRange == 0 {
		a.AttackRange = 1.5
	}
	if a.ChargeWait == 0 {
		a.ChargeWait = time.Second
	}
}
