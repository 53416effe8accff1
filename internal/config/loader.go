package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Load reads and parses configuration from a YAML file. Fields the file does
// not set keep their Defaults() values.
func Load(configPath string) (*Config, error) {
	absPath, err := filepath.Abs(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path %q: %w", configPath, err)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", absPath, err)
	}

	var cfg Config
	if err := yaml.Unmarshal([]byte(interpolateEnv(string(data))), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML in %s: %w", absPath, err)
	}
	cfg.SourceFile = absPath

	merged := applyConfigDefaults(&cfg)
	if err := merged.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return merged, nil
}

// LoadOptional loads configPath if it exists and falls back to Defaults()
// when it does not.
func LoadOptional(configPath string) (*Config, error) {
	if strings.TrimSpace(configPath) == "" {
		return Defaults(), nil
	}
	if _, err := os.Stat(configPath); err != nil {
		if os.IsNotExist(err) {
			return Defaults(), nil
		}
		return nil, fmt.Errorf("stat config %s: %w", configPath, err)
	}
	return Load(configPath)
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// ApplyEnv overlays process-level environment overrides onto cfg.
func (c *Config) ApplyEnv(e Env) {
	if e.LogLevel != "" {
		c.LogLevel = e.LogLevel
	}
	if e.LogFormat != "" {
		c.LogFormat = e.LogFormat
	}
}

// ZoneFor returns the zone a Webots node id starts in.
func (c *Config) ZoneFor(robotID int) (int, bool) {
	zone, ok := c.Robots[robotID]
	return zone, ok
}

func applyConfigDefaults(cfg *Config) *Config {
	def := Defaults()

	if cfg.LogLevel == "" {
		cfg.LogLevel = def.LogLevel
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = def.LogFormat
	}
	if cfg.ModeFile == "" {
		cfg.ModeFile = def.ModeFile
	}
	if cfg.ExampleController == "" {
		cfg.ExampleController = def.ExampleController
	}
	if cfg.ControllersDir == "" {
		cfg.ControllersDir = def.ControllersDir
	}
	if cfg.Python == "" {
		cfg.Python = def.Python
	}
	if cfg.ModulePaths == nil {
		cfg.ModulePaths = def.ModulePaths
	}
	if len(cfg.Robots) == 0 {
		cfg.Robots = def.Robots
	}
	if cfg.Match.Duration == 0 {
		cfg.Match.Duration = def.Match.Duration
	}
	if cfg.Match.TimeStep == 0 {
		cfg.Match.TimeStep = def.Match.TimeStep
	}
	if cfg.Match.RecordingsDir == "" {
		cfg.Match.RecordingsDir = def.Match.RecordingsDir
	}
	if cfg.Match.Ledger == "" {
		cfg.Match.Ledger = def.Match.Ledger
	}
	if cfg.Match.LockFile == "" {
		cfg.Match.LockFile = def.Match.LockFile
	}

	return cfg
}

// ModuleSearchPaths returns ModulePaths with ${VAR} expanded, dropping entries
// that still reference an unset variable.
func (c *Config) ModuleSearchPaths() []string {
	paths := make([]string, 0, len(c.ModulePaths))
	for _, p := range c.ModulePaths {
		p = interpolateEnv(p)
		if p == "" || len(UnresolvedVars(p)) > 0 {
			continue
		}
		paths = append(paths, p)
	}
	return paths
}

// UnresolvedVars returns the names of ${VAR} references in s whose variable is
// not set.
func UnresolvedVars(s string) []string {
	var names []string
	for _, m := range envVarPattern.FindAllStringSubmatch(interpolateEnv(s), -1) {
		names = append(names, m[1])
	}
	return names
}

// interpolateEnv replaces ${VAR} with the value of VAR, leaving unknown
// placeholders untouched so validation can report them.
func interpolateEnv(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		if value, exists := os.LookupEnv(varName); exists {
			return value
		}
		return match
	})
}

// Validate checks the configuration for values that would make a match or a
// controller launch meaningless.
func (c *Config) Validate() error {
	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("log_level must be one of: debug, info, warn, error (got %q)", c.LogLevel)
	}
	if f := strings.ToLower(c.LogFormat); f != "text" && f != "json" {
		return fmt.Errorf("log_format must be text or json (got %q)", c.LogFormat)
	}

	for name, value := range map[string]string{
		"mode_file":          c.ModeFile,
		"example_controller": c.ExampleController,
		"python":             c.Python,
	} {
		if m := envVarPattern.FindStringSubmatch(value); len(m) > 1 {
			return fmt.Errorf("%s: environment variable ${%s} is not set", name, m[1])
		}
	}

	if len(c.Robots) == 0 {
		return fmt.Errorf("robots must map at least one Webots id to a zone")
	}
	seen := make(map[int]int, len(c.Robots))
	for id, zone := range c.Robots {
		if zone < 0 || zone > 3 {
			return fmt.Errorf("robots[%d]: zone must be between 0 and 3 (got %d)", id, zone)
		}
		if other, dup := seen[zone]; dup {
			return fmt.Errorf("robots[%d]: zone %d already assigned to robot %d", id, zone, other)
		}
		seen[zone] = id
	}

	if c.Match.Duration <= 0 {
		return fmt.Errorf("match.duration must be positive")
	}
	if c.Match.TimeStep <= 0 {
		return fmt.Errorf("match.time_step must be positive")
	}
	if c.Match.Duration < c.Match.TimeStep {
		return fmt.Errorf("match.duration (%v) is shorter than one time step (%v)", c.Match.Duration, c.Match.TimeStep)
	}

	return nil
}
