package config

import "time"

// DefaultFilename is the optional config file looked up at the repository root.
const DefaultFilename = "srsim.yaml"

// Config represents the complete srsim configuration. It is built once at
// process start and handed to the supervisor and the dispatcher.
type Config struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// ModeFile holds "comp" to enable competition mode. Relative to the root.
	ModeFile string `yaml:"mode_file"`
	// ExampleController is copied into place for zone 0 in development mode.
	ExampleController string `yaml:"example_controller"`
	// ControllersDir is where the zone-N folders and the shared robot.py
	// live. Relative to the root; defaults to the directory containing it.
	ControllersDir string `yaml:"controllers_dir"`

	// Python is the interpreter used to run robot controllers.
	Python string `yaml:"python"`
	// ModulePaths are prepended to the inherited PYTHONPATH. Entries may
	// reference ${VAR}; an entry whose variable is unset is skipped.
	ModulePaths []string `yaml:"module_paths,omitempty"`

	// Robots maps Webots node ids to starting zones.
	Robots map[int]int `yaml:"robots"`

	Match MatchConfig `yaml:"match"`

	// SourceFile is the file the config was loaded from, empty for defaults.
	SourceFile string `yaml:"-"`
}

// MatchConfig defines match timing and where match artifacts are written.
type MatchConfig struct {
	Duration time.Duration `yaml:"duration"`
	// TimeStep is used when the simulator reports no basic time step.
	TimeStep      time.Duration `yaml:"time_step"`
	RecordingsDir string        `yaml:"recordings_dir"`
	// Ledger is the sqlite match history.
	Ledger   string `yaml:"ledger"`
	LockFile string `yaml:"lock_file"`
	// Archive toggles the manifest and ledger written after a match.
	Archive *bool `yaml:"archive,omitempty"`
}

// ArchiveEnabled reports whether match manifests and the ledger are written.
func (m MatchConfig) ArchiveEnabled() bool {
	return m.Archive == nil || *m.Archive
}

// Env carries process-level overrides read from the environment.
type Env struct {
	Root       string `env:"SRSIM_ROOT"`
	ConfigFile string `env:"SRSIM_CONFIG"`
	LogLevel   string `env:"SRSIM_LOG_LEVEL"`
	LogFormat  string `env:"SRSIM_LOG_FORMAT"`
	PythonPath string `env:"PYTHONPATH"`
}

// RobotEnv is the identity Webots hands to every robot controller process.
type RobotEnv struct {
	RobotID string `env:"WEBOTS_ROBOT_ID,required"`
}

// WebotsPythonPath is the Webots Python controller library. Webots only adds it
// to PYTHONPATH for Python controllers, so the dispatcher passes it on itself.
const WebotsPythonPath = "${WEBOTS_HOME}/lib/controller/python"

// DefaultRobots returns the Webots node id to zone mapping of the arena world.
func DefaultRobots() map[int]int {
	return map[int]int{
		291:  0,
		684:  1,
		1077: 2,
		1470: 3,
	}
}

// Defaults returns a Config matching the stock simulator checkout.
func Defaults() *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		ModeFile:          "robot_mode.txt",
		ExampleController: "controllers/example_controller/example_controller.py",
		ControllersDir:    "..",
		Python:            "python3",
		ModulePaths:       []string{WebotsPythonPath},
		Robots:            DefaultRobots(),
		Match: MatchConfig{
			Duration:      150 * time.Second,
			TimeStep:      32 * time.Millisecond,
			RecordingsDir: "recordings",
			Ledger:        "recordings/matches.db",
			LockFile:      "recordings/.supervisor.lock",
		},
	}
}
