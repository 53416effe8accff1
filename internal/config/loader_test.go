package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultFilename)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultsAreValid(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 150*time.Second, cfg.Match.Duration)
	assert.Equal(t, 32*time.Millisecond, cfg.Match.TimeStep)
	assert.True(t, cfg.Match.ArchiveEnabled())

	zone, ok := cfg.ZoneFor(1077)
	assert.True(t, ok)
	assert.Equal(t, 2, zone)

	_, ok = cfg.ZoneFor(42)
	assert.False(t, ok)
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		env     map[string]string
		wantErr string
		checkFn func(t *testing.T, cfg *Config)
	}{
		{
			name: "partial file keeps defaults",
			yaml: `
log_level: debug
match:
  duration: 10s
`,
			checkFn: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "debug", cfg.LogLevel)
				assert.Equal(t, 10*time.Second, cfg.Match.Duration)
				assert.Equal(t, 32*time.Millisecond, cfg.Match.TimeStep)
				assert.Equal(t, "robot_mode.txt", cfg.ModeFile)
				assert.Equal(t, DefaultRobots(), cfg.Robots)
			},
		},
		{
			name: "robots replace the default table",
			yaml: `
robots:
  7: 0
  8: 1
`,
			checkFn: func(t *testing.T, cfg *Config) {
				assert.Equal(t, map[int]int{7: 0, 8: 1}, cfg.Robots)
			},
		},
		{
			name: "env var interpolation",
			yaml: `
python: ${SRSIM_TEST_PYTHON}
module_paths: [modules, "${SRSIM_TEST_EXTRA}"]
`,
			env: map[string]string{
				"SRSIM_TEST_PYTHON": "/usr/bin/python3.11",
				"SRSIM_TEST_EXTRA":  "/opt/sr",
			},
			checkFn: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "/usr/bin/python3.11", cfg.Python)
				assert.Equal(t, []string{"modules", "/opt/sr"}, cfg.ModulePaths)
			},
		},
		{
			name:    "unresolved env var",
			yaml:    "python: ${SRSIM_TEST_UNSET_PYTHON}\n",
			wantErr: "SRSIM_TEST_UNSET_PYTHON",
		},
		{
			name: "archive can be disabled",
			yaml: `
match:
  archive: false
`,
			checkFn: func(t *testing.T, cfg *Config) {
				assert.False(t, cfg.Match.ArchiveEnabled())
			},
		},
		{
			name: "zone out of range",
			yaml: `
robots:
  291: 4
`,
			wantErr: "zone must be between 0 and 3",
		},
		{
			name: "duplicate zone",
			yaml: `
robots:
  1: 2
  3: 2
`,
			wantErr: "already assigned",
		},
		{
			name: "duration shorter than a step",
			yaml: `
match:
  duration: 10ms
  time_step: 32ms
`,
			wantErr: "shorter than one time step",
		},
		{
			name:    "bad log format",
			yaml:    "log_format: xml\n",
			wantErr: "log_format",
		},
		{
			name:    "invalid yaml",
			yaml:    "match: [\n",
			wantErr: "failed to parse YAML",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := writeConfig(t, tt.yaml)

			cfg, err := Load(path)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, path, cfg.SourceFile)
			if tt.checkFn != nil {
				tt.checkFn(t, cfg)
			}
		})
	}
}

func TestLoadOptionalMissingFile(t *testing.T) {
	cfg, err := LoadOptional(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)

	cfg, err = LoadOptional("")
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}

func TestModuleSearchPaths(t *testing.T) {
	cfg := Defaults()
	assert.Equal(t, []string{WebotsPythonPath}, cfg.ModulePaths)

	t.Setenv("WEBOTS_HOME", "/usr/local/webots")
	assert.Equal(t, []string{"/usr/local/webots/lib/controller/python"}, cfg.ModuleSearchPaths())
	assert.Empty(t, UnresolvedVars(WebotsPythonPath))

	os.Unsetenv("WEBOTS_HOME")
	assert.Empty(t, cfg.ModuleSearchPaths())
	assert.Equal(t, []string{"WEBOTS_HOME"}, UnresolvedVars(WebotsPythonPath))

	cfg.ModulePaths = []string{"modules", "", "${WEBOTS_HOME}/lib"}
	assert.Equal(t, []string{"modules"}, cfg.ModuleSearchPaths())
}

func TestLoadKeepsDefaultModulePathsUnlessSet(t *testing.T) {
	cfg, err := Load(writeConfig(t, "python: python3\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{WebotsPythonPath}, cfg.ModulePaths)

	cfg, err = Load(writeConfig(t, "module_paths: []\n"))
	require.NoError(t, err)
	assert.Empty(t, cfg.ModulePaths)
}

func TestParseEnv(t *testing.T) {
	t.Setenv("SRSIM_ROOT", "/srv/sim")
	t.Setenv("SRSIM_LOG_LEVEL", "warn")
	t.Setenv("PYTHONPATH", "/a:/b")

	var e Env
	require.NoError(t, ParseEnv(&e))
	assert.Equal(t, "/srv/sim", e.Root)
	assert.Equal(t, "/a:/b", e.PythonPath)

	cfg := Defaults()
	cfg.ApplyEnv(e)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
}

func TestParseRobotEnvRequiresID(t *testing.T) {
	t.Setenv("WEBOTS_ROBOT_ID", "")
	os.Unsetenv("WEBOTS_ROBOT_ID")

	var r RobotEnv
	require.Error(t, ParseEnv(&r))

	t.Setenv("WEBOTS_ROBOT_ID", "684")
	require.NoError(t, ParseEnv(&r))
	assert.Equal(t, "684", r.RobotID)
}
