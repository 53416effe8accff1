package controller

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"syscall"

	"github.com/srobo/srsim/internal/config"
	"github.com/srobo/srsim/internal/layout"
	"github.com/srobo/srsim/internal/log"
	"github.com/srobo/srsim/internal/mode"
)

// Environment variables handed to the robot controller.
const (
	EnvPythonPath = "PYTHONPATH"
	EnvRobotZone  = "SR_ROBOT_ZONE"
	EnvRobotMode  = "SR_ROBOT_MODE"
	EnvRobotFile  = "SR_ROBOT_FILE"
)

// Dispatcher launches the controller for the robot Webots started it for.
type Dispatcher struct {
	layout   *layout.Layout
	cfg      *config.Config
	resolver *Resolver
	logger   *slog.Logger

	stdout  io.Writer
	stderr  io.Writer
	environ func() []string
}

// New creates a Dispatcher. Child output goes to the process's own stdout and
// stderr.
func New(l *layout.Layout) *Dispatcher {
	return &Dispatcher{
		layout:   l,
		cfg:      l.Config(),
		resolver: NewResolver(l),
		logger:   log.WithComponent("controller"),
		stdout:   os.Stdout,
		stderr:   os.Stderr,
		environ:  os.Environ,
	}
}

// SetOutput redirects the child's stdout and stderr.
func (d *Dispatcher) SetOutput(stdout, stderr io.Writer) {
	d.stdout = stdout
	d.stderr = stderr
}

// Launch describes a resolved controller run.
type Launch struct {
	Zone      int
	Mode      mode.Mode
	RobotFile string
	Args      []string
	Dir       string
	Env       []string
}

// Dispatch resolves the robot's controller from WEBOTS_ROBOT_ID and the mode
// file, runs it, and returns the child's exit code. Policy stops (a missing
// strict controller, an ambiguous zone 0 controller, an unknown id) are
// returned as typed errors for the caller to turn into an exit status.
func (d *Dispatcher) Dispatch(ctx context.Context) (int, error) {
	var robot config.RobotEnv
	if err := config.ParseEnv(&robot); err != nil {
		return 1, err
	}
	var procEnv config.Env
	if err := config.ParseEnv(&procEnv); err != nil {
		return 1, err
	}

	launch, err := d.Prepare(robot.RobotID, procEnv.PythonPath)
	if err != nil {
		return 1, err
	}
	return d.Run(ctx, launch)
}

// Prepare resolves zone, mode and controller for robotID and builds the child
// command without starting it.
func (d *Dispatcher) Prepare(robotID, inheritedPythonPath string) (*Launch, error) {
	zone, err := d.zoneFor(robotID)
	if err != nil {
		return nil, err
	}

	m, err := mode.Resolve(d.layout.ModeFile())
	if err != nil {
		return nil, err
	}

	robotFile, err := d.resolver.ResolveRobotFile(zone, m)
	if err != nil {
		return nil, err
	}

	env := mergeEnv(d.environ(), map[string]string{
		EnvPythonPath: d.pythonPath(inheritedPythonPath),
		EnvRobotZone:  strconv.Itoa(zone),
		EnvRobotMode:  m.String(),
		EnvRobotFile:  robotFile,
	})

	return &Launch{
		Zone:      zone,
		Mode:      m,
		RobotFile: robotFile,
		Args:      []string{d.cfg.Python, "-u", robotFile},
		Dir:       filepath.Dir(robotFile),
		Env:       env,
	}, nil
}

// Run starts the prepared controller and blocks until it exits. The child's
// exit code is returned unchanged; a child killed by a signal reports
// 128+signal like a shell would.
func (d *Dispatcher) Run(ctx context.Context, launch *Launch) (int, error) {
	if err := ctx.Err(); err != nil {
		return 1, err
	}

	logger := log.WithZone(launch.Zone).With("component", "controller", "mode", launch.Mode.String())
	logger.Info("starting robot controller", "file", launch.RobotFile)

	// No CommandContext: once started the controller runs for the lifetime of
	// the simulation.
	cmd := exec.Command(launch.Args[0], launch.Args[1:]...)
	cmd.Dir = launch.Dir
	cmd.Env = launch.Env
	cmd.Stdout = d.stdout
	cmd.Stderr = d.stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return 1, fmt.Errorf("run robot controller %s: %w", launch.RobotFile, err)
		}
		code := exitCode(exitErr)
		logger.Warn("robot controller exited with non-zero status", "exit_code", code)
		return code, nil
	}

	logger.Info("robot controller finished")
	return 0, nil
}

func (d *Dispatcher) zoneFor(robotID string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(robotID))
	if err != nil {
		return 0, &UnknownRobotError{RobotID: robotID}
	}
	zone, ok := d.cfg.ZoneFor(id)
	if !ok {
		return 0, &UnknownRobotError{RobotID: robotID}
	}
	return zone, nil
}

func (d *Dispatcher) pythonPath(inherited string) string {
	parts := make([]string, 0, len(d.cfg.ModulePaths)+1)
	for _, p := range d.cfg.ModuleSearchPaths() {
		if !filepath.IsAbs(p) {
			p = filepath.Join(d.layout.Root(), p)
		}
		parts = append(parts, p)
	}
	if inherited != "" {
		parts = append(parts, inherited)
	}
	return strings.Join(parts, string(os.PathListSeparator))
}

func exitCode(exitErr *exec.ExitError) int {
	if code := exitErr.ExitCode(); code >= 0 {
		return code
	}
	if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return 128 + int(ws.Signal())
	}
	return 1
}

// mergeEnv returns base with overrides applied. Existing keys keep their
// position; new keys are appended in sorted order.
func mergeEnv(base []string, overrides map[string]string) []string {
	out := make([]string, 0, len(base)+len(overrides))
	applied := make(map[string]bool, len(overrides))

	for _, kv := range base {
		key, _, _ := strings.Cut(kv, "=")
		if v, ok := overrides[key]; ok {
			if !applied[key] {
				out = append(out, key+"="+v)
				applied[key] = true
			}
			continue
		}
		out = append(out, kv)
	}

	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		if !applied[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		out = append(out, k+"="+overrides[k])
	}
	return out
}
