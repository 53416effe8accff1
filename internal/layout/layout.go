// Package layout resolves every filesystem path the supervisor and the
// controller dispatcher touch, relative to the simulator checkout.
package layout

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/srobo/srsim/internal/config"
)

const (
	robotFilename = "robot.py"

	recordingDateFormat = "2006-01-02"
	recordingTimeFormat = "15-04-05"
)

// Layout maps configured relative paths onto a simulator checkout.
type Layout struct {
	root string
	cfg  *config.Config
}

// New returns a Layout rooted at root.
func New(root string, cfg *config.Config) (*Layout, error) {
	trimmed := strings.TrimSpace(root)
	if trimmed == "" {
		return nil, fmt.Errorf("simulator root is empty")
	}
	abs, err := filepath.Abs(trimmed)
	if err != nil {
		return nil, fmt.Errorf("resolve simulator root %q: %w", root, err)
	}
	if cfg == nil {
		cfg = config.Defaults()
	}
	return &Layout{root: filepath.Clean(abs), cfg: cfg}, nil
}

// DiscoverRoot finds the simulator checkout. An explicit override wins;
// otherwise Webots runs controllers from controllers/<name>/, so the root is
// two levels above the executable or the working directory.
func DiscoverRoot(override string) (string, error) {
	if o := strings.TrimSpace(override); o != "" {
		info, err := os.Stat(o)
		if err != nil {
			return "", fmt.Errorf("simulator root %s: %w", o, err)
		}
		if !info.IsDir() {
			return "", fmt.Errorf("simulator root %s is not a directory", o)
		}
		return filepath.Abs(o)
	}

	var candidates []string
	if exe, err := os.Executable(); err == nil {
		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			exe = resolved
		}
		candidates = append(candidates, filepath.Join(filepath.Dir(exe), "..", ".."))
	}
	if wd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(wd, "..", ".."), wd)
	}

	for _, c := range candidates {
		if looksLikeRoot(c) {
			return filepath.Abs(c)
		}
	}
	return "", fmt.Errorf("could not locate the simulator root (no controllers/ directory found); set SRSIM_ROOT")
}

func looksLikeRoot(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, "controllers"))
	return err == nil && info.IsDir()
}

// Root returns the simulator checkout directory.
func (l *Layout) Root() string { return l.root }

// Config returns the configuration the layout was built from.
func (l *Layout) Config() *config.Config { return l.cfg }

func (l *Layout) resolve(p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(l.root, p)
}

// DefaultConfigPath returns the srsim.yaml looked up under root when no config
// file is named explicitly.
func DefaultConfigPath(root string) string {
	return filepath.Join(root, config.DefaultFilename)
}

// ModeFile returns the path of the dev/comp mode file.
func (l *Layout) ModeFile() string { return l.resolve(l.cfg.ModeFile) }

// ExampleController returns the bundled controller copied in for first-time
// users.
func (l *Layout) ExampleController() string { return l.resolve(l.cfg.ExampleController) }

// ControllersDir returns the directory holding zone-N folders and the shared
// robot.py.
func (l *Layout) ControllersDir() string { return l.resolve(l.cfg.ControllersDir) }

// ZoneControllerPath returns the robot.py expected for zone, without checking
// that it exists.
func (l *Layout) ZoneControllerPath(zone int) string {
	return filepath.Join(l.ControllersDir(), fmt.Sprintf("zone-%d", zone), robotFilename)
}

// SharedControllerPath returns the zone-less robot.py used as the zone 0
// fallback in development mode.
func (l *Layout) SharedControllerPath() string {
	return filepath.Join(l.ControllersDir(), robotFilename)
}

// RecordingsDir returns the directory animation recordings are written under.
func (l *Layout) RecordingsDir() string { return l.resolve(l.cfg.Match.RecordingsDir) }

// RecordingPath returns the animation file for a match started at t.
func (l *Layout) RecordingPath(t time.Time) string {
	return filepath.Join(
		l.RecordingsDir(),
		t.Format(recordingDateFormat),
		t.Format(recordingTimeFormat)+".html",
	)
}

// ManifestPath returns the match manifest written next to a recording.
func ManifestPath(recording string) string {
	return strings.TrimSuffix(recording, filepath.Ext(recording)) + ".yaml"
}

// LedgerPath returns the sqlite match history database.
func (l *Layout) LedgerPath() string { return l.resolve(l.cfg.Match.Ledger) }

// LockPath returns the supervisor's single-instance lock file.
func (l *Layout) LockPath() string { return l.resolve(l.cfg.Match.LockFile) }

// Exists reports whether path exists.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
