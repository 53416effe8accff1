// Package doctor validates a simulator checkout: configuration, mode file and
// the controllers each zone would run.
package doctor

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"

	"github.com/srobo/srsim/internal/config"
	"github.com/srobo/srsim/internal/layout"
	"github.com/srobo/srsim/internal/mode"
)

// Result holds the outcome of a validation run.
type Result struct {
	Valid    bool      `json:"valid"`
	Mode     mode.Mode `json:"mode"`
	Errors   []Issue   `json:"errors,omitempty"`
	Warnings []Issue   `json:"warnings,omitempty"`
}

// Issue describes a single validation error or warning.
type Issue struct {
	Category string `json:"category"`
	Message  string `json:"message"`
	Field    string `json:"field,omitempty"`
}

// Doctor validates a layout and the configuration it was built from.
type Doctor struct {
	layout   *layout.Layout
	cfg      *config.Config
	lookPath func(string) (string, error)
}

// New creates a Doctor for l.
func New(l *layout.Layout) *Doctor {
	return &Doctor{layout: l, cfg: l.Config(), lookPath: exec.LookPath}
}

// Validate runs all checks and returns a result.
func (d *Doctor) Validate() *Result {
	r := &Result{Valid: true}

	d.validateMatch(r)
	d.validateRobots(r)
	d.validateMode(r)
	d.validateControllers(r)
	d.validateRecordings(r)
	d.warnMissingEnvVars(r)
	d.warnMissingInterpreter(r)

	r.Valid = len(r.Errors) == 0
	return r
}

func (d *Doctor) addError(r *Result, category, field, msg string) {
	r.Errors = append(r.Errors, Issue{Category: category, Field: field, Message: msg})
}

func (d *Doctor) addWarning(r *Result, category, field, msg string) {
	r.Warnings = append(r.Warnings, Issue{Category: category, Field: field, Message: msg})
}

// validateMatch checks match timing.
func (d *Doctor) validateMatch(r *Result) {
	m := d.cfg.Match
	if m.Duration <= 0 {
		d.addError(r, "match", "match.duration", "duration must be positive")
	}
	if m.TimeStep <= 0 {
		d.addError(r, "match", "match.time_step", "time_step must be positive")
	}
	if m.Duration > 0 && m.TimeStep > 0 && m.Duration < m.TimeStep {
		d.addError(r, "match", "match.duration",
			fmt.Sprintf("duration %v is shorter than one time step (%v)", m.Duration, m.TimeStep))
	}
}

// validateRobots checks the node id to zone table.
func (d *Doctor) validateRobots(r *Result) {
	if len(d.cfg.Robots) == 0 {
		d.addError(r, "robots", "robots", "no robots configured")
		return
	}

	ids := make([]int, 0, len(d.cfg.Robots))
	for id := range d.cfg.Robots {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	seen := make(map[int]int, len(ids))
	for _, id := range ids {
		zone := d.cfg.Robots[id]
		field := fmt.Sprintf("robots.%d", id)
		if zone < 0 || zone > 3 {
			d.addError(r, "robots", field, fmt.Sprintf("zone %d is outside 0-3", zone))
			continue
		}
		if other, dup := seen[zone]; dup {
			d.addError(r, "robots", field, fmt.Sprintf("zone %d is also assigned to robot %d", zone, other))
			continue
		}
		seen[zone] = id
	}
}

// validateMode reads the mode file the same way the supervisor and the
// dispatcher do.
func (d *Doctor) validateMode(r *Result) {
	m, err := mode.Resolve(d.layout.ModeFile())
	if err != nil {
		d.addError(r, "mode", d.cfg.ModeFile, err.Error())
		return
	}
	r.Mode = m
	if !m.Known() {
		d.addWarning(r, "mode", d.cfg.ModeFile,
			fmt.Sprintf("unrecognised mode %q; it behaves like development mode", m))
	}
}

// validateControllers checks each configured zone for a runnable controller.
func (d *Doctor) validateControllers(r *Result) {
	zones := make([]int, 0, len(d.cfg.Robots))
	for _, zone := range d.cfg.Robots {
		zones = append(zones, zone)
	}
	sort.Ints(zones)

	comp := r.Mode.IsComp()
	for _, zone := range zones {
		path := d.layout.ZoneControllerPath(zone)
		field := fmt.Sprintf("zone-%d", zone)
		hasZone := layout.Exists(path)

		if zone == 0 {
			shared := d.layout.SharedControllerPath()
			if hasZone && layout.Exists(shared) {
				d.addError(r, "controllers", field,
					fmt.Sprintf("both %s and %s exist; remove one", path, shared))
				continue
			}
			if !comp && !hasZone && !layout.Exists(shared) && !layout.Exists(d.layout.ExampleController()) {
				d.addWarning(r, "controllers", field,
					fmt.Sprintf("no controller and no example controller at %s", d.layout.ExampleController()))
			}
			if !comp {
				continue
			}
		}

		if hasZone {
			continue
		}
		if comp {
			d.addError(r, "controllers", field,
				fmt.Sprintf("no controller at %s; the robot will be removed", path))
		} else {
			d.addWarning(r, "controllers", field,
				fmt.Sprintf("no controller at %s; the robot will not run", path))
		}
	}
}

// validateRecordings checks that the recordings directory is usable.
func (d *Doctor) validateRecordings(r *Result) {
	dir := d.layout.RecordingsDir()
	info, err := os.Stat(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			d.addError(r, "recordings", "match.recordings_dir", err.Error())
		}
		return
	}
	if !info.IsDir() {
		d.addError(r, "recordings", "match.recordings_dir", fmt.Sprintf("%s is not a directory", dir))
	}
}

// warnMissingEnvVars warns about module paths that will be skipped because
// they reference an unset variable.
func (d *Doctor) warnMissingEnvVars(r *Result) {
	for i, p := range d.cfg.ModulePaths {
		for _, name := range config.UnresolvedVars(p) {
			d.addWarning(r, "env_vars", fmt.Sprintf("module_paths[%d]", i),
				fmt.Sprintf("environment variable ${%s} not set; %s is skipped", name, p))
		}
	}
}

// warnMissingInterpreter warns when the controller interpreter is not on PATH.
func (d *Doctor) warnMissingInterpreter(r *Result) {
	if _, err := d.lookPath(d.cfg.Python); err != nil {
		d.addWarning(r, "python", "python",
			fmt.Sprintf("interpreter %q not found: %v", d.cfg.Python, err))
	}
}

// FormatHuman returns a human-readable validation report.
func FormatHuman(r *Result) string {
	var b strings.Builder

	if r.Valid && len(r.Warnings) == 0 {
		fmt.Fprintf(&b, "Setup valid (mode: %s).\n", r.Mode)
		return b.String()
	}

	if r.Valid && len(r.Warnings) > 0 {
		fmt.Fprintf(&b, "Setup valid (mode: %s, %d warning(s))\n", r.Mode, len(r.Warnings))
	}

	if !r.Valid {
		fmt.Fprintf(&b, "Setup invalid (%d error(s), %d warning(s))\n", len(r.Errors), len(r.Warnings))
	}

	for _, e := range r.Errors {
		if e.Field != "" {
			fmt.Fprintf(&b, "  ERROR [%s] %s: %s\n", e.Category, e.Field, e.Message)
		} else {
			fmt.Fprintf(&b, "  ERROR [%s] %s\n", e.Category, e.Message)
		}
	}
	for _, w := range r.Warnings {
		if w.Field != "" {
			fmt.Fprintf(&b, "  WARN  [%s] %s: %s\n", w.Category, w.Field, w.Message)
		} else {
			fmt.Fprintf(&b, "  WARN  [%s] %s\n", w.Category, w.Message)
		}
	}

	return b.String()
}

// FormatJSON returns the result as indented JSON.
func FormatJSON(r *Result) (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
