// Package supervisor runs a single competition match inside Webots: it removes
// robots that have no controller, records the arena, and runs the simulation
// in real time for the match duration before pausing it.
package supervisor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/srobo/srsim/internal/archive"
	"github.com/srobo/srsim/internal/config"
	"github.com/srobo/srsim/internal/layout"
	"github.com/srobo/srsim/internal/lock"
	"github.com/srobo/srsim/internal/log"
	"github.com/srobo/srsim/internal/mode"
	"github.com/srobo/srsim/internal/webots"
)

// DevModeNotice is printed when the supervisor is started outside competition mode.
const DevModeNotice = "Development mode, exiting competition supervisor"

// Opener connects to the simulator. It is only called in competition mode.
type Opener func() (webots.Simulator, error)

// Result summarises a supervisor run.
type Result struct {
	Mode mode.Mode
	// Skipped is true when the mode was not competition and nothing ran.
	Skipped bool
	State   State
	// Match is nil when the run never reached the recording phase.
	Match *archive.Match
}

// Supervisor owns one competition match.
type Supervisor struct {
	layout *layout.Layout
	cfg    *config.Config
	open   Opener
	logger *slog.Logger

	out io.Writer
	now func() time.Time
}

// New creates a Supervisor. Notices and banners go to stdout.
func New(l *layout.Layout, open Opener) *Supervisor {
	return &Supervisor{
		layout: l,
		cfg:    l.Config(),
		open:   open,
		logger: log.WithComponent("supervisor"),
		out:    os.Stdout,
		now:    time.Now,
	}
}

// SetOutput redirects notices and banners.
func (s *Supervisor) SetOutput(w io.Writer) {
	s.out = w
}

// MatchDuration returns the longest whole number of time steps that fits in
// duration.
func MatchDuration(duration, step time.Duration) time.Duration {
	if step <= 0 {
		return 0
	}
	return step * (duration / step)
}

// Run executes the match. Outside competition mode it prints DevModeNotice
// and returns without touching the simulator.
func (s *Supervisor) Run(ctx context.Context) (res Result, err error) {
	if err := ctx.Err(); err != nil {
		return res, err
	}

	m, err := mode.Resolve(s.layout.ModeFile())
	if err != nil {
		return res, err
	}
	res.Mode = m
	if !m.IsComp() {
		fmt.Fprintln(s.out, DevModeNotice)
		s.logger.Debug("supervisor skipped", "mode", m.String())
		res.Skipped = true
		return res, nil
	}

	pidLock, err := lock.AcquirePIDLock(s.layout.LockPath())
	if err != nil {
		return res, err
	}
	defer func() {
		if relErr := pidLock.Release(); relErr != nil {
			s.logger.Warn("failed to release supervisor lock", "path", pidLock.Path(), "error", relErr)
		}
	}()

	sim, err := s.open()
	if err != nil {
		return res, fmt.Errorf("open simulator: %w", err)
	}
	defer func() {
		if closeErr := sim.Close(); closeErr != nil {
			s.logger.Warn("failed to close simulator", "error", closeErr)
		}
	}()

	if err := prepare(sim); err != nil {
		return res, err
	}
	res.State = StatePrepared

	zones, err := s.prune(sim)
	if err != nil {
		return res, err
	}
	res.State = StateRobotsPruned

	match := &archive.Match{
		ID:        archive.NewMatchID(),
		Mode:      m.String(),
		StartedAt: s.now(),
		Zones:     zones,
	}
	match.Recording = s.layout.RecordingPath(match.StartedAt)
	res.Match = match
	logger := log.WithMatch(match.ID).With(slog.String("component", "supervisor"))

	defer func() {
		if res.State < StateRunning {
			return
		}
		match.FinishedAt = s.now()
		switch {
		case err != nil:
			match.Status = archive.StatusFailed
			match.Error = err.Error()
		case res.State != StatePaused:
			match.Status = archive.StatusFailed
			match.Error = "match interrupted"
		default:
			match.Status = archive.StatusCompleted
		}
		if s.cfg.Match.ArchiveEnabled() {
			s.archiveMatch(ctx, logger, match)
		}
	}()

	err = s.recordAndRun(sim, match, &res, logger)
	return res, err
}

func prepare(sim webots.Simulator) error {
	if err := sim.SetMode(webots.ModePause); err != nil {
		return fmt.Errorf("pause simulation: %w", err)
	}
	if err := sim.Reset(); err != nil {
		return fmt.Errorf("reset simulation: %w", err)
	}
	return nil
}

// prune removes every robot whose zone has no controller. Zones are visited
// in ascending order.
func (s *Supervisor) prune(sim webots.Simulator) ([]archive.ZoneEntry, error) {
	type slot struct{ zone, robotID int }
	slots := make([]slot, 0, len(s.cfg.Robots))
	for id, zone := range s.cfg.Robots {
		slots = append(slots, slot{zone: zone, robotID: id})
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i].zone < slots[j].zone })

	entries := make([]archive.ZoneEntry, 0, len(slots))
	for _, sl := range slots {
		entry := archive.ZoneEntry{Zone: sl.zone, RobotID: sl.robotID}
		path := s.layout.ZoneControllerPath(sl.zone)

		if layout.Exists(path) {
			entry.Controller = path
			if s.cfg.Match.ArchiveEnabled() {
				hash, err := archive.HashFile(path)
				if err != nil {
					s.logger.Warn("failed to hash controller", "zone", sl.zone, "path", path, "error", err)
				}
				entry.Hash = hash
			}
			entries = append(entries, entry)
			continue
		}

		node, err := sim.NodeFromID(sl.robotID)
		if err != nil {
			return nil, fmt.Errorf("look up node %d: %w", sl.robotID, err)
		}
		if node == nil {
			return nil, &MissingNodeError{Zone: sl.zone, RobotID: sl.robotID}
		}
		if err := node.Remove(); err != nil {
			return nil, fmt.Errorf("remove robot in zone %d: %w", sl.zone, err)
		}
		s.logger.Info("removed robot without controller", "zone", sl.zone, "robot_id", sl.robotID)
		entry.Removed = true
		entries = append(entries, entry)
	}
	return entries, nil
}

// recordAndRun wraps the match in an animation recording. The recording is
// stopped on every exit path, including a panic in the run phase.
func (s *Supervisor) recordAndRun(sim webots.Simulator, match *archive.Match, res *Result, logger *slog.Logger) (err error) {
	if err := os.MkdirAll(filepath.Dir(match.Recording), 0o755); err != nil {
		return fmt.Errorf("create recordings directory: %w", err)
	}

	fmt.Fprintf(s.out, "Saving animation to %s\n", match.Recording)
	if err := sim.StartRecording(match.Recording); err != nil {
		return fmt.Errorf("start recording: %w", err)
	}
	res.State = StateRunning
	defer func() {
		if stopErr := sim.StopRecording(); stopErr != nil {
			logger.Error("failed to stop recording", "path", match.Recording, "error", stopErr)
			if err == nil {
				err = fmt.Errorf("stop recording: %w", stopErr)
			}
		}
	}()

	if err := s.runMatch(sim, match, logger); err != nil {
		return err
	}
	res.State = StatePaused
	return nil
}

func (s *Supervisor) runMatch(sim webots.Simulator, match *archive.Match, logger *slog.Logger) error {
	banner(s.out, "Match start")
	if err := sim.SetMode(webots.ModeRealTime); err != nil {
		return fmt.Errorf("start real time simulation: %w", err)
	}

	step := sim.BasicTimeStep()
	if step <= 0 {
		step = s.cfg.Match.TimeStep
	}
	match.TimeStep = step
	match.Duration = MatchDuration(s.cfg.Match.Duration, step)
	logger.Info("match running", "duration", match.Duration, "time_step", step)

	if err := sim.Step(match.Duration); err != nil {
		if errors.Is(err, webots.ErrSimulationTerminated) {
			return fmt.Errorf("simulation ended before the match finished: %w", err)
		}
		return fmt.Errorf("step simulation: %w", err)
	}

	banner(s.out, "Game over, pausing")
	if err := sim.SetMode(webots.ModePause); err != nil {
		return fmt.Errorf("pause simulation: %w", err)
	}
	return nil
}

// archiveMatch writes the manifest and ledger row. Failures are logged only.
func (s *Supervisor) archiveMatch(ctx context.Context, logger *slog.Logger, match *archive.Match) {
	manifest := layout.ManifestPath(match.Recording)
	if err := archive.WriteManifest(manifest, match); err != nil {
		logger.Warn("failed to write match manifest", "path", manifest, "error", err)
	}

	ledger, err := archive.OpenLedger(ctx, s.layout.LedgerPath())
	if err != nil {
		logger.Warn("failed to open match ledger", "error", err)
		return
	}
	defer ledger.Close()
	if err := ledger.Record(ctx, match); err != nil {
		logger.Warn("failed to record match", "error", err)
		return
	}
	logger.Info("match archived", "status", match.Status, "manifest", manifest)
}
