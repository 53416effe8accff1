package controller

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/srobo/srsim/internal/layout"
	"github.com/srobo/srsim/internal/log"
	"github.com/srobo/srsim/internal/mode"
)

// Resolver picks the robot.py for a zone.
type Resolver struct {
	layout *layout.Layout
	logger *slog.Logger
}

// NewResolver creates a Resolver over l.
func NewResolver(l *layout.Layout) *Resolver {
	return &Resolver{
		layout: l,
		logger: log.WithComponent("controller"),
	}
}

// StrictZone reports whether zone must have its own zone-N/robot.py under m.
func StrictZone(zone int, m mode.Mode) bool {
	return m.IsComp() || zone != 0
}

// ResolveRobotFile returns the controller to run for zone under m. Strict
// zones that lack a controller yield *MissingControllerError; a zone 0
// controller in both locations yields *AmbiguousControllerError.
func (r *Resolver) ResolveRobotFile(zone int, m mode.Mode) (string, error) {
	robotFile := r.layout.ZoneControllerPath(zone)
	fallback := r.layout.SharedControllerPath()
	logger := r.logger.With("zone", zone, "mode", m.String())

	if zone == 0 && layout.Exists(robotFile) && layout.Exists(fallback) {
		return "", &AmbiguousControllerError{ZonePath: robotFile, SharedPath: fallback}
	}

	if StrictZone(zone, m) {
		if layout.Exists(robotFile) {
			return robotFile, nil
		}
		logger.Warn("no robot controller found", "expected", robotFile)
		return "", &MissingControllerError{Zone: zone, Path: robotFile, Mode: m}
	}

	if layout.Exists(robotFile) {
		return robotFile, nil
	}
	if layout.Exists(fallback) {
		return fallback, nil
	}

	example := r.layout.ExampleController()
	logger.Info("no robot controller found, copying example", "example", example, "dest", fallback)
	if err := copyFile(example, fallback); err != nil {
		return "", fmt.Errorf("copy example controller: %w", err)
	}
	return fallback, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return fmt.Errorf("write %s: %w", dst, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close %s: %w", dst, err)
	}
	return nil
}
