// Package webots describes the slice of the Webots supervisor API the
// competition tooling drives.
//
// The real implementation binds libController through cgo and is only built
// with the "webots" build tag. Tests use the gomock mocks in ./mocks or the
// recording fake in ./webotstest.
package webots

import (
	"errors"
	"time"
)

//go:generate mockgen -destination=mocks/mock_simulator.go -package=mocks github.com/srobo/srsim/internal/webots Simulator,Node

// SimulationMode is a Webots run mode.
type SimulationMode int

const (
	ModePause SimulationMode = iota
	ModeRealTime
	ModeRun
	ModeFast
)

func (m SimulationMode) String() string {
	switch m {
	case ModePause:
		return "pause"
	case ModeRealTime:
		return "real_time"
	case ModeRun:
		return "run"
	case ModeFast:
		return "fast"
	default:
		return "unknown"
	}
}

var (
	// ErrUnavailable is returned by Open when the binary was built without
	// libController support.
	ErrUnavailable = errors.New("webots supervisor API unavailable (build with -tags webots)")

	// ErrSimulationTerminated is returned by Step when Webots ends the
	// controller before the requested time elapsed.
	ErrSimulationTerminated = errors.New("simulation terminated by webots")
)

// Node is a handle on an entity in the simulated world.
type Node interface {
	ID() int
	Remove() error
}

// Simulator is the supervisor capability set: world lookup, run-mode control,
// time stepping and animation recording.
type Simulator interface {
	// BasicTimeStep reports the world's basic time step. Zero means unknown.
	BasicTimeStep() time.Duration
	// Step advances the simulation by d, blocking until it has elapsed.
	Step(d time.Duration) error

	Mode() (SimulationMode, error)
	SetMode(mode SimulationMode) error
	// Reset restores the world to its initial snapshot.
	Reset() error

	// NodeFromID returns nil with no error when no node has that id.
	NodeFromID(id int) (Node, error)

	StartRecording(path string) error
	StopRecording() error

	Close() error
}
