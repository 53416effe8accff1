// Package webotstest provides an in-memory webots.Simulator that records the
// calls made against it.
package webotstest

import (
	"fmt"
	"sync"
	"time"

	"github.com/srobo/srsim/internal/webots"
)

// Fake is a webots.Simulator backed by plain fields. The zero value has no
// nodes and a zero time step.
type Fake struct {
	TimeStep time.Duration
	// Nodes lists the ids present in the world.
	Nodes map[int]bool

	StepErr      error
	RecordingErr error

	mu        sync.Mutex
	calls     []string
	mode      webots.SimulationMode
	removed   []int
	recording string
	elapsed   time.Duration
	closed    bool
}

var _ webots.Simulator = (*Fake)(nil)

// NewFake returns a Fake containing the given node ids.
func NewFake(timeStep time.Duration, nodeIDs ...int) *Fake {
	f := &Fake{TimeStep: timeStep, Nodes: make(map[int]bool, len(nodeIDs))}
	for _, id := range nodeIDs {
		f.Nodes[id] = true
	}
	return f
}

func (f *Fake) record(format string, args ...any) {
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

// Calls returns every call in order, e.g. "SetMode(pause)" or "Step(2m29.984s)".
func (f *Fake) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// Removed returns the ids of nodes removed from the world.
func (f *Fake) Removed() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.removed...)
}

// Elapsed returns the total simulated time stepped.
func (f *Fake) Elapsed() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.elapsed
}

// Recording returns the path of an active recording, or "" when stopped.
func (f *Fake) Recording() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.recording
}

// Closed reports whether Close was called.
func (f *Fake) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *Fake) BasicTimeStep() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("BasicTimeStep()")
	return f.TimeStep
}

func (f *Fake) Step(d time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Step(%s)", d)
	if f.StepErr != nil {
		return f.StepErr
	}
	f.elapsed += d
	return nil
}

func (f *Fake) Mode() (webots.SimulationMode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Mode()")
	return f.mode, nil
}

func (f *Fake) SetMode(mode webots.SimulationMode) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("SetMode(%s)", mode)
	f.mode = mode
	return nil
}

func (f *Fake) Reset() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Reset()")
	f.elapsed = 0
	return nil
}

func (f *Fake) NodeFromID(id int) (webots.Node, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("NodeFromID(%d)", id)
	if !f.Nodes[id] {
		return nil, nil
	}
	return &fakeNode{fake: f, id: id}, nil
}

func (f *Fake) StartRecording(path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("StartRecording(%s)", path)
	if f.RecordingErr != nil {
		return f.RecordingErr
	}
	f.recording = path
	return nil
}

func (f *Fake) StopRecording() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("StopRecording()")
	f.recording = ""
	return nil
}

func (f *Fake) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Close()")
	f.closed = true
	return nil
}

type fakeNode struct {
	fake *Fake
	id   int
}

func (n *fakeNode) ID() int { return n.id }

func (n *fakeNode) Remove() error {
	f := n.fake
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.Nodes[n.id] {
		return fmt.Errorf("node %d already removed", n.id)
	}
	f.record("Remove(%d)", n.id)
	delete(f.Nodes, n.id)
	f.removed = append(f.removed, n.id)
	return nil
}
