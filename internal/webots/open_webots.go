//go:build webots

package webots

/*
#cgo LDFLAGS: -lController
#include <stdlib.h>
#include <webots/robot.h>
#include <webots/supervisor.h>
*/
import "C"

import (
	"fmt"
	"sync"
	"time"
	"unsafe"
)

var initOnce sync.Once

// Open connects to the Webots instance that launched this process. The
// controller library allows a single connection per process; libController
// exits the process itself if Webots cannot be reached.
func Open() (Simulator, error) {
	initOnce.Do(func() {
		C.wb_robot_init()
	})
	return &supervisor{}, nil
}

type supervisor struct{}

func (s *supervisor) BasicTimeStep() time.Duration {
	ms := float64(C.wb_robot_get_basic_time_step())
	return time.Duration(ms * float64(time.Millisecond))
}

func (s *supervisor) Step(d time.Duration) error {
	if rc := C.wb_robot_step(C.int(d.Milliseconds())); rc == -1 {
		return ErrSimulationTerminated
	}
	return nil
}

func (s *supervisor) Mode() (SimulationMode, error) {
	switch C.wb_supervisor_simulation_get_mode() {
	case C.WB_SUPERVISOR_SIMULATION_MODE_PAUSE:
		return ModePause, nil
	case C.WB_SUPERVISOR_SIMULATION_MODE_REAL_TIME:
		return ModeRealTime, nil
	case C.WB_SUPERVISOR_SIMULATION_MODE_FAST:
		return ModeFast, nil
	default:
		return 0, fmt.Errorf("unrecognised simulation mode")
	}
}

func (s *supervisor) SetMode(mode SimulationMode) error {
	var m C.WbSimulationMode
	switch mode {
	case ModePause:
		m = C.WB_SUPERVISOR_SIMULATION_MODE_PAUSE
	case ModeRealTime:
		m = C.WB_SUPERVISOR_SIMULATION_MODE_REAL_TIME
	case ModeFast:
		m = C.WB_SUPERVISOR_SIMULATION_MODE_FAST
	default:
		// Recent Webots releases folded "run" into "fast".
		return fmt.Errorf("simulation mode %s not supported by this webots release", mode)
	}
	C.wb_supervisor_simulation_set_mode(m)
	return nil
}

func (s *supervisor) Reset() error {
	C.wb_supervisor_simulation_reset()
	return nil
}

func (s *supervisor) NodeFromID(id int) (Node, error) {
	ref := C.wb_supervisor_node_get_from_id(C.int(id))
	if ref == nil {
		return nil, nil
	}
	return &node{id: id, ref: ref}, nil
}

func (s *supervisor) StartRecording(path string) error {
	cpath := C.CString(path)
	defer C.free(unsafe.Pointer(cpath))
	if !bool(C.wb_supervisor_animation_start_recording(cpath)) {
		return fmt.Errorf("start animation recording to %s", path)
	}
	return nil
}

func (s *supervisor) StopRecording() error {
	if !bool(C.wb_supervisor_animation_stop_recording()) {
		return fmt.Errorf("stop animation recording")
	}
	return nil
}

func (s *supervisor) Close() error {
	C.wb_robot_cleanup()
	return nil
}

type node struct {
	id  int
	ref C.WbNodeRef
}

func (n *node) ID() int { return n.id }

func (n *node) Remove() error {
	C.wb_supervisor_node_remove(n.ref)
	return nil
}
