package controller

import (
	"fmt"

	"github.com/srobo/srsim/internal/mode"
)

// UnknownRobotError reports a Webots node id with no zone assignment.
type UnknownRobotError struct {
	RobotID string
}

func (e *UnknownRobotError) Error() string {
	return fmt.Sprintf("unknown robot id %q: no zone assigned", e.RobotID)
}

// AmbiguousControllerError reports a zone 0 controller present in both the
// zone-0 folder and the shared location.
type AmbiguousControllerError struct {
	ZonePath   string
	SharedPath string
}

func (e *AmbiguousControllerError) Error() string {
	return fmt.Sprintf(
		"found robot controller in shared location and zone-0 location; "+
			"remove one of the controllers before running the simulation\n%s\n%s",
		e.ZonePath, e.SharedPath,
	)
}

// MissingControllerError reports a strict zone with no robot.py.
type MissingControllerError struct {
	Zone int
	Path string
	Mode mode.Mode
}

func (e *MissingControllerError) Error() string {
	return fmt.Sprintf("no robot controller found for zone %d (expected %s)", e.Zone, e.Path)
}

// ExitCode is 1 in competition mode, where every zone must be populated, and
// 0 otherwise.
func (e *MissingControllerError) ExitCode() int {
	if e.Mode.IsComp() {
		return 1
	}
	return 0
}
