package supervisor

import "fmt"

// State is how far a supervisor run progressed.
type State int

const (
	StateNotStarted State = iota
	StatePrepared
	StateRobotsPruned
	StateRunning
	StatePaused
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not_started"
	case StatePrepared:
		return "prepared"
	case StateRobotsPruned:
		return "robots_pruned"
	case StateRunning:
		return "recording_running"
	case StatePaused:
		return "paused_recorded"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// MissingNodeError reports a zone without a controller whose robot could not
// be found in the world. The world and the robot id table disagree.
type MissingNodeError struct {
	Zone    int
	RobotID int
}

func (e *MissingNodeError) Error() string {
	return fmt.Sprintf("failed to get Webots node for zone %d (id: %d)", e.Zone, e.RobotID)
}
