// Package controller resolves and launches the robot.py for a simulated robot.
//
// Webots starts one dispatcher per robot. The dispatcher maps the robot's
// Webots node id to a starting zone and picks that zone's controller for the
// current mode. It then runs the controller as a child process and hands the
// child's exit code back to Webots.
//
// Resolution rules:
//   - zone 0 with both zone-0/robot.py and the shared robot.py present is
//     always an error, whatever the mode
//   - in comp mode every zone needs zone-N/robot.py; a missing file exits 1
//   - otherwise zones 1-3 need zone-N/robot.py; a missing file exits 0 so
//     a team can develop without the other zones populated
//   - zone 0 outside comp mode falls back to the shared robot.py, copying
//     the bundled example there when neither file exists
//
// Child environment:
//   - PYTHONPATH: configured module paths, with ${VAR} expanded and entries
//     naming an unset variable skipped, followed by the inherited value
//   - SR_ROBOT_ZONE, SR_ROBOT_MODE, SR_ROBOT_FILE
//
// The working directory is the directory containing the controller.
package controller
