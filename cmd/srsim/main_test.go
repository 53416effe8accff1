package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/srobo/srsim/internal/archive"
	"github.com/srobo/srsim/internal/log"
	"github.com/srobo/srsim/internal/supervisor"
	"github.com/srobo/srsim/internal/webots"
	"github.com/srobo/srsim/internal/webots/webotstest"
)

func TestMain(m *testing.M) {
	log.Setup("ERROR") // Suppress logs in tests
	os.Exit(m.Run())
}

func captureOutputWithExitCode(t *testing.T, run func() int) (int, string, string) {
	t.Helper()

	oldStdout := os.Stdout
	oldStderr := os.Stderr

	stdoutR, stdoutW, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe stdout failed: %v", err)
	}
	stderrR, stderrW, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe stderr failed: %v", err)
	}

	os.Stdout = stdoutW
	os.Stderr = stderrW

	code := run()

	_ = stdoutW.Close()
	_ = stderrW.Close()
	os.Stdout = oldStdout
	os.Stderr = oldStderr

	stdoutBytes, _ := io.ReadAll(stdoutR)
	stderrBytes, _ := io.ReadAll(stderrR)

	_ = stdoutR.Close()
	_ = stderrR.Close()

	return code, string(stdoutBytes), string(stderrBytes)
}

func setVersionMetadataForTest(t *testing.T, v, commit, built string) {
	t.Helper()

	origVersion := version
	origCommit := gitCommit
	origBuildDate := buildDate

	version = v
	gitCommit = commit
	buildDate = built

	t.Cleanup(func() {
		version = origVersion
		gitCommit = origCommit
		buildDate = origBuildDate
	})
}

// setupCheckout creates <tmp>/simulator with a controllers/ directory and
// returns the root. Zone folders live next to it in <tmp>.
func setupCheckout(t *testing.T, modeText string, zones ...int) string {
	t.Helper()
	t.Setenv("SRSIM_ROOT", "")
	t.Setenv("SRSIM_CONFIG", "")

	parent := t.TempDir()
	root := filepath.Join(parent, "simulator")
	writeTestFile(t, filepath.Join(root, "controllers", "example_controller", "example_controller.py"), "# example\n")
	if modeText != "" {
		writeTestFile(t, filepath.Join(root, "robot_mode.txt"), modeText)
	}
	for _, zone := range zones {
		writeTestFile(t, filepath.Join(parent, fmt.Sprintf("zone-%d", zone), "robot.py"), "exit 0\n")
	}
	return root
}

func writeTestFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func useFakeSimulator(t *testing.T, sim webots.Simulator) {
	t.Helper()
	orig := openSimulator
	openSimulator = func() (webots.Simulator, error) { return sim, nil }
	t.Cleanup(func() { openSimulator = orig })
}

func TestRunCLIRootVersionFlag(t *testing.T) {
	setVersionMetadataForTest(t, "1.2.3", "abc1234567890", "2026-02-12T11:30:00Z")

	code, stdout, stderr := captureOutputWithExitCode(t, func() int {
		return runCLI([]string{"--version"})
	})
	if code != 0 {
		t.Fatalf("runCLI() code = %d, stderr: %s", code, stderr)
	}
	if !strings.Contains(stdout, "srsim 1.2.3") {
		t.Fatalf("stdout missing semantic version: %s", stdout)
	}
	if !strings.Contains(stdout, "commit: abc123456789") {
		t.Fatalf("stdout missing short commit: %s", stdout)
	}
	if !strings.Contains(stdout, "built_at: 2026-02-12T11:30:00Z") {
		t.Fatalf("stdout missing build time: %s", stdout)
	}
}

func TestRunVersionJSONOutputIncludesMetadata(t *testing.T) {
	setVersionMetadataForTest(t, "2.0.0-rc.1", "aabbccddeeff001122334455", "2026-02-12T11:30:00-05:00")

	code, stdout, stderr := captureOutputWithExitCode(t, func() int {
		return runVersion([]string{"--json"})
	})
	if code != 0 {
		t.Fatalf("runVersion() code = %d, stderr: %s", code, stderr)
	}

	var out versionInfo
	if err := json.Unmarshal([]byte(stdout), &out); err != nil {
		t.Fatalf("failed to parse version JSON: %v\noutput=%s", err, stdout)
	}
	if out.Commit != "aabbccddeeff" {
		t.Fatalf("commit = %q, want %q", out.Commit, "aabbccddeeff")
	}
	if out.BuildTime != "2026-02-12T16:30:00Z" {
		t.Fatalf("build_time = %q, want %q", out.BuildTime, "2026-02-12T16:30:00Z")
	}
}

func TestRunCLIUnknownCommand(t *testing.T) {
	code, stdout, stderr := captureOutputWithExitCode(t, func() int {
		return runCLI([]string{"launch"})
	})
	if code != 1 {
		t.Fatalf("runCLI() code = %d, want 1", code)
	}
	if !strings.Contains(stderr, "Unknown command: launch") {
		t.Fatalf("stderr missing diagnostic: %s", stderr)
	}
	if !strings.Contains(stdout, "Usage:") {
		t.Fatalf("stdout missing usage: %s", stdout)
	}
}

func TestSupervisorAliasInDevModeExitsQuietly(t *testing.T) {
	root := setupCheckout(t, "dev")
	orig := openSimulator
	openSimulator = func() (webots.Simulator, error) {
		t.Fatal("simulator opened in development mode")
		return nil, nil
	}
	t.Cleanup(func() { openSimulator = orig })

	argv0 := filepath.Join(root, "controllers", supervisorAlias, supervisorAlias)
	code, stdout, stderr := captureOutputWithExitCode(t, func() int {
		return run([]string{argv0, "--root", root})
	})
	if code != 0 {
		t.Fatalf("run() code = %d, stderr: %s", code, stderr)
	}
	if strings.TrimSpace(stdout) != supervisor.DevModeNotice {
		t.Fatalf("stdout = %q, want dev notice", stdout)
	}
}

func TestSupervisorRunsMatchAndListsIt(t *testing.T) {
	root := setupCheckout(t, "comp\n", 0, 2)
	sim := webotstest.NewFake(32*time.Millisecond, 291, 684, 1077, 1470)
	useFakeSimulator(t, sim)

	code, stdout, stderr := captureOutputWithExitCode(t, func() int {
		return runCLI([]string{"supervisor", "--root", root})
	})
	if code != 0 {
		t.Fatalf("supervisor code = %d, stderr: %s", code, stderr)
	}
	if !strings.Contains(stdout, "Game over, pausing") {
		t.Fatalf("stdout missing end banner: %s", stdout)
	}
	if got := sim.Elapsed(); got != 149984*time.Millisecond {
		t.Fatalf("elapsed = %v, want 2m29.984s", got)
	}
	if got := sim.Removed(); len(got) != 2 || got[0] != 684 || got[1] != 1470 {
		t.Fatalf("removed = %v, want [684 1470]", got)
	}

	code, stdout, stderr = captureOutputWithExitCode(t, func() int {
		return runCLI([]string{"matches", "--root", root, "--json"})
	})
	if code != 0 {
		t.Fatalf("matches code = %d, stderr: %s", code, stderr)
	}
	var matches []archive.Match
	if err := json.Unmarshal([]byte(stdout), &matches); err != nil {
		t.Fatalf("failed to parse matches JSON: %v\noutput=%s", err, stdout)
	}
	if len(matches) != 1 || matches[0].Status != archive.StatusCompleted {
		t.Fatalf("matches = %+v, want one completed match", matches)
	}

	code, stdout, _ = captureOutputWithExitCode(t, func() int {
		return runCLI([]string{"matches", "--root", root})
	})
	if code != 0 || !strings.Contains(stdout, matches[0].ID) || !strings.Contains(stdout, "0,2") {
		t.Fatalf("matches table = %q (code %d)", stdout, code)
	}
}

func TestSupervisorFailureExitsNonZero(t *testing.T) {
	root := setupCheckout(t, "comp", 0, 1, 2)
	// Zone 3 has no controller and its robot is absent from the world.
	useFakeSimulator(t, webotstest.NewFake(32*time.Millisecond, 291, 684, 1077))

	code, _, stderr := captureOutputWithExitCode(t, func() int {
		return runCLI([]string{"supervisor", "--root", root})
	})
	if code != 1 {
		t.Fatalf("supervisor code = %d, want 1", code)
	}
	if !strings.Contains(stderr, "zone 3 (id: 1470)") {
		t.Fatalf("stderr missing node diagnostic: %s", stderr)
	}
}

func TestControllerExitCodes(t *testing.T) {
	tests := []struct {
		name       string
		mode       string
		zones      []int
		robotID    string
		wantCode   int
		wantStderr string
	}{
		{"comp missing zone", "comp", nil, "684", 1, "no robot controller found for zone 1"},
		{"dev missing zone", "dev", nil, "684", 0, "no robot controller found for zone 1"},
		{"unknown robot", "dev", nil, "9999", 1, `unknown robot id "9999"`},
		{"child exit code passes through", "comp", []int{1}, "684", 7, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := setupCheckout(t, tt.mode)
			parent := filepath.Dir(root)
			for _, zone := range tt.zones {
				writeTestFile(t, filepath.Join(parent, fmt.Sprintf("zone-%d", zone), "robot.py"), "exit 7\n")
			}
			configPath := filepath.Join(root, "srsim.yaml")
			writeTestFile(t, configPath, "python: /bin/sh\n")
			t.Setenv("WEBOTS_ROBOT_ID", tt.robotID)

			argv0 := filepath.Join(root, "controllers", controllerAlias, controllerAlias)
			code, _, stderr := captureOutputWithExitCode(t, func() int {
				return run([]string{argv0, "--root", root})
			})
			if code != tt.wantCode {
				t.Fatalf("exit code = %d, want %d (stderr: %s)", code, tt.wantCode, stderr)
			}
			if tt.wantStderr != "" && !strings.Contains(stderr, tt.wantStderr) {
				t.Fatalf("stderr = %q, want it to contain %q", stderr, tt.wantStderr)
			}
		})
	}
}

func TestControllerAmbiguousZeroExitsOne(t *testing.T) {
	root := setupCheckout(t, "dev", 0)
	writeTestFile(t, filepath.Join(filepath.Dir(root), "robot.py"), "exit 0\n")
	t.Setenv("WEBOTS_ROBOT_ID", "291")

	code, _, stderr := captureOutputWithExitCode(t, func() int {
		return runCLI([]string{"controller", "--root", root})
	})
	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if !strings.Contains(stderr, "remove one of the controllers") {
		t.Fatalf("stderr missing ambiguity diagnostic: %s", stderr)
	}
}

func TestRunCheck(t *testing.T) {
	root := setupCheckout(t, "comp", 0, 1, 2, 3)
	writeTestFile(t, filepath.Join(root, "srsim.yaml"), "python: /bin/sh\n")

	code, stdout, stderr := captureOutputWithExitCode(t, func() int {
		return runCLI([]string{"check", "--root", root, "--json"})
	})
	if code != 0 {
		t.Fatalf("check code = %d, stdout: %s stderr: %s", code, stdout, stderr)
	}
	var out struct {
		Valid bool   `json:"valid"`
		Mode  string `json:"mode"`
	}
	if err := json.Unmarshal([]byte(stdout), &out); err != nil {
		t.Fatalf("failed to parse check JSON: %v\noutput=%s", err, stdout)
	}
	if !out.Valid || out.Mode != "comp" {
		t.Fatalf("check = %+v, want valid comp", out)
	}

	if err := os.Remove(filepath.Join(filepath.Dir(root), "zone-3", "robot.py")); err != nil {
		t.Fatal(err)
	}
	code, stdout, _ = captureOutputWithExitCode(t, func() int {
		return runCLI([]string{"check", "--root", root})
	})
	if code != 1 || !strings.Contains(stdout, "zone-3") {
		t.Fatalf("check after removal = %q (code %d)", stdout, code)
	}
}

func TestRunCheckRejectsBadConfig(t *testing.T) {
	root := setupCheckout(t, "")
	configPath := filepath.Join(t.TempDir(), "bad.yaml")
	writeTestFile(t, configPath, "match:\n  duration: -1s\n")

	code, _, stderr := captureOutputWithExitCode(t, func() int {
		return runCLI([]string{"check", "--root", root, "--config", configPath})
	})
	if code != 1 || !strings.Contains(stderr, "match.duration must be positive") {
		t.Fatalf("check code = %d, stderr: %s", code, stderr)
	}
}

func TestRunMode(t *testing.T) {
	root := setupCheckout(t, "  comp \n")
	code, stdout, stderr := captureOutputWithExitCode(t, func() int {
		return runCLI([]string{"mode", "--root", root})
	})
	if code != 0 || stdout != "comp\n" {
		t.Fatalf("mode = %q (code %d, stderr %s)", stdout, code, stderr)
	}

	root = setupCheckout(t, "")
	_, stdout, _ = captureOutputWithExitCode(t, func() int {
		return runCLI([]string{"mode", "--root", root})
	})
	if stdout != "dev\n" {
		t.Fatalf("mode without file = %q, want dev", stdout)
	}
}

func TestRunMatchesWithoutLedger(t *testing.T) {
	root := setupCheckout(t, "comp")
	code, stdout, _ := captureOutputWithExitCode(t, func() int {
		return runCLI([]string{"matches", "--root", root, "--json"})
	})
	if code != 0 || strings.TrimSpace(stdout) != "[]" {
		t.Fatalf("matches = %q (code %d)", stdout, code)
	}
}

func TestMatchTable(t *testing.T) {
	started := time.Date(2026, 3, 14, 12, 0, 5, 0, time.UTC)
	out := matchTable([]archive.Match{
		{
			ID:        "match-new",
			StartedAt: started,
			Status:    archive.StatusCompleted,
			Duration:  149984 * time.Millisecond,
			Recording: "recordings/2026-03-14/12-00-05.html",
			Zones: []archive.ZoneEntry{
				{Zone: 0},
				{Zone: 1, Removed: true},
				{Zone: 3},
			},
		},
		{ID: "match-old", StartedAt: started.Add(-time.Hour), Status: archive.StatusFailed},
	})

	for _, want := range []string{
		"ID", "STARTED", "STATUS", "DURATION", "ZONES", "RECORDING",
		"match-new", "completed", "2m29.984s", "0,3", "recordings/2026-03-14/12-00-05.html",
		"match-old", "failed",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("table missing %q:\n%s", want, out)
		}
	}

	lines := strings.Split(out, "\n")
	var oldRow string
	for _, line := range lines {
		if strings.Contains(line, "match-old") {
			oldRow = line
		}
	}
	if !strings.Contains(oldRow, " - ") {
		t.Fatalf("match without zones should show '-', got row %q", oldRow)
	}
	if strings.Index(out, "match-new") > strings.Index(out, "match-old") {
		t.Fatalf("rows out of order:\n%s", out)
	}
}
