package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/srobo/srsim/internal/archive"
	"github.com/srobo/srsim/internal/config"
	"github.com/srobo/srsim/internal/controller"
	"github.com/srobo/srsim/internal/doctor"
	"github.com/srobo/srsim/internal/layout"
	"github.com/srobo/srsim/internal/log"
	"github.com/srobo/srsim/internal/mode"
	"github.com/srobo/srsim/internal/supervisor"
	"github.com/srobo/srsim/internal/webots"
)

var (
	version   = "0.1.0-dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

// Webots starts a controller by running the executable named after its
// controller directory, so the binary is also installed under these names.
const (
	supervisorAlias = "competition_supervisor"
	controllerAlias = "sr_controller"
)

// openSimulator is replaced in tests.
var openSimulator supervisor.Opener = webots.Open

func main() {
	os.Exit(run(os.Args))
}

func run(argv []string) int {
	if len(argv) == 0 {
		printUsage()
		return 1
	}
	switch strings.TrimSuffix(filepath.Base(argv[0]), filepath.Ext(argv[0])) {
	case supervisorAlias:
		return runSupervisor(argv[1:])
	case controllerAlias:
		return runController(argv[1:])
	}
	return runCLI(argv[1:])
}

func runCLI(cliArgs []string) int {
	if len(cliArgs) < 1 {
		printUsage()
		return 1
	}

	cmd := cliArgs[0]
	args := cliArgs[1:]

	switch cmd {
	case "supervisor":
		return runSupervisor(args)
	case "controller":
		return runController(args)
	case "check", "doctor":
		return runCheck(args)
	case "mode":
		return runMode(args)
	case "matches":
		return runMatches(args)
	case "version", "--version":
		return runVersion(args)
	case "help", "--help", "-h":
		printUsage()
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		return 1
	}
}

func printUsage() {
	fmt.Print(`srsim - Student Robotics simulator glue for Webots

Usage:
  srsim <command> [flags]

Commands:
  supervisor   Run one competition match (Webots supervisor controller)
  controller   Launch the robot controller for WEBOTS_ROBOT_ID
  check        Validate configuration, mode file and zone controllers
  mode         Print the current simulator mode
  matches      List archived competition matches
  version      Show version information

When installed as "competition_supervisor" or "sr_controller" the binary runs
the matching command directly.

Common flags:
  --root DIR       Simulator checkout (default: $SRSIM_ROOT or discovered)
  --config FILE    Configuration file (default: $SRSIM_CONFIG or <root>/srsim.yaml)

Environment:
  SRSIM_ROOT, SRSIM_CONFIG, SRSIM_LOG_LEVEL, SRSIM_LOG_FORMAT
`)
}

// commonFlags registers the flags every layout-aware command accepts.
type commonFlags struct {
	root       string
	configPath string
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.root, "root", "", "Simulator checkout directory")
	fs.StringVar(&c.configPath, "config", "", "Path to configuration file")
}

// loadLayout resolves the checkout and configuration and sets up logging.
// An explicitly named config file must exist; the default one is optional.
func loadLayout(c commonFlags) (*layout.Layout, error) {
	var env config.Env
	if err := config.ParseEnv(&env); err != nil {
		return nil, err
	}

	rootOverride := c.root
	if rootOverride == "" {
		rootOverride = env.Root
	}
	root, err := layout.DiscoverRoot(rootOverride)
	if err != nil {
		return nil, err
	}

	configPath := c.configPath
	if configPath == "" {
		configPath = env.ConfigFile
	}

	var cfg *config.Config
	if configPath != "" {
		cfg, err = config.Load(configPath)
	} else {
		cfg, err = config.LoadOptional(layout.DefaultConfigPath(root))
	}
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv(env)

	log.SetupWith(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	return layout.New(root, cfg)
}

func runSupervisor(args []string) int {
	var common commonFlags
	fs := flag.NewFlagSet("supervisor", flag.ContinueOnError)
	common.register(fs)
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}

	l, err := loadLayout(common)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load setup: %v\n", err)
		return 1
	}

	res, err := supervisor.New(l, openSimulator).Run(context.Background())
	if err != nil {
		log.WithComponent("supervisor").Error("match failed", "state", res.State.String(), "error", err)
		fmt.Fprintf(os.Stderr, "Competition supervisor failed: %v\n", err)
		return 1
	}
	return 0
}

func runController(args []string) int {
	var common commonFlags
	fs := flag.NewFlagSet("controller", flag.ContinueOnError)
	common.register(fs)
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}

	l, err := loadLayout(common)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load setup: %v\n", err)
		return 1
	}

	code, err := controller.New(l).Dispatch(context.Background())
	if err != nil {
		return controllerExitCode(err)
	}
	return code
}

// controllerExitCode prints the diagnostic for a dispatch error and returns
// the status the process should exit with.
func controllerExitCode(err error) int {
	fmt.Fprintln(os.Stderr, err.Error())

	var missing *controller.MissingControllerError
	if errors.As(err, &missing) {
		return missing.ExitCode()
	}
	return 1
}

func runCheck(args []string) int {
	var common commonFlags
	var jsonOut bool
	var format string

	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	common.register(fs)
	fs.StringVar(&format, "format", "human", "Output format (human, json)")
	fs.BoolVar(&jsonOut, "json", false, "Output in JSON")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}
	if jsonOut {
		format = "json"
	}

	l, err := loadLayout(common)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config load error: %v\n", err)
		return 1
	}

	result := doctor.New(l).Validate()
	switch format {
	case "json":
		out, err := doctor.FormatJSON(result)
		if err != nil {
			fmt.Fprintf(os.Stderr, "JSON format error: %v\n", err)
			return 1
		}
		fmt.Println(out)
	default:
		fmt.Print(doctor.FormatHuman(result))
	}

	if !result.Valid {
		return 1
	}
	return 0
}

func runMode(args []string) int {
	var common commonFlags
	fs := flag.NewFlagSet("mode", flag.ContinueOnError)
	common.register(fs)
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}

	l, err := loadLayout(common)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load setup: %v\n", err)
		return 1
	}

	m, err := mode.Resolve(l.ModeFile())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read mode: %v\n", err)
		return 1
	}
	fmt.Println(m.String())
	return 0
}

func runMatches(args []string) int {
	var common commonFlags
	var jsonOut bool
	var limit int

	fs := flag.NewFlagSet("matches", flag.ContinueOnError)
	common.register(fs)
	fs.BoolVar(&jsonOut, "json", false, "Output in JSON")
	fs.IntVar(&limit, "limit", 20, "Maximum number of matches to list")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}

	l, err := loadLayout(common)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load setup: %v\n", err)
		return 1
	}
	if !layout.Exists(l.LedgerPath()) {
		if jsonOut {
			fmt.Println("[]")
		} else {
			fmt.Println("No matches recorded.")
		}
		return 0
	}

	ctx := context.Background()
	ledger, err := archive.OpenLedger(ctx, l.LedgerPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open match ledger: %v\n", err)
		return 1
	}
	defer ledger.Close()

	matches, err := ledger.Recent(ctx, limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read matches: %v\n", err)
		return 1
	}

	if jsonOut {
		if matches == nil {
			matches = []archive.Match{}
		}
		data, err := json.MarshalIndent(matches, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "JSON format error: %v\n", err)
			return 1
		}
		fmt.Println(string(data))
		return 0
	}

	if len(matches) == 0 {
		fmt.Println("No matches recorded.")
		return 0
	}
	fmt.Println(matchTable(matches))
	return 0
}

var (
	matchHeaderStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	matchCellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// matchTable renders matches newest first, one row per match.
func matchTable(matches []archive.Match) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "STARTED", "STATUS", "DURATION", "ZONES", "RECORDING").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return matchHeaderStyle
			}
			return matchCellStyle
		})
	for _, m := range matches {
		t.Row(
			m.ID,
			m.StartedAt.Local().Format(time.DateTime),
			string(m.Status),
			m.Duration.String(),
			zoneSummary(m.Zones),
			m.Recording,
		)
	}
	return t.String()
}

// zoneSummary renders the populated zones, e.g. "0,2".
func zoneSummary(zones []archive.ZoneEntry) string {
	var active []string
	for _, z := range zones {
		if !z.Removed {
			active = append(active, fmt.Sprint(z.Zone))
		}
	}
	if len(active) == 0 {
		return "-"
	}
	return strings.Join(active, ",")
}

type versionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
}

func runVersion(args []string) int {
	fs := flag.NewFlagSet("version", flag.ContinueOnError)
	jsonOut := fs.Bool("json", false, "Output version metadata as JSON")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}
	if fs.NArg() > 0 {
		fmt.Fprintln(os.Stderr, "Usage: srsim version [--json]")
		return 1
	}

	info := currentVersionInfo()

	if *jsonOut {
		data, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to render version JSON: %v\n", err)
			return 1
		}
		fmt.Println(string(data))
		return 0
	}

	fmt.Printf("srsim %s\n", info.Version)
	fmt.Printf("commit: %s\n", info.Commit)
	fmt.Printf("built_at: %s\n", info.BuildTime)
	return 0
}

func currentVersionInfo() versionInfo {
	info := versionInfo{
		Version:   strings.TrimSpace(version),
		Commit:    "unknown",
		BuildTime: "unknown",
	}

	if info.Version == "" {
		info.Version = "0.0.0-dev"
	}

	resolvedCommit := strings.TrimSpace(gitCommit)
	if resolvedCommit == "" || resolvedCommit == "unknown" {
		resolvedCommit = strings.TrimSpace(readBuildSetting("vcs.revision"))
	}
	if resolvedCommit != "" {
		info.Commit = shortenCommit(resolvedCommit)
	}

	resolvedBuildTime := strings.TrimSpace(buildDate)
	if resolvedBuildTime == "" || resolvedBuildTime == "unknown" {
		resolvedBuildTime = strings.TrimSpace(readBuildSetting("vcs.time"))
	}
	if normalizedBuildTime, ok := normalizeBuildTimeUTC(resolvedBuildTime); ok {
		info.BuildTime = normalizedBuildTime
	}

	return info
}

func shortenCommit(commit string) string {
	if len(commit) <= 12 {
		return commit
	}
	return commit[:12]
}

func normalizeBuildTimeUTC(raw string) (string, bool) {
	if raw == "" || raw == "unknown" {
		return "", false
	}

	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return "", false
	}

	return t.UTC().Format(time.RFC3339), true
}

func readBuildSetting(key string) string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, setting := range info.Settings {
		if setting.Key == key {
			return setting.Value
		}
	}
	return ""
}
