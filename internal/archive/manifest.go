// Package archive records what happened in each competition match: a YAML
// manifest next to the animation recording and a row in the sqlite ledger.
package archive

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/zeebo/blake3"
	"gopkg.in/yaml.v3"
)

// Status is the outcome of a match run.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// ZoneEntry describes one starting zone in a match.
type ZoneEntry struct {
	Zone       int    `yaml:"zone" json:"zone"`
	RobotID    int    `yaml:"robot_id" json:"robot_id"`
	Controller string `yaml:"controller,omitempty" json:"controller,omitempty"`
	Hash       string `yaml:"blake3,omitempty" json:"blake3,omitempty"`
	// Removed is true when the robot had no controller and was taken out of
	// the world before the match.
	Removed bool `yaml:"removed" json:"removed"`
}

// Match is the archived record of one supervisor run.
type Match struct {
	ID         string        `yaml:"id" json:"id"`
	Mode       string        `yaml:"mode" json:"mode"`
	StartedAt  time.Time     `yaml:"started_at" json:"started_at"`
	FinishedAt time.Time     `yaml:"finished_at" json:"finished_at"`
	Duration   time.Duration `yaml:"duration" json:"duration"`
	TimeStep   time.Duration `yaml:"time_step" json:"time_step"`
	Recording  string        `yaml:"recording" json:"recording"`
	Status     Status        `yaml:"status" json:"status"`
	Error      string        `yaml:"error,omitempty" json:"error,omitempty"`
	Zones      []ZoneEntry   `yaml:"zones" json:"zones"`
}

// NewMatchID returns a fresh match identifier.
func NewMatchID() string {
	return uuid.NewString()
}

// HashFile computes the BLAKE3 hash of a controller file.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	h := blake3.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// WriteManifest stores m as YAML at path, creating parent directories.
func WriteManifest(path string, m *Match) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create manifest directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// ReadManifest loads a manifest written by WriteManifest.
func ReadManifest(path string) (*Match, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Match
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	return &m, nil
}
