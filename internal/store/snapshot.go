package store

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/san-kum/gravsim/internal/body"
	"github.com/san-kum/gravsim/internal/config"
)

// Snapshot captures a full simulation state: body specs (mass, position
// and velocity round-trip exactly), the physics configuration and the
// clock, so a run can be resumed where it stopped.
type Snapshot struct {
	Bodies    []body.Spec    `json:"bodies"`
	Physics   config.Physics `json:"physics"`
	Elapsed   float64        `json:"elapsed"`
	Timestamp string         `json:"timestamp"`
}

// SaveSnapshot writes a snapshot to path. An empty path picks a
// timestamped filename in the working directory; the chosen path is
// returned.
func SaveSnapshot(path string, bodies []*body.Body, phys config.Physics, elapsed float64) (string, error) {
	ts := time.Now().Format("20060102_150405")
	if path == "" {
		path = fmt.Sprintf("save_%s.json", ts)
	}

	snap := Snapshot{
		Bodies:    make([]body.Spec, len(bodies)),
		Physics:   phys,
		Elapsed:   elapsed,
		Timestamp: ts,
	}
	for i, b := range bodies {
		snap.Bodies[i] = b.Spec()
	}

	file, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return "", err
	}
	return path, nil
}

func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	for i, s := range snap.Bodies {
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("snapshot body %d: %w", i, err)
		}
	}
	return &snap, nil
}
