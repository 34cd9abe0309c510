// Package store persists run results and simulation snapshots.
package store

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/san-kum/gravsim/internal/sim"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID            string             `json:"id"`
	Scenario      string             `json:"scenario"`
	Timestamp     time.Time          `json:"timestamp"`
	Dt            float64            `json:"dt"`
	Frames        int                `json:"frames"`
	StepsPerFrame int                `json:"steps_per_frame"`
	Method        string             `json:"method"`
	Bodies        int                `json:"bodies"`
	StepsTaken    int                `json:"steps_taken"`
	EnergyDrift   float64            `json:"energy_drift"`
	Fault         string             `json:"fault,omitempty"`
	Metrics       map[string]float64 `json:"metrics"`
}

// Save writes a run directory with metadata.json and states.csv and
// returns the run id.
func (s *Store) Save(scenario string, cfg sim.Config, result *sim.Result) (string, error) {
	runID := fmt.Sprintf("%s_%d", scenario, time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	numBodies := 0
	if len(result.States) > 0 {
		numBodies = len(result.States[0]) / 4
	}

	meta := RunMetadata{
		ID:            runID,
		Scenario:      scenario,
		Timestamp:     time.Now(),
		Dt:            cfg.Dt,
		Frames:        cfg.Frames,
		StepsPerFrame: cfg.StepsPerFrame,
		Method:        cfg.Method.String(),
		Bodies:        numBodies,
		StepsTaken:    result.StepsTaken,
		EnergyDrift:   result.EnergyDrift,
		Metrics:       result.Metrics,
	}
	if result.Fault != nil {
		meta.Fault = result.Fault.Error()
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "states.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	header := []string{"time"}
	for i := 0; i < numBodies; i++ {
		header = append(header,
			fmt.Sprintf("x%d", i), fmt.Sprintf("y%d", i),
			fmt.Sprintf("vx%d", i), fmt.Sprintf("vy%d", i))
	}
	header = append(header, "kinetic", "potential", "total")
	if err := w.Write(header); err != nil {
		return "", err
	}

	for i := range result.States {
		row := []string{formatFloat(result.Times[i])}
		for _, val := range result.States[i] {
			row = append(row, formatFloat(val))
		}
		row = append(row,
			formatFloat(result.Kinetic[i]),
			formatFloat(result.Potential[i]),
			formatFloat(result.Total[i]))
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	return runID, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 17, 64)
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name(), "metadata.json"))
		if err != nil {
			continue
		}
		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}
		runs = append(runs, meta)
	}
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadStates reads back the sampled trajectory: times, flattened body
// states and the three energy columns.
func (s *Store) LoadStates(runID string) (times []float64, states [][]float64, energies [][3]float64, err error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "states.csv"))
	if err != nil {
		return nil, nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, nil, err
	}
	if len(records) < 2 {
		return []float64{}, [][]float64{}, [][3]float64{}, nil
	}

	for _, record := range records[1:] {
		if len(record) < 4 {
			continue
		}
		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			continue
		}
		vals := make([]float64, 0, len(record)-1)
		ok := true
		for _, field := range record[1:] {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				ok = false
				break
			}
			vals = append(vals, v)
		}
		if !ok || len(vals) < 3 {
			continue
		}
		n := len(vals)
		times = append(times, t)
		states = append(states, vals[:n-3])
		energies = append(energies, [3]float64{vals[n-3], vals[n-2], vals[n-1]})
	}
	return times, states, energies, nil
}
