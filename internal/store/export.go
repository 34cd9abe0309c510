package store

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"github.com/san-kum/gravsim/internal/sim"
)

type ExportData struct {
	Scenario      string             `json:"scenario"`
	Method        string             `json:"method"`
	Dt            float64            `json:"dt"`
	StepsPerFrame int                `json:"steps_per_frame"`
	StepsTaken    int                `json:"steps_taken"`
	Times         []float64          `json:"times"`
	States        [][]float64        `json:"states"`
	Kinetic       []float64          `json:"kinetic"`
	Potential     []float64          `json:"potential"`
	Total         []float64          `json:"total"`
	Metrics       map[string]float64 `json:"metrics"`
	EnergyDrift   float64            `json:"energy_drift"`
	Fault         string             `json:"fault,omitempty"`
}

// ExportJSON writes the full sampled result as indented JSON.
func ExportJSON(w io.Writer, scenario string, cfg sim.Config, result *sim.Result) error {
	data := ExportData{
		Scenario:      scenario,
		Method:        cfg.Method.String(),
		Dt:            cfg.Dt,
		StepsPerFrame: cfg.StepsPerFrame,
		StepsTaken:    result.StepsTaken,
		Times:         result.Times,
		States:        result.States,
		Kinetic:       result.Kinetic,
		Potential:     result.Potential,
		Total:         result.Total,
		Metrics:       result.Metrics,
		EnergyDrift:   result.EnergyDrift,
	}
	if result.Fault != nil {
		data.Fault = result.Fault.Error()
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// ExportCSV writes the sampled result in the states.csv layout.
func ExportCSV(w io.Writer, result *sim.Result) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	numBodies := 0
	if len(result.States) > 0 {
		numBodies = len(result.States[0]) / 4
	}

	header := []string{"time"}
	for i := 0; i < numBodies; i++ {
		header = append(header,
			fmt.Sprintf("x%d", i), fmt.Sprintf("y%d", i),
			fmt.Sprintf("vx%d", i), fmt.Sprintf("vy%d", i))
	}
	header = append(header, "kinetic", "potential", "total")
	if err := cw.Write(header); err != nil {
		return err
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
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
