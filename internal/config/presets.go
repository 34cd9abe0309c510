package config

import "github.com/san-kum/gravsim/internal/body"

// Presets are self-contained scenarios; all but "classic" use G=1 units.
var Presets = map[string]*Config{
	"classic": Default(),
	"orbit": {
		Bodies: []body.Spec{
			{Mass: 100.0, Position: [2]float64{0, 0}, Velocity: [2]float64{0, 0}, Radius: 10, Color: [3]int{255, 200, 0}},
			{Mass: 1.0, Position: [2]float64{10, 0}, Velocity: [2]float64{0, 3}, Radius: 4, Color: [3]int{0, 200, 255}},
		},
		Physics: Physics{G: 1.0, Dt: 0.001, ScaleFactor: 1.0, StepsPerFrame: 10, Method: "verlet"},
	},
	"binary": {
		Bodies: []body.Spec{
			{Mass: 50.0, Position: [2]float64{-5, 0}, Velocity: [2]float64{0, -1.1}, Radius: 8, Color: [3]int{255, 100, 100}},
			{Mass: 50.0, Position: [2]float64{5, 0}, Velocity: [2]float64{0, 1.1}, Radius: 8, Color: [3]int{100, 100, 255}},
		},
		Physics: Physics{G: 1.0, Dt: 0.001, ScaleFactor: 1.0, StepsPerFrame: 10, Method: "verlet"},
	},
	"figure-eight": {
		// Chenciner-Montgomery choreography, equal masses.
		Bodies: []body.Spec{
			{Mass: 1.0, Position: [2]float64{-0.97000436, 0.24308753}, Velocity: [2]float64{0.466203685, 0.43236573}, Radius: 5, Color: [3]int{255, 80, 80}},
			{Mass: 1.0, Position: [2]float64{0.97000436, -0.24308753}, Velocity: [2]float64{0.466203685, 0.43236573}, Radius: 5, Color: [3]int{80, 255, 80}},
			{Mass: 1.0, Position: [2]float64{0, 0}, Velocity: [2]float64{-0.93240737, -0.86473146}, Radius: 5, Color: [3]int{80, 80, 255}},
		},
		Physics: Physics{G: 1.0, Dt: 0.0005, ScaleFactor: 1.0, StepsPerFrame: 20, Method: "verlet"},
	},
	"chaos": {
		Bodies: []body.Spec{
			{Mass: 1000.0, Position: [2]float64{0, 0}, Velocity: [2]float64{0, 0}, Radius: 12, Color: [3]int{255, 255, 0}},
			{Mass: 10.0, Position: [2]float64{10, 0}, Velocity: [2]float64{0, 10}, Radius: 5, Color: [3]int{0, 255, 0}},
			{Mass: 0.1, Position: [2]float64{20, 0}, Velocity: [2]float64{0, 7.07}, Radius: 3, Color: [3]int{255, 0, 255}},
		},
		Physics: Physics{G: 1.0, Dt: 0.0005, ScaleFactor: 1.0, StepsPerFrame: 20, Method: "verlet"},
	},
}

func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	return names
}
