// Package presets holds reference twins for the supported application tags.
package presets

import (
	"sort"
	"strings"

	"github.com/MikeSquared-Agency/TwinScore/internal/scoring"
)

// Component is a preset component description.
type Component struct {
	Name        string  `json:"name"`
	Type        string  `json:"type"`
	Consumption float64 `json:"consumption"`
	Lifespan    float64 `json:"lifespan"`
}

// Preset is a named reference twin.
type Preset struct {
	Application string      `json:"application"`
	Description string      `json:"description"`
	Components  []Component `json:"components"`
}

var presets = map[string]Preset{
	"satellite": {
		Application: "satellite",
		Description: "Earth observation satellite sensor suite",
		Components: []Component{
			{Name: "Optical Sensor", Type: "sensor", Consumption: 1.5, Lifespan: 10},
			{Name: "Radar Sensor", Type: "sensor", Consumption: 2.0, Lifespan: 8},
			{Name: "Weather Station", Type: "sensor", Consumption: 3.0, Lifespan: 7},
		},
	},
	"rehabilitation": {
		Application: "rehabilitation",
		Description: "Wearable motion and vitals tracking for physical rehabilitation",
		Components: []Component{
			{Name: "Accelerometer", Type: "sensor", Consumption: 0.5, Lifespan: 5},
			{Name: "Gyroscope", Type: "sensor", Consumption: 0.5, Lifespan: 5},
			{Name: "Heart Rate Monitor", Type: "sensor", Consumption: 0.3, Lifespan: 4},
		},
	},
}

// List returns all presets ordered by application.
func List() []Preset {
	out := make([]Preset, 0, len(presets))
	for _, p := range presets {
		out = append(out, clone(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Application < out[j].Application })
	return out
}

// Get returns the preset for an application tag, case-insensitively.
func Get(application string) (Preset, bool) {
	p, ok := presets[strings.ToLower(strings.TrimSpace(application))]
	if !ok {
		return Preset{}, false
	}
	return clone(p), true
}

// Request builds an evaluation payload for the preset.
func (p Preset) Request() scoring.RawRequest {
	raw := scoring.RawRequest{
		Application: p.Application,
		Components:  make([]scoring.RawComponent, 0, len(p.Components)),
	}
	for _, c := range p.Components {
		raw.Components = append(raw.Components, scoring.RawComponent{
			Name:        c.Name,
			Type:        c.Type,
			Consumption: scoring.Q(c.Consumption),
			Lifespan:    scoring.Q(c.Lifespan),
		})
	}
	return raw
}

func clone(p Preset) Preset {
	p.Components = append([]Component(nil), p.Components...)
	return p
}
