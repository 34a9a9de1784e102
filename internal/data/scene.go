package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Rect is an axis-aligned XY rectangle.
type Rect struct {
	Min [2]float32 `yaml:"min"`
	Max [2]float32 `yaml:"max"`
}

type Plateau struct {
	Rect   `yaml:",inline"`
	Height float32 `yaml:"height"`
}

type Road struct {
	Name   string       `yaml:"name"`
	Points [][3]float32 `yaml:"points"`
}

type Box struct {
	Min [3]float32 `yaml:"min"`
	Max [3]float32 `yaml:"max"`
}

type SceneEntity struct {
	Kind     string     `yaml:"kind"` // ped, vehicle, object
	Model    string     `yaml:"model"`
	Position [3]float32 `yaml:"position"`
	Mass     float32    `yaml:"mass"`
	Plane    bool       `yaml:"plane"`
	Count    int        `yaml:"count"`  // >1 scatters copies around Position
	Spread   float32    `yaml:"spread"` // scatter radius
}

type ScenePlayer struct {
	Position [3]float32 `yaml:"position"`
	Heading  float32    `yaml:"heading"` // degrees, 0 = +Y
}

// Scene describes the headless world the sandbox host simulates.
type Scene struct {
	Name         string         `yaml:"name"`
	Bounds       Rect           `yaml:"bounds"`
	Ground       float32        `yaml:"ground"`
	Plateaus     []Plateau      `yaml:"plateaus"`
	Roads        []Road         `yaml:"roads"`
	Obstacles    []Box          `yaml:"obstacles"`
	Player       ScenePlayer    `yaml:"player"`
	Weather      string         `yaml:"weather"`
	Entities     []SceneEntity  `yaml:"entities"`
	AssetLatency map[string]int `yaml:"asset_latency"` // frames until an asset is resident
}

// LoadScene loads a scene YAML file.
func LoadScene(path string) (*Scene, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene: %w", err)
	}
	return ParseScene(raw)
}

// ParseScene decodes and validates scene YAML.
func ParseScene(raw []byte) (*Scene, error) {
	var s Scene
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("parse scene: %w", err)
	}
	if s.Bounds.Max[0] <= s.Bounds.Min[0] || s.Bounds.Max[1] <= s.Bounds.Min[1] {
		return nil, fmt.Errorf("scene %q: empty bounds", s.Name)
	}
	for i, r := range s.Roads {
		if len(r.Points) < 2 {
			return nil, fmt.Errorf("scene %q: road %d needs at least two points", s.Name, i)
		}
	}
	for i, e := range s.Entities {
		switch e.Kind {
		case "ped", "vehicle", "object":
		default:
			return nil, fmt.Errorf("scene %q: entity %d has unknown kind %q", s.Name, i, e.Kind)
		}
	}
	return &s, nil
}

// EntityCount returns how many entities the scene spawns.
func (s *Scene) EntityCount() int {
	n := 0
	for _, e := range s.Entities {
		if e.Count > 1 {
			n += e.Count
		} else {
			n++
		}
	}
	return n
}
