package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// EffectPreset names a looped effect and the scale it starts at.
type EffectPreset struct {
	Asset string  `yaml:"asset"`
	Name  string  `yaml:"name"`
	Scale float32 `yaml:"scale"`
}

// CloudPreset shapes the enlarged cap of the funnel.
type CloudPreset struct {
	LayerCap       int     `yaml:"layer_cap"`
	TopLayers      int     `yaml:"top_layers"`
	DenseLayers    int     `yaml:"dense_layers"`
	ExtraParticles int     `yaml:"extra_particles"`
	Lift           float32 `yaml:"lift"`
	SizeBonus      float32 `yaml:"size_bonus"`
	RadiusBonus    float32 `yaml:"radius_bonus"`
}

// ParticlePresets is the layout table used by Vortex.Build. The main effect
// asset and name come from the parameter store so they can be configured.
type ParticlePresets struct {
	PropModel    string       `yaml:"prop_model"`
	BaseSize     float32      `yaml:"base_size"`
	RadiusGrowth float32      `yaml:"radius_growth"`
	SizeGrowth   float32      `yaml:"size_growth"`
	Funnel       EffectPreset `yaml:"funnel"`
	FunnelLayers int          `yaml:"funnel_layers"`
	Cloud        CloudPreset  `yaml:"cloud"`
}

// DefaultParticlePresets mirrors data/yaml/particles.yaml.
func DefaultParticlePresets() *ParticlePresets {
	return &ParticlePresets{
		PropModel:    "prop_beach_volball02",
		BaseSize:     3.0685,
		RadiusGrowth: 0.08 * 0.72,
		SizeGrowth:   0.01 * 0.12,
		Funnel: EffectPreset{
			Asset: "scr_agencyheistb",
			Name:  "scr_env_agency3b_smoke",
			Scale: 4.7,
		},
		FunnelLayers: 2,
		Cloud: CloudPreset{
			LayerCap:       12,
			TopLayers:      2,
			DenseLayers:    3,
			ExtraParticles: 5,
			Lift:           12,
			SizeBonus:      6,
			RadiusBonus:    7,
		},
	}
}

// LoadParticlePresets loads particles.yaml over the defaults.
func LoadParticlePresets(path string) (*ParticlePresets, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read particle presets: %w", err)
	}
	p := DefaultParticlePresets()
	if err := yaml.Unmarshal(raw, p); err != nil {
		return nil, fmt.Errorf("parse particle presets: %w", err)
	}
	if p.PropModel == "" {
		return nil, fmt.Errorf("particle presets: prop_model is empty")
	}
	return p, nil
}
