package tornado

import (
	"fmt"

	"github.com/tornadoscript/tornado/internal/config"
	"github.com/tornadoscript/tornado/internal/data"
	"github.com/tornadoscript/tornado/internal/world"
)

// slot is one particle of the planned layout.
type slot struct {
	layer     int
	maxLayers int
	yaw       float32 // degrees
	offset    world.Vec3
	radius    float32
	scale     float32
	cloud     bool
	funnel    bool
	effect    data.EffectPreset
}

// Layout holds the parameters that fully determine a vortex's particles.
type Layout struct {
	MaxLayers  int
	PerLayer   int
	Separation float32
	Radius     float32
	CloudTop   bool
	Effect     data.EffectPreset
}

// layoutFromParams reads the current layout tunables.
func (v *Vortex) layoutFromParams() Layout {
	p := v.env.Params
	return Layout{
		MaxLayers:  p.Int(config.VarMaxParticleLayers),
		PerLayer:   p.Int(config.VarParticleCount),
		Separation: p.Float(config.VarLayerSeparation),
		Radius:     p.Float(config.VarRadius),
		CloudTop:   p.Bool(config.VarCloudTop),
		Effect: data.EffectPreset{
			Asset: p.String(config.VarParticleAsset),
			Name:  p.String(config.VarParticleName),
		},
	}
}

// plan lays out every particle, bottom layer first. Within a layer funnel
// particles precede the main particle at the same angle.
func plan(l Layout, presets *data.ParticlePresets) []slot {
	layers := l.MaxLayers
	cloud := presets.Cloud
	if l.CloudTop && layers > cloud.LayerCap {
		layers = cloud.LayerCap
	}
	if layers <= 0 || l.PerLayer <= 0 {
		return nil
	}

	var out []slot
	radius, size := l.Radius, presets.BaseSize
	for layer := 0; layer < layers; layer++ {
		count := l.PerLayer
		if l.CloudTop && layer > layers-1-cloud.DenseLayers {
			count += cloud.ExtraParticles
		}
		isCloud := l.CloudTop && layer > layers-1-cloud.TopLayers
		z := l.Separation * float32(layer)
		if isCloud {
			z += cloud.Lift
		}

		step := 360 / float32(count)
		for i := 0; i < count; i++ {
			yaw := step * float32(i)
			if layer < presets.FunnelLayers {
				out = append(out, slot{
					layer:     layer,
					maxLayers: layers,
					yaw:       yaw,
					offset:    world.Vec3{0, 0, l.Separation * float32(layer)},
					radius:    radius,
					scale:     presets.Funnel.Scale,
					funnel:    true,
					effect:    presets.Funnel,
				})
			}
			// cloud bonuses and growth accumulate per particle
			if isCloud {
				size += cloud.SizeBonus
				radius += cloud.RadiusBonus
			}
			out = append(out, slot{
				layer:     layer,
				maxLayers: layers,
				yaw:       yaw,
				offset:    world.Vec3{0, 0, z},
				radius:    radius,
				scale:     size,
				cloud:     isCloud,
				effect:    l.Effect,
			})
			radius += presets.RadiusGrowth * float32(layer)
			size += presets.SizeGrowth * float32(layer)
		}
	}
	return out
}

// ParticleCount is the number of particles Build creates for l.
func ParticleCount(l Layout, presets *data.ParticlePresets) int {
	return len(plan(l, presets))
}

// Build creates every particle of the vortex and starts their effects. A
// failed prop aborts the build; the caller disposes the partial vortex.
func (v *Vortex) Build() error {
	if v.disposed {
		return ErrVortexDisposed
	}
	if v.built {
		return nil
	}
	slots := plan(v.layoutFromParams(), v.env.Presets)
	v.particles = make([]*Particle, 0, len(slots))
	for _, s := range slots {
		p, err := newParticle(v, s)
		if err != nil {
			return fmt.Errorf("build layer %d: %w", s.layer, err)
		}
		v.particles = append(v.particles, p)
		p.StartFx(v.createdTime, s.scale)
	}
	v.built = true
	return nil
}
