package tornado

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/tornadoscript/tornado/internal/config"
	"github.com/tornadoscript/tornado/internal/core/system"
	"github.com/tornadoscript/tornado/internal/fx"
	"github.com/tornadoscript/tornado/internal/world"
)

const (
	cloudSpeedScale = 0.16
	minLayerMask    = 0.3
	twoPi           = float32(2 * math.Pi)
)

// Particle is one orbiting prop of a vortex carrying a looped smoke effect.
type Particle struct {
	LayerIndex int
	IsCloud    bool

	parent    *Vortex
	offset    world.Vec3
	basis     mgl32.Quat
	radius    float32
	angle     float32
	layerMask float32

	prop    world.Entity
	fx      *fx.Looped
	stopped bool
}

// newParticle creates the backing prop at the parent's position plus the
// slot's layer offset. The prop never collides and is never drawn; only its
// effect is visible.
func newParticle(v *Vortex, s slot) (*Particle, error) {
	prop, err := v.env.World.CreateProp(v.env.Presets.PropModel, v.position.Add(s.offset))
	if err != nil {
		return nil, err
	}
	// props that reject these still orbit; the effect covers them
	_ = prop.SetCollision(false)
	_ = prop.SetVisible(false)
	if err := v.env.World.AddShockingEvent(prop); err != nil {
		v.log.Debug("shocking event rejected", zap.Uint64("prop", uint64(prop.Handle())), zap.Error(err))
	}

	return &Particle{
		LayerIndex: s.layer,
		IsCloud:    s.cloud,
		parent:     v,
		offset:     s.offset,
		basis:      mgl32.QuatRotate(mgl32.DegToRad(s.yaw), world.WorldUp),
		radius:     s.radius,
		layerMask:  layerMask(s.layer, s.maxLayers),
		prop:       prop,
		fx:         fx.NewLooped(v.env.Effects, s.effect.Asset, s.effect.Name),
	}, nil
}

// layerMask slows the orbit of higher layers.
func layerMask(layer, maxLayers int) float32 {
	l := float32(layer)
	m := 1 - (1-l/float32(maxLayers*4))*0.1*l
	if m < minLayerMask {
		return minLayerMask
	}
	return m
}

func (p *Particle) Angle() float32     { return p.angle }
func (p *Particle) Radius() float32    { return p.radius }
func (p *Particle) Offset() world.Vec3 { return p.offset }
func (p *Particle) Prop() world.Entity { return p.prop }
func (p *Particle) Effect() *fx.Looped { return p.fx }
func (p *Particle) Stopped() bool      { return p.stopped }

// StartFx attaches the looped effect. The effect may still be loading when
// this returns.
func (p *Particle) StartFx(now int64, scale float32) {
	if err := p.fx.Start(now, p.prop, scale); err != nil {
		p.parent.log.Debug("particle effect not started",
			zap.Int("layer", p.LayerIndex), zap.Error(err))
	}
}

// Update moves the prop to its point on the orbit and advances the angle.
func (p *Particle) Update(f system.Frame) {
	if p.stopped {
		return
	}
	if !p.prop.Exists() {
		p.fx.Remove()
		p.stopped = true
		return
	}
	if p.fx.Poll(f.GameTime) && p.fx.State() == fx.StateFailed {
		p.parent.log.Debug("particle effect failed to load",
			zap.String("asset", p.fx.Asset), zap.Int("layer", p.LayerIndex))
	}

	center := p.parent.position.Add(p.offset)
	a := float64(p.angle)
	orbit := world.Vec3{p.radius * float32(math.Cos(a)), p.radius * float32(math.Sin(a)), 0}
	if err := p.prop.SetPosition(center.Add(p.basis.Rotate(orbit))); err != nil {
		p.fx.Remove()
		p.stopped = true
		return
	}

	params := p.parent.env.Params
	speed := params.Float(config.VarRotationSpeed)
	if p.IsCloud {
		speed *= cloudSpeedScale
	} else {
		speed *= p.layerMask
	}
	if params.Bool(config.VarReverseRotation) {
		speed = -speed
	}
	p.angle -= speed * f.Delta
	p.angle = float32(math.Mod(float64(p.angle), 2*math.Pi))
	if p.angle >= twoPi || p.angle <= -twoPi || math.IsNaN(float64(p.angle)) {
		// float32 rounding can land exactly on a full turn
		p.angle = 0
	}
}

// Dispose stops the effect and deletes the prop.
func (p *Particle) Dispose() {
	p.fx.Remove()
	if p.prop.Exists() {
		_ = p.prop.Delete()
	}
	p.stopped = true
}
