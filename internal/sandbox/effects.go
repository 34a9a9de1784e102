package sandbox

import (
	"errors"

	"github.com/tornadoscript/tornado/internal/core/ecs"
	"github.com/tornadoscript/tornado/internal/world"
)

var (
	ErrAssetNotLoaded = errors.New("effect asset not loaded")
	errNonFiniteForce = errors.New("non-finite force")
)

type assetState struct {
	remaining int // frames until resident
}

type effect struct {
	asset  string
	name   string
	target ecs.EntityID
	scale  float32
}

// RequestAsset starts streaming an asset. Latency comes from the scene's
// asset_latency table; unknown assets are resident immediately.
func (w *World) RequestAsset(asset string) {
	if _, ok := w.assets[asset]; ok {
		return
	}
	w.assets[asset] = &assetState{remaining: w.scene.AssetLatency[asset]}
}

func (w *World) AssetLoaded(asset string) bool {
	a, ok := w.assets[asset]
	return ok && a.remaining <= 0
}

func (w *World) StartLooped(asset, name string, target world.Entity, scale float32) (world.EffectHandle, error) {
	if !w.AssetLoaded(asset) {
		return 0, ErrAssetNotLoaded
	}
	if target == nil || !target.Exists() {
		return 0, world.ErrEntityGone
	}
	w.nextEffect++
	w.effects[w.nextEffect] = &effect{
		asset:  asset,
		name:   name,
		target: ecs.EntityID(target.Handle()),
		scale:  scale,
	}
	return w.nextEffect, nil
}

func (w *World) StopLooped(h world.EffectHandle) {
	delete(w.effects, h)
}

// RemoveInRange drops every effect whose target is gone or within radius of center.
func (w *World) RemoveInRange(center world.Vec3, radius float32) {
	for h, fx := range w.effects {
		b, ok := w.Body(world.Handle(fx.target))
		if !ok || b.Pos.Sub(center).Len() <= radius {
			delete(w.effects, h)
		}
	}
}

// ActiveEffects returns the number of running looped effects.
func (w *World) ActiveEffects() int { return len(w.effects) }

// EffectScale returns the scale a running effect was started with.
func (w *World) EffectScale(h world.EffectHandle) (float32, bool) {
	fx, ok := w.effects[h]
	if !ok {
		return 0, false
	}
	return fx.scale, true
}

func (w *World) stepAssets() {
	for _, a := range w.assets {
		if a.remaining > 0 {
			a.remaining--
		}
	}
}
