package sandbox

import (
	"github.com/tornadoscript/tornado/internal/core/ecs"
	"github.com/tornadoscript/tornado/internal/world"
)

const (
	gravity        = 9.81
	forceGain      = 800 // acceleration per unit force for a 1 kg body
	groundFriction = 0.85
)

// Step advances the simulation by dt seconds: accumulated forces become
// velocity, velocity is clamped to the entity's max speed, bodies fall and
// land on the ground, ragdolls time out, assets stream in, peds react to
// shocking events and the death fade progresses. Forces are cleared afterwards.
func (w *World) Step(dt float32) {
	if dt <= 0 {
		return
	}
	w.bodies.Each(func(id ecs.EntityID, b *Body) {
		if b.Deleted || b.Static {
			b.force = world.Vec3{}
			return
		}
		w.integrate(id, b, dt)
	})
	w.stepAssets()
	w.stepShocks()
	if w.playerDead && w.fade < 1 {
		w.fade += dt / fadeDuration
	}
}

func (w *World) integrate(id ecs.EntityID, b *Body, dt float32) {
	mass := b.Mass
	if mass <= 0 {
		mass = 1
	}
	accel := b.force.Mul(forceGain / mass)
	accel[2] -= gravity
	b.Vel = b.Vel.Add(accel.Mul(dt))
	b.force = world.Vec3{}

	if b.MaxSpeed > 0 {
		if s := b.Vel.Len(); s > b.MaxSpeed {
			b.Vel = b.Vel.Mul(b.MaxSpeed / s)
		}
	}

	old := b.Pos
	b.Pos = b.Pos.Add(b.Vel.Mul(dt))
	ground := w.groundOrBase(b.Pos)
	if b.Pos[2] < ground {
		b.Pos[2] = ground
		if b.Vel[2] < 0 {
			b.Vel[2] = 0
		}
		b.Vel[0] *= groundFriction
		b.Vel[1] *= groundFriction
	}
	w.grid.Move(world.Handle(id), old, b.Pos)

	if b.Ragdoll {
		b.ragdollLeft -= dt
		if b.ragdollLeft <= 0 {
			b.Ragdoll = false
		}
	}
}
