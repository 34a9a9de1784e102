package sandbox

import (
	"math"

	"github.com/tornadoscript/tornado/internal/core/ecs"
	"github.com/tornadoscript/tornado/internal/world"
)

// entity is the world.Entity view of a sandbox body. It resolves the body on
// every call so a handle kept across frames notices host-side deletion.
type entity struct {
	w  *World
	id ecs.EntityID
}

func (e *entity) body() (*Body, error) {
	b, ok := e.w.Body(world.Handle(e.id))
	if !ok {
		return nil, world.ErrEntityGone
	}
	return b, nil
}

func (e *entity) Handle() world.Handle { return world.Handle(e.id) }

func (e *entity) Exists() bool {
	_, err := e.body()
	return err == nil
}

func (e *entity) Position() world.Vec3 {
	b, err := e.body()
	if err != nil {
		return world.Vec3{}
	}
	return b.Pos
}

func (e *entity) Forward() world.Vec3 {
	b, err := e.body()
	if err != nil {
		return world.Vec3{0, 1, 0}
	}
	rad := float64(b.Heading) * math.Pi / 180
	return world.Vec3{float32(math.Sin(rad)), float32(math.Cos(rad)), 0}
}

func (e *entity) HeightAboveGround() float32 {
	b, err := e.body()
	if err != nil {
		return 0
	}
	return b.Pos[2] - e.w.groundOrBase(b.Pos)
}

func (e *entity) Kind() world.EntityKind {
	b, err := e.body()
	if err != nil {
		return world.KindObject
	}
	return b.Kind
}

func (e *entity) IsPlane() bool {
	b, err := e.body()
	return err == nil && b.Plane
}

func (e *entity) IsRagdoll() bool {
	b, err := e.body()
	return err == nil && b.Ragdoll
}

// SetToRagdoll only affects peds; the ragdoll lasts maxMs.
func (e *entity) SetToRagdoll(minMs, maxMs int) error {
	b, err := e.body()
	if err != nil {
		return err
	}
	if b.Kind != world.KindPed {
		return nil
	}
	if maxMs < minMs {
		maxMs = minMs
	}
	b.Ragdoll = true
	b.ragdollLeft = float32(maxMs) / 1000
	return nil
}

// ApplyForce accumulates a directional force. The sandbox has no rotational
// state, so torque is accepted and dropped.
func (e *entity) ApplyForce(dir, _ world.Vec3) error {
	return e.push(dir)
}

func (e *entity) ApplyForceToCenterOfMass(dir world.Vec3) error {
	return e.push(dir)
}

func (e *entity) push(f world.Vec3) error {
	b, err := e.body()
	if err != nil {
		return err
	}
	if !world.IsFinite(f) {
		return errNonFiniteForce
	}
	b.force = b.force.Add(f)
	b.Forces++
	return nil
}

func (e *entity) SetMaxSpeed(speed float32) error {
	b, err := e.body()
	if err != nil {
		return err
	}
	b.MaxSpeed = speed
	return nil
}

func (e *entity) SetPosition(pos world.Vec3) error {
	if _, err := e.body(); err != nil {
		return err
	}
	e.w.Move(world.Handle(e.id), pos)
	return nil
}

func (e *entity) SetCollision(enabled bool) error {
	b, err := e.body()
	if err != nil {
		return err
	}
	b.Collision = enabled
	return nil
}

func (e *entity) SetVisible(visible bool) error {
	b, err := e.body()
	if err != nil {
		return err
	}
	b.Visible = visible
	return nil
}

// Delete hides the entity immediately; storage is reclaimed by Cleanup.
func (e *entity) Delete() error {
	b, err := e.body()
	if err != nil {
		return err
	}
	b.Deleted = true
	e.w.grid.Remove(world.Handle(e.id), b.Pos)
	e.w.ecs.MarkForDestruction(e.id)
	return nil
}
