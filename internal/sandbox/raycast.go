package sandbox

import (
	"math"

	"github.com/tornadoscript/tornado/internal/core/ecs"
	"github.com/tornadoscript/tornado/internal/world"
)

const entityHitRadius = 1.0

// Raycast tests the segment from→to against scene obstacles (RaycastMap) and
// against entity spheres of the kinds selected by flags. The nearest hit wins.
func (w *World) Raycast(from, to world.Vec3, flags world.RaycastFlags) world.RaycastResult {
	dir := to.Sub(from)
	best := float32(math.MaxFloat32)
	var res world.RaycastResult

	if flags&world.RaycastMap != 0 {
		for _, box := range w.scene.Obstacles {
			if t, ok := segmentBox(from, dir, world.Vec3(box.Min), world.Vec3(box.Max)); ok && t < best {
				best = t
				res = world.RaycastResult{DidHit: true, HitPosition: from.Add(dir.Mul(t))}
			}
		}
	}

	if flags&(world.RaycastPeds|world.RaycastVehicles|world.RaycastObjects) != 0 {
		w.bodies.Each(func(id ecs.EntityID, b *Body) {
			if b.Deleted || !b.Collision || !kindSelected(b.Kind, flags) {
				return
			}
			if t, ok := segmentSphere(from, dir, b.Pos, entityHitRadius); ok && t < best {
				best = t
				res = world.RaycastResult{DidHit: true, HitPosition: from.Add(dir.Mul(t)), HitEntity: world.Handle(id)}
			}
		})
	}
	return res
}

func kindSelected(k world.EntityKind, flags world.RaycastFlags) bool {
	switch k {
	case world.KindPed:
		return flags&world.RaycastPeds != 0
	case world.KindVehicle:
		return flags&world.RaycastVehicles != 0
	}
	return flags&world.RaycastObjects != 0
}

// segmentBox is the slab test for p = o + t·d, t ∈ [0, 1].
func segmentBox(o, d, lo, hi world.Vec3) (float32, bool) {
	tmin, tmax := float32(0), float32(1)
	for i := 0; i < 3; i++ {
		if d[i] == 0 {
			if o[i] < lo[i] || o[i] > hi[i] {
				return 0, false
			}
			continue
		}
		t1 := (lo[i] - o[i]) / d[i]
		t2 := (hi[i] - o[i]) / d[i]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tmin {
			tmin = t1
		}
		if t2 < tmax {
			tmax = t2
		}
		if tmin > tmax {
			return 0, false
		}
	}
	return tmin, true
}

func segmentSphere(o, d, c world.Vec3, r float32) (float32, bool) {
	m := o.Sub(c)
	a := d.Dot(d)
	if a == 0 {
		return 0, m.Dot(m) <= r*r
	}
	b := m.Dot(d)
	cc := m.Dot(m) - r*r
	disc := b*b - a*cc
	if disc < 0 {
		return 0, false
	}
	t := (-b - float32(math.Sqrt(float64(disc)))) / a
	if t < 0 {
		if cc <= 0 {
			return 0, true // starts inside
		}
		return 0, false
	}
	if t > 1 {
		return 0, false
	}
	return t, true
}
