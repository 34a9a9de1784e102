package world

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

var WorldUp = Vec3{0, 0, 1}

// Dist2D is the distance between a and b ignoring Z.
func Dist2D(a, b Vec3) float32 {
	return mgl32.Vec2{a[0] - b[0], a[1] - b[1]}.Len()
}

// MoveTowards steps from cur toward target by at most maxDelta.
func MoveTowards(cur, target Vec3, maxDelta float32) Vec3 {
	d := target.Sub(cur)
	dist := d.Len()
	if dist <= maxDelta || dist == 0 {
		return target
	}
	return cur.Add(d.Mul(maxDelta / dist))
}

// Lerp interpolates from a to b; t is clamped to [0, 1].
func Lerp(a, b Vec3, t float32) Vec3 {
	t = mgl32.Clamp(t, 0, 1)
	return a.Add(b.Sub(a).Mul(t))
}

// IsFinite reports whether every component is neither NaN nor infinite.
func IsFinite(v Vec3) bool {
	for _, c := range v {
		f := float64(c)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

// IsZero reports whether v is the zero vector.
func IsZero(v Vec3) bool {
	return v == Vec3{}
}
