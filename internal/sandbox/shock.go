package sandbox

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/tornadoscript/tornado/internal/world"
)

const shockRadius = 60 // XY reach of a shocking event

// AddShockingEvent registers source as something nearby peds react to for as
// long as it exists.
func (w *World) AddShockingEvent(source world.Entity) error {
	h := source.Handle()
	if _, ok := w.Body(h); !ok {
		return world.ErrEntityGone
	}
	w.shocks[h] = struct{}{}
	return nil
}

// ShockingSources counts the registered sources still alive.
func (w *World) ShockingSources() int {
	n := 0
	for h := range w.shocks {
		if _, ok := w.Body(h); ok {
			n++
		}
	}
	return n
}

// stepShocks panics every standing ped in reach of a source and turns it away.
// Sources the host deleted are forgotten.
func (w *World) stepShocks() {
	for h := range w.shocks {
		src, ok := w.Body(h)
		if !ok {
			delete(w.shocks, h)
			continue
		}
		for _, c := range w.grid.Candidates(src.Pos, shockRadius) {
			if c == world.Handle(w.player) {
				continue
			}
			b, ok := w.Body(c)
			if !ok || b.Kind != world.KindPed || b.Ragdoll || world.Dist2D(b.Pos, src.Pos) > shockRadius {
				continue
			}
			b.Panicked = true
			away := b.Pos.Sub(src.Pos)
			if away[0] != 0 || away[1] != 0 {
				b.Heading = mgl32.RadToDeg(float32(math.Atan2(float64(away[0]), float64(away[1]))))
			}
		}
	}
}
