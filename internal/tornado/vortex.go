package tornado

import (
	"errors"
	"math"

	"go.uber.org/zap"

	"github.com/tornadoscript/tornado/internal/config"
	"github.com/tornadoscript/tornado/internal/core/system"
	"github.com/tornadoscript/tornado/internal/world"
)

var ErrVortexDisposed = errors.New("vortex disposed")

const (
	minLifeSpan = 160000 // ms
	maxLifeSpan = 600000

	moveStep          = 0.287
	moveLerpRate      = 20
	arriveDistance    = 15
	playerLeash       = 200
	destinationTries  = 50
	playerWander      = 130
	destinationWander = 100
	groundAnchor      = 10
	roadDistance      = 40
	roadHeight        = 10
)

// Vortex is one tornado: a moving center, its particles and the entities it
// is pulling.
type Vortex struct {
	env *Env
	log *zap.Logger

	position    world.Vec3
	destination world.Vec3

	createdTime int64
	lifeSpan    int64 // ms, -1 never expires
	despawn     bool

	particles []*Particle
	built     bool
	disposed  bool

	pulled            map[world.Handle]*pulledEntity
	nextScan          int64
	lastPlayerRaycast int64
	playerShielded    bool
}

// NewVortex places an unbuilt vortex at pos. now is the game time in ms.
func NewVortex(env *Env, pos world.Vec3, now int64) *Vortex {
	v := &Vortex{
		env:         env,
		log:         env.Log.Named("vortex"),
		position:    pos,
		createdTime: now,
		lifeSpan:    -1,
		pulled:      make(map[world.Handle]*pulledEntity),
	}
	if !env.Params.Bool(config.VarNeverDespawn) {
		v.lifeSpan = int64(env.Dice.Int(minLifeSpan, maxLifeSpan))
	}
	return v
}

func (v *Vortex) Position() world.Vec3 { return v.position }

// SetPosition teleports the vortex; particles follow on their next update.
func (v *Vortex) SetPosition(pos world.Vec3) { v.position = pos }

func (v *Vortex) Destination() world.Vec3 { return v.destination }
func (v *Vortex) CreatedTime() int64      { return v.createdTime }
func (v *Vortex) LifeSpan() int64         { return v.lifeSpan }
func (v *Vortex) DespawnRequested() bool  { return v.despawn }
func (v *Vortex) RequestDespawn()         { v.despawn = true }
func (v *Vortex) Disposed() bool          { return v.disposed }
func (v *Vortex) ParticleCount() int      { return len(v.particles) }
func (v *Vortex) Particles() []*Particle  { return v.particles }
func (v *Vortex) PulledCount() int        { return len(v.pulled) }

// Pulling reports whether the entity h is currently tracked.
func (v *Vortex) Pulling(h world.Handle) bool {
	_, ok := v.pulled[h]
	return ok
}

// ChangeDestination picks a new travel target, preferring points near a road.
// With trackToPlayer the search is centered on the player, otherwise on the
// current destination. Candidates without ground are skipped; the last
// grounded one is kept when none is near a road. When no candidate had ground
// the destination is unchanged (or the vortex holds its position if it had none).
func (v *Vortex) ChangeDestination(trackToPlayer bool) {
	w := v.env.World
	base, wander := v.destination, float32(destinationWander)
	if world.IsZero(base) {
		base = v.position
	}
	if trackToPlayer {
		if player, ok := w.Player(); ok {
			base, wander = player.Position(), playerWander
		}
	}

	var lastValid world.Vec3
	found := false
	for i := 0; i < destinationTries; i++ {
		dest := Around(v.env.Dice, base, wander)
		ground, ok := w.GroundHeight(dest)
		if !ok {
			continue
		}
		dest[2] = ground
		road, ok := w.NearestRoadPoint(dest)
		nearRoad := ok && road.Sub(dest).Len() < roadDistance &&
			float32(math.Abs(float64(road[2]-dest[2]))) < roadHeight
		dest[2] = ground - groundAnchor
		lastValid, found = dest, true
		if nearRoad {
			break
		}
	}
	switch {
	case found:
		v.destination = lastValid
	case world.IsZero(v.destination):
		v.destination = v.position
	}
}

// Update advances the vortex by one frame.
func (v *Vortex) Update(f system.Frame) {
	if v.disposed {
		return
	}
	params := v.env.Params

	if v.lifeSpan >= 0 && f.GameTime-v.createdTime > v.lifeSpan {
		v.despawn = true
	}

	if params.Bool(config.VarMovementEnabled) {
		v.move(f)
	}

	maxDist := params.Float(config.VarMaxEntityDist)
	v.collectNearbyEntities(f.GameTime, maxDist)
	v.updatePulledEntities(f.GameTime, maxDist)

	for _, p := range v.particles {
		p.Update(f)
	}
}

func (v *Vortex) move(f system.Frame) {
	if world.IsZero(v.destination) || v.position.Sub(v.destination).Len() < arriveDistance {
		v.ChangeDestination(false)
	}
	if player, ok := v.env.World.Player(); ok && v.position.Sub(player.Position()).Len() > playerLeash {
		v.ChangeDestination(true)
	}
	step := world.MoveTowards(v.position, v.destination, v.env.Params.Float(config.VarMoveSpeedScale)*moveStep)
	v.position = world.Lerp(v.position, step, f.Delta*moveLerpRate)
}

// Dispose deletes every particle and releases the pulled entities. Further
// updates are no-ops.
func (v *Vortex) Dispose() {
	if v.disposed {
		return
	}
	for _, p := range v.particles {
		p.Dispose()
	}
	v.particles = nil
	clear(v.pulled)
	v.disposed = true
}
