package tornado

import (
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/tornadoscript/tornado/internal/config"
	"github.com/tornadoscript/tornado/internal/world"
)

const (
	ForceScale = 3.0

	collectMargin    = 4
	maxPullHeight    = 300
	biasRange        = 3
	ragdollMin       = 800 // ms
	ragdollMax       = 1500
	playerVertical   = 1.62
	playerHorizontal = 1.2
	planeScale       = 6
	raycastInterval  = 1000 // ms
	upTargetHeight   = 1000
)

var errOutOfRange = errors.New("entity left the vortex")

// pulledEntity is an entity caught by the vortex. The bias offsets its pull
// target from the exact center so caught entities do not pile up.
type pulledEntity struct {
	ref      world.Entity
	xBias    float32
	yBias    float32
	isPlayer bool
}

type pullTuning struct {
	vertical   float32
	horizontal float32
	topSpeed   float32
	release    float32
}

// collectNearbyEntities tracks every entity within maxDist+4 in 2D and below
// the height limit. It runs at most once per scan interval.
func (v *Vortex) collectNearbyEntities(now int64, maxDist float32) {
	if now < v.nextScan {
		return
	}
	params := v.env.Params
	v.nextScan = now + int64(params.Int(config.VarEntityScanInterval))
	limit := params.Int(config.VarMaxEntityCount)

	var playerHandle world.Handle
	if player, ok := v.env.World.Player(); ok {
		playerHandle = player.Handle()
	}

	reach := maxDist + collectMargin
	for _, ent := range v.env.World.NearbyEntities(v.position, reach) {
		if len(v.pulled) >= limit {
			break
		}
		h := ent.Handle()
		if _, ok := v.pulled[h]; ok || !ent.Exists() {
			continue
		}
		if world.Dist2D(ent.Position(), v.position) > reach || ent.HeightAboveGround() > maxPullHeight {
			continue
		}
		if ent.Kind() == world.KindPed && !ent.IsRagdoll() {
			if err := ent.SetToRagdoll(ragdollMin, ragdollMax); err != nil {
				v.log.Debug("ragdoll rejected", zap.Uint64("entity", uint64(h)), zap.Error(err))
			}
		}
		v.pulled[h] = &pulledEntity{
			ref:      ent,
			xBias:    biasRange * v.env.Dice.Scalar(),
			yBias:    biasRange * v.env.Dice.Scalar(),
			isPlayer: h == playerHandle,
		}
	}
}

// updatePulledEntities applies the swirl forces to every tracked entity.
// An entity whose update fails is released; the others are unaffected.
func (v *Vortex) updatePulledEntities(now int64, maxDist float32) {
	if len(v.pulled) == 0 {
		return
	}
	params := v.env.Params
	t := pullTuning{
		vertical:   params.Float(config.VarVerticalPullForce),
		horizontal: params.Float(config.VarHorizontalPullForce),
		topSpeed:   params.Float(config.VarTopEntitySpeed),
		release:    maxDist - params.Float(config.VarReleaseMargin),
	}

	handles := make([]world.Handle, 0, len(v.pulled))
	for h := range v.pulled {
		handles = append(handles, h)
	}
	slices.Sort(handles)

	for _, h := range handles {
		if err := v.pull(now, v.pulled[h], t); err != nil {
			delete(v.pulled, h)
			if !errors.Is(err, errOutOfRange) && !errors.Is(err, world.ErrEntityGone) {
				v.log.Debug("entity released", zap.Uint64("entity", uint64(h)), zap.Error(err))
			}
		}
	}
}

func (v *Vortex) pull(now int64, pe *pulledEntity, t pullTuning) error {
	ent := pe.ref
	if !ent.Exists() {
		return world.ErrEntityGone
	}
	pos := ent.Position()
	dist := world.Dist2D(pos, v.position)
	if dist > t.release || ent.HeightAboveGround() > maxPullHeight {
		return errOutOfRange
	}

	target := world.Vec3{v.position[0] + pe.xBias, v.position[1] + pe.yBias, pos[2]}
	toward := target.Sub(pos)
	if toward.Len() < 1e-4 {
		return nil
	}
	dir := toward.Normalize()

	bias := v.env.Dice.Float()
	force := ForceScale * (bias + bias/max(dist, 1))
	vertical, horizontal := t.vertical, t.horizontal

	if pe.isPlayer {
		vertical *= playerVertical
		horizontal *= playerHorizontal
		if now-v.lastPlayerRaycast > raycastInterval {
			v.playerShielded = v.env.World.Raycast(pos, target, world.RaycastMap).DidHit
			v.lastPlayerRaycast = now
		}
		if v.playerShielded {
			return nil
		}
	} else if ent.IsPlane() {
		force *= planeScale
		vertical *= planeScale
	}

	torque := world.Vec3{v.env.Dice.Float(), 0, v.env.Dice.Scalar()}
	if err := ent.ApplyForce(dir.Mul(horizontal), torque); err != nil {
		return fmt.Errorf("pull: %w", err)
	}

	up := world.Vec3{v.position[0], v.position[1], v.position[2] + upTargetHeight}.Sub(pos).Normalize()
	if err := ent.ApplyForceToCenterOfMass(up.Mul(vertical)); err != nil {
		return fmt.Errorf("lift: %w", err)
	}

	tangent := dir.Cross(world.WorldUp).Normalize()
	if err := ent.ApplyForceToCenterOfMass(tangent.Mul(force * horizontal)); err != nil {
		return fmt.Errorf("spin: %w", err)
	}
	return ent.SetMaxSpeed(t.topSpeed)
}
