package tornado

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tornadoscript/tornado/internal/config"
	"github.com/tornadoscript/tornado/internal/core/event"
	"github.com/tornadoscript/tornado/internal/core/system"
	"github.com/tornadoscript/tornado/internal/data"
	"github.com/tornadoscript/tornado/internal/fx"
	"github.com/tornadoscript/tornado/internal/param"
	"github.com/tornadoscript/tornado/internal/sandbox"
	"github.com/tornadoscript/tornado/internal/world"
)

func frame(ms int64) system.Frame {
	return system.Frame{GameTime: ms, Delta: 0.016}
}

// stillVortex is an unbuilt vortex that does not move.
func stillVortex(t *testing.T, env *Env, pos world.Vec3) *Vortex {
	t.Helper()
	require.NoError(t, env.Params.SetBool(config.VarMovementEnabled, false))
	return NewVortex(env, pos, 0)
}

func TestNewVortexLifeSpan(t *testing.T) {
	env, _, _ := newTestEnv(t)
	assert.Equal(t, int64(minLifeSpan), NewVortex(env, world.Vec3{}, 0).LifeSpan())

	require.NoError(t, env.Params.SetBool(config.VarNeverDespawn, true))
	assert.Equal(t, int64(-1), NewVortex(env, world.Vec3{}, 0).LifeSpan())
}

func TestVortexRequestsDespawnAfterLifeSpan(t *testing.T) {
	env, _, _ := newTestEnv(t)
	v := stillVortex(t, env, world.Vec3{500, 500, -10})

	v.Update(frame(minLifeSpan))
	assert.False(t, v.DespawnRequested())
	v.Update(frame(minLifeSpan + 1))
	assert.True(t, v.DespawnRequested())
}

func TestChangeDestinationPrefersRoads(t *testing.T) {
	env, _, _ := newTestEnv(t)
	v := NewVortex(env, world.Vec3{0, 30, -10}, 0)

	v.ChangeDestination(false)

	d := v.Destination()
	assert.InDelta(t, -50, d[0], 1e-3)
	assert.InDelta(t, 30, d[1], 1e-3)
	assert.Equal(t, float32(-10), d[2])
}

func TestChangeDestinationTracksPlayer(t *testing.T) {
	env, _, _ := newTestEnv(t)
	v := NewVortex(env, world.Vec3{600, 600, -10}, 0)

	v.ChangeDestination(true)

	d := v.Destination()
	assert.InDelta(t, -65, d[0], 1e-3)
	assert.InDelta(t, 0, d[1], 1e-3)
	assert.Equal(t, float32(-10), d[2])
}

func TestChangeDestinationKeepsLastCandidateOffRoad(t *testing.T) {
	env, _, _ := newTestEnv(t)
	v := NewVortex(env, world.Vec3{0, 300, -10}, 0)

	v.ChangeDestination(false)

	d := v.Destination()
	assert.InDelta(t, -50, d[0], 1e-3)
	assert.InDelta(t, 300, d[1], 1e-3)
	assert.Equal(t, float32(-10), d[2])
}

// patchyGround answers ground queries only a fixed number of times.
type patchyGround struct {
	*sandbox.World
	answers int
}

func (g *patchyGround) GroundHeight(pos world.Vec3) (float32, bool) {
	if g.answers <= 0 {
		return 0, false
	}
	g.answers--
	return g.World.GroundHeight(pos)
}

func TestChangeDestinationKeepsLastGroundedCandidate(t *testing.T) {
	env, w, _ := newTestEnv(t)
	env.World = &patchyGround{World: w, answers: 1}
	v := NewVortex(env, world.Vec3{0, 300, 500}, 0)

	v.ChangeDestination(false)

	d := v.Destination()
	assert.InDelta(t, -50, d[0], 1e-3)
	assert.InDelta(t, 300, d[1], 1e-3)
	assert.Equal(t, float32(-10), d[2])
}

func TestChangeDestinationWithoutGround(t *testing.T) {
	env, w, _ := newTestEnv(t)
	ground := &patchyGround{World: w}
	env.World = ground
	v := NewVortex(env, world.Vec3{0, 300, 500}, 0)

	v.ChangeDestination(false)
	assert.Equal(t, world.Vec3{0, 300, 500}, v.Destination())

	ground.answers = 1
	v.ChangeDestination(false)
	grounded := v.Destination()
	require.Equal(t, float32(-10), grounded[2])

	v.ChangeDestination(true)
	assert.Equal(t, grounded, v.Destination())
}

func TestVortexMovesTowardDestination(t *testing.T) {
	env, _, _ := newTestEnv(t)
	v := NewVortex(env, world.Vec3{0, 30, -10}, 0)

	v.Update(frame(0))

	pos := v.Position()
	assert.InDelta(t, -moveStep*0.016*moveLerpRate, pos[0], 1e-4)
	assert.InDelta(t, 30, pos[1], 1e-4)
	assert.Less(t, pos.Sub(v.Destination()).Len(), float32(50))
}

func TestVortexHoldsStillWhenMovementDisabled(t *testing.T) {
	env, _, _ := newTestEnv(t)
	v := stillVortex(t, env, world.Vec3{0, 30, -10})

	for i := int64(0); i < 10; i++ {
		v.Update(frame(i * 16))
	}
	assert.Equal(t, world.Vec3{0, 30, -10}, v.Position())
}

func TestParticleOrbitsAroundCenter(t *testing.T) {
	env, _, _ := newTestEnv(t)
	smallLayout(t, env, 1, 4, false)
	v := stillVortex(t, env, world.Vec3{100, 100, -10})
	require.NoError(t, v.Build())

	byYaw := map[int]*Particle{}
	for i, p := range v.Particles() {
		if i%2 == 1 { // main particle follows its funnel twin
			byYaw[i/2*90] = p
		}
	}
	require.NoError(t, env.Params.SetFloat(config.VarRotationSpeed, 0))
	v.Update(frame(0))

	assert.InDelta(t, 109.4, byYaw[0].Prop().Position()[0], 1e-3)
	assert.InDelta(t, 100, byYaw[0].Prop().Position()[1], 1e-3)
	assert.InDelta(t, 100, byYaw[90].Prop().Position()[0], 1e-3)
	assert.InDelta(t, 109.4, byYaw[90].Prop().Position()[1], 1e-3)
	assert.InDelta(t, -10, byYaw[90].Prop().Position()[2], 1e-3)
}

func TestParticleAngleDirection(t *testing.T) {
	env, _, _ := newTestEnv(t)
	smallLayout(t, env, 1, 1, false)
	v := stillVortex(t, env, world.Vec3{100, 100, -10})
	require.NoError(t, v.Build())
	p := v.Particles()[1]

	p.Update(system.Frame{Delta: 0.1})
	assert.InDelta(t, -0.24, p.Angle(), 1e-5)

	require.NoError(t, env.Params.SetBool(config.VarReverseRotation, true))
	p.Update(system.Frame{Delta: 0.1})
	assert.InDelta(t, 0, p.Angle(), 1e-5)
}

func TestParticleAngleStaysWrapped(t *testing.T) {
	env, _, _ := newTestEnv(t)
	smallLayout(t, env, 4, 2, true)
	v := stillVortex(t, env, world.Vec3{100, 100, -10})
	require.NoError(t, v.Build())

	for i := 0; i < 5000; i++ {
		for _, p := range v.Particles() {
			p.Update(system.Frame{GameTime: int64(i), Delta: 0.37})
			a := float64(p.Angle())
			require.True(t, a > -2*math.Pi && a < 2*math.Pi, "angle %v escaped", a)
		}
	}
}

func TestParticleStopsWhenPropVanishes(t *testing.T) {
	env, w, _ := newTestEnv(t)
	smallLayout(t, env, 1, 1, false)
	v := stillVortex(t, env, world.Vec3{100, 100, -10})
	require.NoError(t, v.Build())
	v.Update(frame(16))

	p := v.Particles()[1]
	require.Equal(t, fx.StateRunning, p.Effect().State())
	w.Remove(p.Prop().Handle())

	v.Update(frame(32))
	assert.True(t, p.Stopped())
	assert.Equal(t, fx.StateIdle, p.Effect().State())
	assert.Equal(t, 1, w.ActiveEffects())
}

func TestParticleEffectWaitsForAsset(t *testing.T) {
	params := param.NewStore()
	config.RegisterParams(config.Defaults(), params)
	scene := sandbox.FlatScene(500, 0)
	scene.AssetLatency = map[string]int{"core": 2}
	w := sandbox.New(scene, zap.NewNop())
	env := &Env{
		World: w, Effects: w, Params: params,
		Presets: data.DefaultParticlePresets(), Bus: event.NewBus(),
		Dice: &fixedDice{float: 0.5}, Log: zap.NewNop(),
	}
	smallLayout(t, env, 3, 1, false)
	require.NoError(t, params.SetBool(config.VarMovementEnabled, false))

	v := NewVortex(env, world.Vec3{100, 100, -10}, 0)
	require.NoError(t, v.Build())
	main := v.Particles()[len(v.Particles())-1]
	assert.Equal(t, fx.StateLoading, main.Effect().State())

	for i := int64(1); i <= 3; i++ {
		w.Step(0.016)
		v.Update(frame(i * 16))
	}
	assert.Equal(t, fx.StateRunning, main.Effect().State())
}

func TestDisposeRemovesEverything(t *testing.T) {
	env, w, _ := newTestEnv(t)
	smallLayout(t, env, 2, 3, false)
	before := w.LiveEntities()
	v := stillVortex(t, env, world.Vec3{100, 100, -10})
	require.NoError(t, v.Build())
	v.Update(frame(16))
	require.Equal(t, 12, w.ActiveEffects())

	v.Dispose()
	v.Dispose()
	v.Update(frame(32))

	assert.True(t, v.Disposed())
	assert.Zero(t, v.ParticleCount())
	assert.Zero(t, w.ActiveEffects())
	assert.Equal(t, before, w.LiveEntities())
}

// ── entity pull ─────────────────────────────────────────────────

func TestCollectsPedsAndRagdollsThem(t *testing.T) {
	env, w, _ := newTestEnv(t)
	v := stillVortex(t, env, world.Vec3{500, 500, -10})
	ped := w.Spawn(world.KindPed, "a_m_y_hipster_01", world.Vec3{520, 500, 0}, 80)

	v.Update(frame(0))

	assert.True(t, v.Pulling(ped.Handle()))
	assert.True(t, ped.IsRagdoll())
}

var errStiff = errors.New("ragdoll unavailable")

// stiffPed refuses to ragdoll.
type stiffPed struct{ world.Entity }

func (stiffPed) SetToRagdoll(int, int) error { return errStiff }

// stiffPeds hands out peds that refuse to ragdoll.
type stiffPeds struct{ *sandbox.World }

func (s stiffPeds) NearbyEntities(center world.Vec3, radius float32) []world.Entity {
	ents := s.World.NearbyEntities(center, radius)
	for i, e := range ents {
		if e.Kind() == world.KindPed {
			ents[i] = stiffPed{e}
		}
	}
	return ents
}

func TestPedTrackedWhenRagdollRefused(t *testing.T) {
	env, w, _ := newTestEnv(t)
	env.World = stiffPeds{w}
	v := stillVortex(t, env, world.Vec3{500, 500, -10})
	ped := w.Spawn(world.KindPed, "a_m_y_hipster_01", world.Vec3{520, 500, 0}, 80)

	v.Update(frame(0))
	require.True(t, v.Pulling(ped.Handle()))
	assert.False(t, ped.IsRagdoll())

	before, ok := w.Body(ped.Handle())
	require.True(t, ok)
	forces := before.Forces
	v.Update(frame(16))
	assert.True(t, v.Pulling(ped.Handle()))
	after, _ := w.Body(ped.Handle())
	assert.Greater(t, after.Forces, forces)
}

func TestPulledEntityReleasedInsideCollectionReach(t *testing.T) {
	env, w, _ := newTestEnv(t)
	v := stillVortex(t, env, world.Vec3{500, 500, -10})
	maxDist := env.Params.Float(config.VarMaxEntityDist)
	car := w.Spawn(world.KindVehicle, "bison", world.Vec3{500 + maxDist - 20, 500, 0}, 1500)
	h := car.Handle()

	v.Update(frame(0))
	require.True(t, v.Pulling(h))

	// still inside the release radius of maxDist-13
	w.Move(h, world.Vec3{500 + maxDist - 15, 500, 0})
	v.Update(frame(16))
	assert.True(t, v.Pulling(h))

	w.Move(h, world.Vec3{500 + maxDist - 5, 500, 0})
	v.Update(frame(32))
	assert.False(t, v.Pulling(h))
}

func TestEntitiesBeyondReachOrTooHighIgnored(t *testing.T) {
	env, w, _ := newTestEnv(t)
	v := stillVortex(t, env, world.Vec3{500, 500, -10})
	maxDist := env.Params.Float(config.VarMaxEntityDist)
	far := w.Spawn(world.KindObject, "prop_bin_01a", world.Vec3{500 + maxDist + 5, 500, 0}, 20)
	high := w.Spawn(world.KindObject, "prop_bin_01a", world.Vec3{510, 500, 400}, 20)
	near := w.Spawn(world.KindObject, "prop_bin_01a", world.Vec3{500, 510, 0}, 20)

	v.Update(frame(0))

	assert.False(t, v.Pulling(far.Handle()))
	assert.False(t, v.Pulling(high.Handle()))
	assert.True(t, v.Pulling(near.Handle()))
}

func TestScanRespectsInterval(t *testing.T) {
	env, w, _ := newTestEnv(t)
	v := stillVortex(t, env, world.Vec3{500, 500, -10})
	v.Update(frame(0))

	late := w.Spawn(world.KindObject, "prop_bin_01a", world.Vec3{510, 500, 0}, 20)
	v.Update(frame(599))
	assert.False(t, v.Pulling(late.Handle()))
	v.Update(frame(600))
	assert.True(t, v.Pulling(late.Handle()))
}

func TestCollectStopsAtMaxEntityCount(t *testing.T) {
	env, w, _ := newTestEnv(t)
	require.NoError(t, env.Params.SetInt(config.VarMaxEntityCount, 2))
	v := stillVortex(t, env, world.Vec3{500, 500, -10})
	for i := 0; i < 5; i++ {
		w.Spawn(world.KindObject, "prop_bin_01a", world.Vec3{505 + float32(i), 500, 0}, 20)
	}

	v.Update(frame(0))
	assert.Equal(t, 2, v.PulledCount())
}

func TestPullAppliesForcesAndSpeedCap(t *testing.T) {
	env, w, _ := newTestEnv(t)
	v := stillVortex(t, env, world.Vec3{500, 500, -10})
	bin := w.Spawn(world.KindObject, "prop_bin_01a", world.Vec3{520, 500, 0}, 20)

	v.Update(frame(0))

	body, ok := w.Body(bin.Handle())
	require.True(t, ok)
	assert.Equal(t, 3, body.Forces)
	assert.Equal(t, float32(40), body.MaxSpeed)

	w.Step(0.1)
	assert.Greater(t, body.Vel[2], float32(0), "lift should beat gravity")
	assert.Less(t, body.Vel[0], float32(0), "pulled toward the center")
}

func TestPlanesArePulledHarder(t *testing.T) {
	env, w, _ := newTestEnv(t)
	v := stillVortex(t, env, world.Vec3{500, 500, -10})
	car := w.Spawn(world.KindVehicle, "bison", world.Vec3{520, 500, 100}, 8000)
	plane := w.SpawnPlane("cuban800", world.Vec3{500, 520, 100})

	v.Update(frame(0))
	w.Step(0.05)

	cb, _ := w.Body(car.Handle())
	pb, _ := w.Body(plane.Handle())
	assert.Greater(t, pb.Vel[2], cb.Vel[2])
}

func TestVanishedEntityReleased(t *testing.T) {
	env, w, _ := newTestEnv(t)
	v := stillVortex(t, env, world.Vec3{500, 500, -10})
	car := w.Spawn(world.KindVehicle, "bison", world.Vec3{520, 500, 0}, 1500)
	v.Update(frame(0))
	require.True(t, v.Pulling(car.Handle()))

	w.Remove(car.Handle())
	v.Update(frame(16))
	assert.False(t, v.Pulling(car.Handle()))
}

func TestPlayerShieldedByCover(t *testing.T) {
	scene := sandbox.FlatScene(500, 0)
	scene.Obstacles = []data.Box{{Min: [3]float32{-5, 10, -5}, Max: [3]float32{5, 15, 5}}}
	params := param.NewStore()
	config.RegisterParams(config.Defaults(), params)
	w := sandbox.New(scene, zap.NewNop())
	env := &Env{
		World: w, Effects: w, Params: params,
		Presets: data.DefaultParticlePresets(), Bus: event.NewBus(),
		Dice: &fixedDice{float: 0.5}, Log: zap.NewNop(),
	}
	v := stillVortex(t, env, world.Vec3{0, 30, -10})
	player, ok := w.Player()
	require.True(t, ok)

	v.Update(frame(2000))

	require.True(t, v.Pulling(player.Handle()))
	assert.True(t, v.pulled[player.Handle()].isPlayer)
	body, _ := w.Body(player.Handle())
	assert.Zero(t, body.Forces)
}

func TestPlayerPulledInTheOpen(t *testing.T) {
	env, w, _ := newTestEnv(t)
	v := stillVortex(t, env, world.Vec3{0, 30, -10})
	player, _ := w.Player()

	v.Update(frame(2000))

	body, _ := w.Body(player.Handle())
	assert.Equal(t, 3, body.Forces)
}
