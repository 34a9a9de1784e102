package sandbox

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tornadoscript/tornado/internal/data"
	"github.com/tornadoscript/tornado/internal/world"
)

func newFlat(t *testing.T) *World {
	t.Helper()
	return New(FlatScene(1000, 0), zap.NewNop())
}

func TestNearbyEntitiesUsesXYDistance(t *testing.T) {
	w := newFlat(t)
	near := w.Spawn(world.KindPed, "ped", world.Vec3{10, 0, 200}, 80)
	far := w.Spawn(world.KindPed, "ped", world.Vec3{70, 0, 0}, 80)

	got := w.NearbyEntities(world.Vec3{0, 0, 0}, 50)
	handles := make([]world.Handle, 0, len(got))
	for _, e := range got {
		handles = append(handles, e.Handle())
	}
	assert.Contains(t, handles, near.Handle())
	assert.Contains(t, handles, w.PlayerHandle())
	assert.NotContains(t, handles, far.Handle())
}

func TestNearbyEntitiesSkipsNonCollidingProps(t *testing.T) {
	w := newFlat(t)
	prop, err := w.CreateProp("prop", world.Vec3{1, 1, 1})
	require.NoError(t, err)
	require.NoError(t, prop.SetCollision(false))

	for _, e := range w.NearbyEntities(world.Vec3{}, 10) {
		assert.NotEqual(t, prop.Handle(), e.Handle())
	}
}

func TestGroundHeight(t *testing.T) {
	scene := FlatScene(100, 5)
	scene.Plateaus = []data.Plateau{{Rect: data.Rect{Min: [2]float32{10, 10}, Max: [2]float32{20, 20}}, Height: 30}}
	w := New(scene, zap.NewNop())

	h, ok := w.GroundHeight(world.Vec3{0, 0, 0})
	require.True(t, ok)
	assert.Equal(t, float32(5), h)

	h, ok = w.GroundHeight(world.Vec3{15, 15, 0})
	require.True(t, ok)
	assert.Equal(t, float32(30), h)

	_, ok = w.GroundHeight(world.Vec3{500, 0, 0})
	assert.False(t, ok)
	_, ok = w.GroundHeight(world.Vec3{float32(math.NaN()), 0, 0})
	assert.False(t, ok)
}

func TestNearestRoadPoint(t *testing.T) {
	w := newFlat(t)
	p, ok := w.NearestRoadPoint(world.Vec3{25, 30, 0})
	require.True(t, ok)
	assert.InDelta(t, 25, p[0], 1e-4)
	assert.InDelta(t, 0, p[1], 1e-4)

	scene := FlatScene(100, 0)
	scene.Roads = nil
	_, ok = New(scene, zap.NewNop()).NearestRoadPoint(world.Vec3{})
	assert.False(t, ok)
}

func TestRaycastAgainstObstacles(t *testing.T) {
	scene := FlatScene(100, 0)
	scene.Obstacles = []data.Box{{Min: [3]float32{10, -5, 0}, Max: [3]float32{12, 5, 20}}}
	w := New(scene, zap.NewNop())

	hit := w.Raycast(world.Vec3{0, 0, 5}, world.Vec3{20, 0, 5}, world.RaycastMap)
	require.True(t, hit.DidHit)
	assert.InDelta(t, 10, hit.HitPosition[0], 1e-4)

	miss := w.Raycast(world.Vec3{0, 0, 30}, world.Vec3{20, 0, 30}, world.RaycastMap)
	assert.False(t, miss.DidHit)

	// entities are ignored unless asked for
	ped := w.Spawn(world.KindPed, "ped", world.Vec3{5, 20, 5}, 80)
	assert.False(t, w.Raycast(world.Vec3{0, 20, 5}, world.Vec3{10, 20, 5}, world.RaycastMap).DidHit)
	r := w.Raycast(world.Vec3{0, 20, 5}, world.Vec3{10, 20, 5}, world.RaycastPeds)
	assert.True(t, r.DidHit)
	assert.Equal(t, ped.Handle(), r.HitEntity)
}

func TestStepIntegratesForcesAndClampsSpeed(t *testing.T) {
	w := newFlat(t)
	e := w.Spawn(world.KindObject, "crate", world.Vec3{0, 50, 0}, 80)
	require.NoError(t, e.SetMaxSpeed(5))
	require.NoError(t, e.ApplyForceToCenterOfMass(world.Vec3{0, 0, 100}))

	w.Step(0.1)

	b, ok := w.Body(e.Handle())
	require.True(t, ok)
	assert.InDelta(t, 5, b.Vel.Len(), 1e-3)
	assert.Greater(t, b.Pos[2], float32(0))
	assert.Equal(t, 1, b.Forces)

	// forces do not carry over; the body falls back to the ground
	for i := 0; i < 200; i++ {
		w.Step(0.05)
	}
	assert.InDelta(t, 0, b.Pos[2], 1e-4)
}

func TestRagdollOnlyForPedsAndExpires(t *testing.T) {
	w := newFlat(t)
	ped := w.Spawn(world.KindPed, "ped", world.Vec3{}, 80)
	car := w.Spawn(world.KindVehicle, "car", world.Vec3{5, 5, 0}, 1500)

	require.NoError(t, ped.SetToRagdoll(800, 1500))
	require.NoError(t, car.SetToRagdoll(800, 1500))
	assert.True(t, ped.IsRagdoll())
	assert.False(t, car.IsRagdoll())

	for i := 0; i < 16; i++ {
		w.Step(0.1)
	}
	assert.False(t, ped.IsRagdoll())
}

func TestDeletedAndRemovedEntities(t *testing.T) {
	w := newFlat(t)
	prop, err := w.CreateProp("prop", world.Vec3{})
	require.NoError(t, err)
	require.NoError(t, prop.Delete())
	assert.False(t, prop.Exists())
	assert.ErrorIs(t, prop.SetPosition(world.Vec3{1, 1, 1}), world.ErrEntityGone)
	assert.Equal(t, 1, w.Cleanup())

	ped := w.Spawn(world.KindPed, "ped", world.Vec3{3, 3, 0}, 80)
	w.Remove(ped.Handle())
	assert.False(t, ped.Exists())
	assert.ErrorIs(t, ped.ApplyForce(world.Vec3{1, 0, 0}, world.Vec3{}), world.ErrEntityGone)
}

func TestCreatePropBudget(t *testing.T) {
	w := newFlat(t)
	w.FailPropsAfter(1)
	_, err := w.CreateProp("prop", world.Vec3{})
	require.NoError(t, err)
	_, err = w.CreateProp("prop", world.Vec3{})
	assert.ErrorIs(t, err, ErrPropRejected)

	w.FailPropsAfter(-1)
	_, err = w.CreateProp("prop", world.Vec3{})
	assert.NoError(t, err)
}

func TestAssetStreamingAndEffects(t *testing.T) {
	scene := FlatScene(100, 0)
	scene.AssetLatency = map[string]int{"core": 2}
	w := New(scene, zap.NewNop())
	prop, err := w.CreateProp("prop", world.Vec3{})
	require.NoError(t, err)

	assert.False(t, w.AssetLoaded("core"))
	w.RequestAsset("core")
	assert.False(t, w.AssetLoaded("core"))
	_, err = w.StartLooped("core", "smoke", prop, 3)
	assert.ErrorIs(t, err, ErrAssetNotLoaded)

	w.Step(0.016)
	w.Step(0.016)
	require.True(t, w.AssetLoaded("core"))

	h, err := w.StartLooped("core", "smoke", prop, 3)
	require.NoError(t, err)
	scale, ok := w.EffectScale(h)
	require.True(t, ok)
	assert.Equal(t, float32(3), scale)
	assert.Equal(t, 1, w.ActiveEffects())

	w.RemoveInRange(world.Vec3{}, 1e6)
	assert.Equal(t, 0, w.ActiveEffects())

	// unknown assets are resident as soon as they are requested
	w.RequestAsset("other")
	assert.True(t, w.AssetLoaded("other"))
}

func TestPlayerDeathFade(t *testing.T) {
	w := newFlat(t)
	w.KillPlayer()
	assert.True(t, w.PlayerDead())
	assert.False(t, w.ScreenFadedOut())

	for i := 0; i < 12; i++ {
		w.Step(0.1)
	}
	assert.True(t, w.ScreenFadedOut())

	w.RespawnPlayer(world.Vec3{10, 10, 0})
	assert.False(t, w.PlayerDead())
	p, ok := w.Player()
	require.True(t, ok)
	assert.Equal(t, world.Vec3{10, 10, 0}, p.Position())
}

func TestForwardFollowsHeading(t *testing.T) {
	scene := FlatScene(100, 0)
	scene.Player.Heading = 90
	w := New(scene, zap.NewNop())
	p, ok := w.Player()
	require.True(t, ok)
	f := p.Forward()
	assert.InDelta(t, 1, f[0], 1e-5)
	assert.InDelta(t, 0, f[1], 1e-5)
}

func TestShockingEventPanicsNearbyPeds(t *testing.T) {
	w := newFlat(t)
	source, err := w.CreateProp("prop", world.Vec3{})
	require.NoError(t, err)
	require.NoError(t, source.SetCollision(false))
	near := w.Spawn(world.KindPed, "ped", world.Vec3{10, 0, 0}, 80)
	far := w.Spawn(world.KindPed, "ped", world.Vec3{100, 0, 0}, 80)
	car := w.Spawn(world.KindVehicle, "car", world.Vec3{5, 5, 0}, 1500)

	require.NoError(t, w.AddShockingEvent(source))
	assert.Equal(t, 1, w.ShockingSources())
	w.Step(0.1)

	body := func(e world.Entity) *Body {
		b, ok := w.Body(e.Handle())
		require.True(t, ok)
		return b
	}
	assert.True(t, body(near).Panicked)
	assert.InDelta(t, 90, body(near).Heading, 1e-3)
	assert.False(t, body(far).Panicked)
	assert.False(t, body(car).Panicked)
	assert.False(t, body(w.Entity(w.PlayerHandle())).Panicked)

	require.NoError(t, source.Delete())
	w.Step(0.1)
	assert.Zero(t, w.ShockingSources())
	assert.ErrorIs(t, w.AddShockingEvent(source), world.ErrEntityGone)
}
