// Package sandbox is a headless, in-memory game host implementing the
// world.Query and world.Effects contracts. It backs the tornado binary when no
// real game is attached and gives tests a deterministic world to pull on.
// Accessed only from the game loop goroutine; no locks.
package sandbox

import (
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/tornadoscript/tornado/internal/core/ecs"
	"github.com/tornadoscript/tornado/internal/data"
	"github.com/tornadoscript/tornado/internal/world"
)

var ErrPropRejected = errors.New("host rejected prop creation")

const (
	gridCellSize = 32
	fadeDuration = 1.0 // seconds from death to a fully black screen
)

// Body is the simulated state of one entity.
type Body struct {
	Kind     world.EntityKind
	Model    string
	Pos      world.Vec3
	Vel      world.Vec3
	Heading  float32 // degrees, 0 = +Y
	Mass     float32
	MaxSpeed float32 // 0 = unlimited
	Plane    bool
	Static   bool // props: moved only by SetPosition, never integrated

	Ragdoll     bool
	ragdollLeft float32
	Panicked    bool // fleeing a shocking event

	Collision bool
	Visible   bool
	Deleted   bool

	force  world.Vec3
	Forces int // force applications since creation
}

// World is the sandbox host.
type World struct {
	ecs    *ecs.World
	bodies *ecs.Store[Body]
	grid   *world.Grid
	scene  *data.Scene
	log    *zap.Logger

	player     ecs.EntityID
	playerDead bool
	fade       float32
	weather    world.Weather
	wind       float32

	assets     map[string]*assetState
	effects    map[world.EffectHandle]*effect
	nextEffect world.EffectHandle
	shocks     map[world.Handle]struct{}

	propBudget int // <0 unlimited; counts down on each CreateProp
}

// New builds a world from scene. The player is spawned at the scene's player position.
func New(scene *data.Scene, log *zap.Logger) *World {
	w := &World{
		ecs:        ecs.NewWorld(),
		bodies:     ecs.NewStore[Body](),
		grid:       world.NewGrid(gridCellSize),
		scene:      scene,
		log:        log,
		assets:     make(map[string]*assetState),
		effects:    make(map[world.EffectHandle]*effect),
		shocks:     make(map[world.Handle]struct{}),
		propBudget: -1,
	}
	w.ecs.Register(w.bodies)

	if wt, ok := world.ParseWeather(scene.Weather); ok {
		w.weather = wt
	}

	p := scene.Player
	w.player = w.spawn(Body{
		Kind:      world.KindPed,
		Model:     "player_zero",
		Pos:       world.Vec3{p.Position[0], p.Position[1], p.Position[2]},
		Heading:   p.Heading,
		Mass:      80,
		Collision: true,
		Visible:   true,
	})

	for _, e := range scene.Entities {
		w.spawnSceneEntity(e)
	}
	return w
}

// FlatScene is a square scene of the given half size with flat ground, a
// straight road along the X axis and the player at the origin.
func FlatScene(halfSize, ground float32) *data.Scene {
	return &data.Scene{
		Name:   "flat",
		Bounds: data.Rect{Min: [2]float32{-halfSize, -halfSize}, Max: [2]float32{halfSize, halfSize}},
		Ground: ground,
		Roads: []data.Road{{
			Name:   "x-axis",
			Points: [][3]float32{{-halfSize, 0, ground}, {halfSize, 0, ground}},
		}},
		Player:  data.ScenePlayer{Position: [3]float32{0, 0, ground}},
		Weather: "clear",
	}
}

func (w *World) spawnSceneEntity(e data.SceneEntity) {
	kind := world.KindObject
	mass := e.Mass
	switch e.Kind {
	case "ped":
		kind = world.KindPed
		if mass == 0 {
			mass = 80
		}
	case "vehicle":
		kind = world.KindVehicle
		if mass == 0 {
			mass = 1500
		}
	default:
		if mass == 0 {
			mass = 50
		}
	}
	center := world.Vec3{e.Position[0], e.Position[1], e.Position[2]}
	n := e.Count
	if n < 1 {
		n = 1
	}
	for i := 0; i < n; i++ {
		pos := center
		if n > 1 {
			a := float64(i) * 2 * math.Pi / float64(n)
			pos = pos.Add(world.Vec3{float32(math.Cos(a)) * e.Spread, float32(math.Sin(a)) * e.Spread, 0})
		}
		w.spawn(Body{
			Kind:      kind,
			Model:     e.Model,
			Pos:       pos,
			Mass:      mass,
			Plane:     e.Plane,
			Collision: true,
			Visible:   true,
		})
	}
}

func (w *World) spawn(b Body) ecs.EntityID {
	id := w.ecs.CreateEntity()
	body := b
	w.bodies.Set(id, &body)
	w.grid.Add(world.Handle(id), body.Pos)
	return id
}

// Spawn adds an entity at pos and returns it.
func (w *World) Spawn(kind world.EntityKind, model string, pos world.Vec3, mass float32) world.Entity {
	if mass <= 0 {
		mass = 80
	}
	id := w.spawn(Body{Kind: kind, Model: model, Pos: pos, Mass: mass, Collision: true, Visible: true})
	return &entity{w: w, id: id}
}

// SpawnPlane adds an aircraft at pos.
func (w *World) SpawnPlane(model string, pos world.Vec3) world.Entity {
	id := w.spawn(Body{Kind: world.KindVehicle, Model: model, Pos: pos, Mass: 8000, Plane: true, Collision: true, Visible: true})
	return &entity{w: w, id: id}
}

// Remove deletes an entity on the host side, as if the game had streamed it out.
func (w *World) Remove(h world.Handle) {
	id := ecs.EntityID(h)
	if b, ok := w.bodies.Get(id); ok {
		w.grid.Remove(h, b.Pos)
	}
	w.ecs.Destroy(id)
}

// Body exposes the simulated state behind a handle.
func (w *World) Body(h world.Handle) (*Body, bool) {
	id := ecs.EntityID(h)
	if !w.ecs.Alive(id) {
		return nil, false
	}
	b, ok := w.bodies.Get(id)
	if !ok || b.Deleted {
		return nil, false
	}
	return b, true
}

// Move teleports an entity, keeping the spatial grid in sync.
func (w *World) Move(h world.Handle, pos world.Vec3) {
	if b, ok := w.Body(h); ok {
		w.grid.Move(h, b.Pos, pos)
		b.Pos = pos
	}
}

// Entity wraps a handle.
func (w *World) Entity(h world.Handle) world.Entity {
	return &entity{w: w, id: ecs.EntityID(h)}
}

// LiveEntities counts entities that exist, props included.
func (w *World) LiveEntities() int {
	n := 0
	w.bodies.Each(func(_ ecs.EntityID, b *Body) {
		if !b.Deleted {
			n++
		}
	})
	return n
}

// FailPropsAfter makes CreateProp fail once n more props have been created.
// A negative n removes the limit.
func (w *World) FailPropsAfter(n int) { w.propBudget = n }

// Cleanup flushes entities deleted during the frame.
func (w *World) Cleanup() int { return w.ecs.FlushDestroyQueue() }

// ── world.Query ──────────────────────────────────────────────────

// NearbyEntities returns colliding entities whose XY distance to center is
// within radius. Non-colliding props (particle proxies) are skipped.
func (w *World) NearbyEntities(center world.Vec3, radius float32) []world.Entity {
	var out []world.Entity
	for _, h := range w.grid.Candidates(center, radius) {
		b, ok := w.Body(h)
		if !ok || !b.Collision {
			continue
		}
		if world.Dist2D(b.Pos, center) > radius {
			continue
		}
		out = append(out, &entity{w: w, id: ecs.EntityID(h)})
	}
	return out
}

func (w *World) inBounds(pos world.Vec3) bool {
	r := w.scene.Bounds
	return pos[0] >= r.Min[0] && pos[0] <= r.Max[0] && pos[1] >= r.Min[1] && pos[1] <= r.Max[1]
}

// GroundHeight reports false outside the scene bounds or for non-finite input.
func (w *World) GroundHeight(pos world.Vec3) (float32, bool) {
	if !world.IsFinite(pos) || !w.inBounds(pos) {
		return 0, false
	}
	h := w.scene.Ground
	for _, p := range w.scene.Plateaus {
		if pos[0] >= p.Min[0] && pos[0] <= p.Max[0] && pos[1] >= p.Min[1] && pos[1] <= p.Max[1] && p.Height > h {
			h = p.Height
		}
	}
	return h, true
}

func (w *World) groundOrBase(pos world.Vec3) float32 {
	if h, ok := w.GroundHeight(pos); ok {
		return h
	}
	return w.scene.Ground
}

// NearestRoadPoint projects pos onto every road segment in XY and returns the closest point.
func (w *World) NearestRoadPoint(pos world.Vec3) (world.Vec3, bool) {
	best := world.Vec3{}
	bestDist := float32(math.MaxFloat32)
	found := false
	for _, r := range w.scene.Roads {
		for i := 0; i+1 < len(r.Points); i++ {
			a := world.Vec3(r.Points[i])
			b := world.Vec3(r.Points[i+1])
			p := closestOnSegment2D(pos, a, b)
			if d := world.Dist2D(pos, p); d < bestDist {
				best, bestDist, found = p, d, true
			}
		}
	}
	return best, found
}

func closestOnSegment2D(p, a, b world.Vec3) world.Vec3 {
	ab := mgl32.Vec2{b[0] - a[0], b[1] - a[1]}
	ap := mgl32.Vec2{p[0] - a[0], p[1] - a[1]}
	den := ab.Dot(ab)
	if den == 0 {
		return a
	}
	t := mgl32.Clamp(ap.Dot(ab)/den, 0, 1)
	return a.Add(b.Sub(a).Mul(t))
}

func (w *World) CreateProp(model string, pos world.Vec3) (world.Entity, error) {
	if w.propBudget == 0 {
		return nil, ErrPropRejected
	}
	if w.propBudget > 0 {
		w.propBudget--
	}
	id := w.spawn(Body{Kind: world.KindObject, Model: model, Pos: pos, Mass: 1, Static: true, Collision: true, Visible: true})
	return &entity{w: w, id: id}, nil
}

func (w *World) Player() (world.Entity, bool) {
	if _, ok := w.Body(world.Handle(w.player)); !ok {
		return nil, false
	}
	return &entity{w: w, id: w.player}, true
}

// PlayerHandle returns the player's handle even if the player no longer exists.
func (w *World) PlayerHandle() world.Handle { return world.Handle(w.player) }

func (w *World) PlayerDead() bool { return w.playerDead }

// ScreenFadedOut is true once the death fade has completed.
func (w *World) ScreenFadedOut() bool { return w.playerDead && w.fade >= 1 }

// KillPlayer starts the death fade.
func (w *World) KillPlayer() {
	w.playerDead = true
	w.fade = 0
}

// RespawnPlayer revives the player at pos.
func (w *World) RespawnPlayer(pos world.Vec3) {
	w.playerDead = false
	w.fade = 0
	w.Move(world.Handle(w.player), pos)
	if b, ok := w.Body(world.Handle(w.player)); ok {
		b.Vel = world.Vec3{}
	}
}

func (w *World) Weather() world.Weather      { return w.weather }
func (w *World) SetWeather(wt world.Weather) { w.weather = wt }
func (w *World) SetWindSpeed(speed float32)  { w.wind = speed }
func (w *World) WindSpeed() float32          { return w.wind }
