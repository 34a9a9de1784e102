package tornado

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/tornadoscript/tornado/internal/config"
	"github.com/tornadoscript/tornado/internal/core/event"
	"github.com/tornadoscript/tornado/internal/core/system"
	"github.com/tornadoscript/tornado/internal/world"
)

// VortexLimit is the capacity of the factory.
const VortexLimit = 30

const (
	stormRollInterval = 1000 // ms
	stormSpawnChance  = 0.05
	spawnDelayBase    = 20000 // ms
	spawnDelayJitter  = 40
	stormWindSpeed    = 70

	spawnAhead       = 100
	spawnJitterNear  = 150
	spawnJitterFar   = 175
	consoleSpawnDist = 180
	cleanupRadius    = 1e6
)

var (
	ErrSpawnInProgress = errors.New("vortex spawn in progress")
	ErrInvalidPosition = errors.New("vortex position is not finite")
	ErrNoPlayer        = errors.New("no live player")
	ErrNoVortex        = errors.New("no active vortex")
)

// Despawn reasons carried by event.VortexDespawned.
const (
	ReasonExpired     = "expired"
	ReasonPlayerDied  = "player died"
	ReasonRemoved     = "removed"
	ReasonToggled     = "toggled"
	ReasonFactoryDown = "shutdown"
)

// Factory owns every active vortex and decides when storms spawn one.
// Index 0 is always the newest vortex.
type Factory struct {
	env *Env
	log *zap.Logger

	active [VortexLimit]*Vortex
	count  int

	spawnInProgress bool
	delaySpawn      bool
	lastSpawnRoll   int64
	delayStart      int64
	delayJitter     int64

	now int64
}

func NewFactory(env *Env) *Factory {
	return &Factory{env: env, log: env.Log.Named("factory")}
}

func (fa *Factory) ActiveCount() int      { return fa.count }
func (fa *Factory) SpawnInProgress() bool { return fa.spawnInProgress }

// SpawnArmed reports whether a storm spawn is waiting out its delay.
func (fa *Factory) SpawnArmed() bool { return fa.delaySpawn }

// Active returns the vortices newest first.
func (fa *Factory) Active() []*Vortex {
	out := make([]*Vortex, fa.count)
	copy(out, fa.active[:fa.count])
	return out
}

// CreateVortex builds a vortex anchored 10 units below the ground at pos and
// makes it the newest active vortex. On any error the factory is unchanged.
func (fa *Factory) CreateVortex(pos world.Vec3) (*Vortex, error) {
	if fa.spawnInProgress {
		return nil, ErrSpawnInProgress
	}
	if !world.IsFinite(pos) {
		return nil, ErrInvalidPosition
	}
	if _, ok := fa.env.World.Player(); !ok {
		return nil, ErrNoPlayer
	}

	ground, ok := fa.env.World.GroundHeight(pos)
	if !ok || math.IsNaN(float64(ground)) {
		ground = pos[2]
	}
	pos[2] = ground - groundAnchor

	v := NewVortex(fa.env, pos, fa.now)
	if err := v.Build(); err != nil {
		v.Dispose()
		return nil, fmt.Errorf("create vortex: %w", err)
	}

	fa.insert(v)
	fa.spawnInProgress = true
	if fa.env.Bus != nil {
		event.Emit(fa.env.Bus, event.VortexSpawned{Position: pos, Active: fa.count})
	}
	fa.log.Info("vortex spawned",
		zap.Float32("x", pos[0]), zap.Float32("y", pos[1]), zap.Float32("z", pos[2]),
		zap.Int("particles", v.ParticleCount()), zap.Int("active", fa.count))
	return v, nil
}

// insert shifts older vortices down one slot. The vortex pushed past the
// last slot is disposed and dropped.
func (fa *Factory) insert(v *Vortex) {
	if old := fa.active[VortexLimit-1]; old != nil {
		old.Dispose()
	}
	copy(fa.active[1:], fa.active[:VortexLimit-1])
	fa.active[0] = v
	fa.count = min(fa.count+1, VortexLimit)
}

// Update runs the spawn state machine and then every active vortex.
func (fa *Factory) Update(f system.Frame) {
	defer func() {
		if r := recover(); r != nil {
			fa.log.Error("factory update panicked", zap.Any("panic", r), zap.Int64("time", f.GameTime))
		}
	}()
	fa.now = f.GameTime

	if fa.count < 1 {
		fa.updateIdle(f.GameTime)
	} else {
		lead := fa.active[0]
		switch {
		case lead.DespawnRequested():
			fa.removeAll(ReasonExpired)
		case fa.env.World.PlayerDead() && fa.env.World.ScreenFadedOut():
			fa.removeAll(ReasonPlayerDied)
		}
	}

	for i := 0; i < fa.count; i++ {
		fa.updateVortex(i, f)
	}
}

// updateVortex runs one vortex so that a panic in it spares the others.
func (fa *Factory) updateVortex(i int, f system.Frame) {
	defer func() {
		if r := recover(); r != nil {
			fa.log.Error("vortex update panicked",
				zap.Any("panic", r), zap.Int("slot", i), zap.Int64("time", f.GameTime))
		}
	}()
	fa.active[i].Update(f)
}

func (fa *Factory) updateIdle(now int64) {
	w := fa.env.World
	storm := w.Weather() == world.WeatherThunderStorm && fa.env.Params.Bool(config.VarSpawnInStorm)

	if storm {
		if !fa.spawnInProgress && now-fa.lastSpawnRoll > stormRollInterval {
			if fa.env.Dice.Chance(stormSpawnChance) {
				fa.delayStart = now
				fa.delayJitter = int64(fa.env.Dice.Int(0, spawnDelayJitter))
				w.SetWindSpeed(stormWindSpeed)
				fa.spawnInProgress = true
				fa.delaySpawn = true
				fa.log.Debug("storm spawn armed", zap.Int64("jitter", fa.delayJitter))
			}
			fa.lastSpawnRoll = now
		}
	} else if fa.delaySpawn {
		fa.delaySpawn = false
		fa.spawnInProgress = false
		fa.log.Debug("storm spawn disarmed")
	}

	if !fa.delaySpawn || now-fa.delayStart <= spawnDelayBase+fa.delayJitter {
		return
	}
	fa.delaySpawn = false
	fa.spawnInProgress = false

	player, ok := w.Player()
	if !ok {
		return
	}
	pos := player.Position().Add(player.Forward().Mul(spawnAhead))
	pos = Around(fa.env.Dice, Around(fa.env.Dice, pos, spawnJitterNear), spawnJitterFar)
	if _, err := fa.CreateVortex(pos); err != nil {
		fa.log.Debug("storm spawn failed", zap.Error(err))
	}
}

// SpawnAhead clears stray effects and spawns a vortex dist units in front of
// the player. Used by the console spawn command.
func (fa *Factory) SpawnAhead(dist float32) (*Vortex, error) {
	player, ok := fa.env.World.Player()
	if !ok {
		return nil, ErrNoPlayer
	}
	fa.env.Effects.RemoveInRange(world.Vec3{}, cleanupRadius)
	fa.env.World.SetWindSpeed(stormWindSpeed)
	return fa.CreateVortex(player.Position().Add(player.Forward().Mul(dist)))
}

// Toggle removes the active vortices when only one may exist, and otherwise
// spawns a new one in a random direction around the player. With multiVortex
// set an explicit toggle overrides the single-spawn guard. It returns the
// spawned vortex, or nil when it removed.
func (fa *Factory) Toggle() (*Vortex, error) {
	if fa.count > 0 {
		if !fa.env.Params.Bool(config.VarMultiVortex) {
			fa.removeAll(ReasonToggled)
			return nil, nil
		}
		if !fa.delaySpawn {
			fa.spawnInProgress = false
		}
	}
	player, ok := fa.env.World.Player()
	if !ok {
		return nil, ErrNoPlayer
	}
	a := float64(fa.env.Dice.Float()) * 2 * math.Pi
	dir := world.Vec3{float32(math.Cos(a)), float32(math.Sin(a)), 0}
	return fa.CreateVortex(player.Position().Add(dir.Mul(consoleSpawnDist)))
}

// Summon moves the newest vortex to pos.
func (fa *Factory) Summon(pos world.Vec3) error {
	if fa.count == 0 {
		return ErrNoVortex
	}
	if !world.IsFinite(pos) {
		return ErrInvalidPosition
	}
	fa.active[0].SetPosition(pos)
	return nil
}

// RemoveAll disposes every vortex and clears any effect left in the world.
// It is safe to call repeatedly.
func (fa *Factory) RemoveAll() {
	fa.removeAll(ReasonRemoved)
}

func (fa *Factory) removeAll(reason string) {
	removed := fa.count
	for i := range fa.active {
		if fa.active[i] != nil {
			fa.active[i].Dispose()
			fa.active[i] = nil
		}
	}
	fa.count = 0
	fa.spawnInProgress = false

	var center world.Vec3
	if player, ok := fa.env.World.Player(); ok {
		center = player.Position()
	}
	fa.env.Effects.RemoveInRange(center, cleanupRadius)

	if removed > 0 {
		fa.log.Info("vortices removed", zap.Int("count", removed), zap.String("reason", reason))
		if fa.env.Bus != nil {
			event.Emit(fa.env.Bus, event.VortexDespawned{Count: removed, Reason: reason})
		}
	}
}

// Dispose tears down every vortex.
func (fa *Factory) Dispose() {
	fa.removeAll(ReasonFactoryDown)
}
