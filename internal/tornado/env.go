// Package tornado simulates tornado vortices: a layered ring of orbiting
// particle props around a moving center that pulls nearby entities into a
// rising swirl, plus the factory that decides when vortices exist.
package tornado

import (
	"math"
	"math/rand"

	"go.uber.org/zap"

	"github.com/tornadoscript/tornado/internal/core/event"
	"github.com/tornadoscript/tornado/internal/data"
	"github.com/tornadoscript/tornado/internal/param"
	"github.com/tornadoscript/tornado/internal/world"
)

// Env is the application context shared by the factory, its vortices and
// their particles. It is built once by the entry point.
type Env struct {
	World   world.Query
	Effects world.Effects
	Params  *param.Store
	Presets *data.ParticlePresets
	Bus     *event.Bus
	Dice    Dice
	Log     *zap.Logger
}

// Dice is the randomness source. Tests substitute fixed rolls.
type Dice interface {
	Float() float32        // [0, 1)
	Scalar() float32       // [-1, 1)
	Int(min, max int) int  // [min, max]
	Chance(p float32) bool // true with probability p
}

type randDice struct {
	r *rand.Rand
}

// NewDice returns a Dice backed by math/rand seeded with seed.
func NewDice(seed int64) Dice {
	return &randDice{r: rand.New(rand.NewSource(seed))}
}

func (d *randDice) Float() float32  { return d.r.Float32() }
func (d *randDice) Scalar() float32 { return d.r.Float32()*2 - 1 }

func (d *randDice) Int(min, max int) int {
	if max <= min {
		return min
	}
	return min + d.r.Intn(max-min+1)
}

func (d *randDice) Chance(p float32) bool { return d.r.Float32() < p }

// Around returns a random point in the XY disc of the given radius around center.
func Around(d Dice, center world.Vec3, radius float32) world.Vec3 {
	a := float64(d.Float()) * 2 * math.Pi
	r := radius * d.Float()
	return center.Add(world.Vec3{float32(math.Cos(a)) * r, float32(math.Sin(a)) * r, 0})
}
