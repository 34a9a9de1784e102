// Package world defines what the tornado core needs from the game host: entity
// lookup, terrain and road queries, raycasts, props and looped effects.
package world

import (
	"errors"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrEntityGone is returned by Entity methods once the host has deleted the entity.
var ErrEntityGone = errors.New("entity no longer exists")

type Vec3 = mgl32.Vec3

// Handle identifies a host entity. Zero is never a valid handle.
type Handle uint64

type EntityKind uint8

const (
	KindObject EntityKind = iota
	KindPed
	KindVehicle
)

type Weather uint8

const (
	WeatherClear Weather = iota
	WeatherClouds
	WeatherRain
	WeatherThunderStorm
	WeatherFoggy
)

func (w Weather) String() string {
	switch w {
	case WeatherClear:
		return "clear"
	case WeatherClouds:
		return "clouds"
	case WeatherRain:
		return "rain"
	case WeatherThunderStorm:
		return "thunder"
	case WeatherFoggy:
		return "foggy"
	}
	return "unknown"
}

// ParseWeather maps a console name back to a Weather.
func ParseWeather(s string) (Weather, bool) {
	for w := WeatherClear; w <= WeatherFoggy; w++ {
		if w.String() == s {
			return w, true
		}
	}
	return 0, false
}

type RaycastFlags uint32

const (
	RaycastMap RaycastFlags = 1 << iota
	RaycastVehicles
	RaycastPeds
	RaycastObjects

	RaycastEverything = RaycastMap | RaycastVehicles | RaycastPeds | RaycastObjects
)

type RaycastResult struct {
	DidHit      bool
	HitPosition Vec3
	HitEntity   Handle
}

// Entity is a live reference to a host entity. Every method must tolerate the
// entity having been deleted by the host since the last frame.
type Entity interface {
	Handle() Handle
	Exists() bool
	Position() Vec3
	Forward() Vec3
	HeightAboveGround() float32
	Kind() EntityKind
	IsPlane() bool
	IsRagdoll() bool
	SetToRagdoll(minMs, maxMs int) error
	ApplyForce(dir, torque Vec3) error
	ApplyForceToCenterOfMass(dir Vec3) error
	SetMaxSpeed(speed float32) error
	SetPosition(pos Vec3) error
	SetCollision(enabled bool) error
	SetVisible(visible bool) error
	Delete() error
}

// Query is the host world as seen by the tornado core.
type Query interface {
	NearbyEntities(center Vec3, radius float32) []Entity
	// GroundHeight reports false when the host has no ground under pos.
	GroundHeight(pos Vec3) (float32, bool)
	NearestRoadPoint(pos Vec3) (Vec3, bool)
	Raycast(from, to Vec3, flags RaycastFlags) RaycastResult
	CreateProp(model string, pos Vec3) (Entity, error)
	// AddShockingEvent makes nearby peds react to source while it exists.
	AddShockingEvent(source Entity) error

	Player() (Entity, bool)
	PlayerDead() bool
	ScreenFadedOut() bool
	Weather() Weather
	SetWindSpeed(speed float32)
}

// EffectHandle identifies a running looped effect. Zero means none.
type EffectHandle uint32

// Effects starts and stops looped particle effects.
type Effects interface {
	RequestAsset(asset string)
	AssetLoaded(asset string) bool
	StartLooped(asset, name string, target Entity, scale float32) (EffectHandle, error)
	StopLooped(h EffectHandle)
	RemoveInRange(center Vec3, radius float32)
}
