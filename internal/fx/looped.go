// Package fx drives looped particle effects without ever blocking the frame:
// an effect whose asset is not resident waits in Loading and is started by a
// later Poll once the host reports the asset loaded.
package fx

import (
	"errors"

	"github.com/tornadoscript/tornado/internal/world"
)

// LoadTimeout is how long an effect may wait for its asset, in ms.
const LoadTimeout = 2000

var ErrNoTarget = errors.New("effect target does not exist")

type State uint8

const (
	StateIdle State = iota
	StateLoading
	StateRunning
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateRunning:
		return "running"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Looped is one looped effect attached to an entity.
type Looped struct {
	Asset string
	Name  string

	fx       world.Effects
	state    State
	handle   world.EffectHandle
	target   world.Entity
	scale    float32
	deadline int64
}

func NewLooped(fx world.Effects, asset, name string) *Looped {
	return &Looped{Asset: asset, Name: name, fx: fx}
}

func (l *Looped) State() State               { return l.state }
func (l *Looped) Handle() world.EffectHandle { return l.handle }
func (l *Looped) Scale() float32             { return l.scale }

// Start attaches the effect to target. If the asset is not resident yet the
// effect enters Loading and Poll finishes the job. A second Start while
// loading or running is ignored.
func (l *Looped) Start(now int64, target world.Entity, scale float32) error {
	if l.state == StateLoading || l.state == StateRunning {
		return nil
	}
	if target == nil || !target.Exists() {
		return ErrNoTarget
	}
	l.target = target
	l.scale = scale
	if l.Asset == "" {
		l.state = StateFailed
		return nil
	}
	if !l.fx.AssetLoaded(l.Asset) {
		l.fx.RequestAsset(l.Asset)
		l.state = StateLoading
		l.deadline = now + LoadTimeout
		return nil
	}
	return l.begin()
}

// Poll advances a Loading effect. It returns true when the state changed.
func (l *Looped) Poll(now int64) bool {
	if l.state != StateLoading {
		return false
	}
	if l.fx.AssetLoaded(l.Asset) {
		if err := l.begin(); err != nil {
			l.state = StateFailed
		}
		return true
	}
	if now > l.deadline {
		l.state = StateFailed
		return true
	}
	return false
}

func (l *Looped) begin() error {
	if l.target == nil || !l.target.Exists() {
		l.state = StateFailed
		return ErrNoTarget
	}
	h, err := l.fx.StartLooped(l.Asset, l.Name, l.target, l.scale)
	if err != nil {
		l.state = StateFailed
		return err
	}
	l.handle = h
	l.state = StateRunning
	return nil
}

// Remove stops a running effect and abandons a pending load.
func (l *Looped) Remove() {
	if l.state == StateRunning && l.handle != 0 {
		l.fx.StopLooped(l.handle)
	}
	l.handle = 0
	l.target = nil
	l.state = StateIdle
}
