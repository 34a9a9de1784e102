package system

import (
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/tornadoscript/tornado/internal/config"
	"github.com/tornadoscript/tornado/internal/core/event"
	coresys "github.com/tornadoscript/tornado/internal/core/system"
	"github.com/tornadoscript/tornado/internal/param"
	"github.com/tornadoscript/tornado/internal/tornado"
)

// EventDispatchSystem delivers the events emitted during the previous frame.
// Phase 1 (PreUpdate).
type EventDispatchSystem struct {
	bus *event.Bus
}

func NewEventDispatchSystem(bus *event.Bus) *EventDispatchSystem {
	return &EventDispatchSystem{bus: bus}
}

func (s *EventDispatchSystem) Phase() coresys.Phase { return coresys.PhasePreUpdate }

func (s *EventDispatchSystem) Update(_ coresys.Frame) {
	s.bus.SwapBuffers()
	s.bus.DispatchAll()
}

// Feed lines shown when notifications are on.
const (
	SpawnNotice   = "Tornado spawned nearby."
	DespawnNotice = "Tornado despawned!"
)

// Notifier turns bus events into console feed lines.
type Notifier struct {
	out    io.Writer
	params *param.Store
	log    *zap.Logger
}

// NewNotifier subscribes to the tornado and console events on bus.
func NewNotifier(bus *event.Bus, out io.Writer, params *param.Store, log *zap.Logger) *Notifier {
	n := &Notifier{out: out, params: params, log: log}
	event.Subscribe(bus, n.onSpawned)
	event.Subscribe(bus, n.onDespawned)
	event.Subscribe(bus, n.onOutput)
	return n
}

func (n *Notifier) onSpawned(ev event.VortexSpawned) {
	n.log.Debug("vortex spawned event",
		zap.Float32("x", ev.Position[0]), zap.Float32("y", ev.Position[1]), zap.Int("active", ev.Active))
	if n.params.Bool(config.VarNotifications) {
		n.writeLine(SpawnNotice)
	}
}

func (n *Notifier) onDespawned(ev event.VortexDespawned) {
	n.log.Info("vortices gone", zap.Int("count", ev.Count), zap.String("reason", ev.Reason))
	if ev.Reason == tornado.ReasonToggled && n.params.Bool(config.VarNotifications) {
		n.writeLine(DespawnNotice)
	}
}

func (n *Notifier) onOutput(ev event.CommandOutput) {
	if ev.Text != "" {
		n.writeLine(ev.Text)
	}
}

func (n *Notifier) writeLine(s string) {
	if _, err := fmt.Fprintln(n.out, s); err != nil {
		n.log.Warn("console write failed", zap.Error(err))
	}
}
