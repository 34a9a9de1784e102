package system

import (
	coresys "github.com/tornadoscript/tornado/internal/core/system"
	"github.com/tornadoscript/tornado/internal/tornado"
)

// TornadoSystem ticks the vortex factory. Phase 2 (Update).
type TornadoSystem struct {
	factory *tornado.Factory
}

func NewTornadoSystem(factory *tornado.Factory) *TornadoSystem {
	return &TornadoSystem{factory: factory}
}

func (s *TornadoSystem) Phase() coresys.Phase      { return coresys.PhaseUpdate }
func (s *TornadoSystem) Factory() *tornado.Factory { return s.factory }

func (s *TornadoSystem) Update(f coresys.Frame) {
	s.factory.Update(f)
}

// Dispose removes every vortex when the system is unregistered.
func (s *TornadoSystem) Dispose() {
	s.factory.Dispose()
}
