package system

import coresys "github.com/tornadoscript/tornado/internal/core/system"

// Stepper advances a host simulation.
type Stepper interface {
	Step(dt float32)
}

// PhysicsSystem integrates the forces the vortices applied this frame.
// Phase 3 (PostUpdate).
type PhysicsSystem struct {
	host Stepper
}

func NewPhysicsSystem(host Stepper) *PhysicsSystem {
	return &PhysicsSystem{host: host}
}

func (s *PhysicsSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *PhysicsSystem) Update(f coresys.Frame) {
	s.host.Step(f.Delta)
}
