package system

import coresys "github.com/tornadoscript/tornado/internal/core/system"

// Cleaner destroys entities queued for deletion and reports how many went.
type Cleaner interface {
	Cleanup() int
}

// CleanupSystem flushes the deferred entity destruction queue at tick end.
// Phase 4 (Cleanup).
type CleanupSystem struct {
	world Cleaner
}

func NewCleanupSystem(world Cleaner) *CleanupSystem {
	return &CleanupSystem{world: world}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ coresys.Frame) {
	s.world.Cleanup()
}
