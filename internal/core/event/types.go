package event

import "github.com/go-gl/mathgl/mgl32"

// VortexSpawned is emitted by the factory after a vortex has been built and inserted.
type VortexSpawned struct {
	Position mgl32.Vec3
	Active   int
}

// VortexDespawned is emitted when the factory tears down its vortices.
type VortexDespawned struct {
	Count  int
	Reason string
}

// CommandOutput carries a console reply to whoever renders the console.
type CommandOutput struct {
	Text string
}
