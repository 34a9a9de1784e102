package system

// Phase defines execution ordering within a single frame.
type Phase int

const (
	PhaseInput      Phase = iota // 0: drain console lines
	PhasePreUpdate               // 1: dispatch last frame's events
	PhaseUpdate                  // 2: factory, vortices, particles
	PhasePostUpdate              // 3: host physics step
	PhaseCleanup                 // 4: destroy queued entities
)

// Frame is the per-tick input handed to every system.
type Frame struct {
	GameTime int64   // milliseconds since the host started
	Delta    float32 // seconds since the previous frame
}

// System is the interface every extension plugged into the Runner implements.
type System interface {
	Phase() Phase
	Update(f Frame)
}

// Disposer is implemented by systems that own resources released on unregister.
type Disposer interface {
	Dispose()
}

// Kind identifies a registered extension. The Runner holds at most one system per kind.
type Kind int

const (
	KindConsole Kind = iota
	KindRemoteConsole
	KindEvents
	KindTornado
	KindPhysics
	KindCleanup
)

func (k Kind) String() string {
	switch k {
	case KindConsole:
		return "console"
	case KindRemoteConsole:
		return "remote-console"
	case KindEvents:
		return "events"
	case KindTornado:
		return "tornado"
	case KindPhysics:
		return "physics"
	case KindCleanup:
		return "cleanup"
	}
	return "unknown"
}
