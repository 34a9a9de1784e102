package system

import (
	"maps"
	"slices"

	"go.uber.org/zap"

	coresys "github.com/tornadoscript/tornado/internal/core/system"
	"github.com/tornadoscript/tornado/internal/net"
)

// RemoteConsoleSystem runs console lines arriving over TCP and sends each
// reply back to the session that asked. Phase 0 (Input).
type RemoteConsoleSystem struct {
	server     *net.Server
	exec       Executor
	sessions   map[uint64]*net.Session
	maxPerTick int
	log        *zap.Logger
}

func NewRemoteConsoleSystem(server *net.Server, exec Executor, maxPerTick int, log *zap.Logger) *RemoteConsoleSystem {
	if maxPerTick < 1 {
		maxPerTick = 1
	}
	return &RemoteConsoleSystem{
		server:     server,
		exec:       exec,
		sessions:   make(map[uint64]*net.Session),
		maxPerTick: maxPerTick,
		log:        log,
	}
}

func (s *RemoteConsoleSystem) Phase() coresys.Phase { return coresys.PhaseInput }

// Sessions returns the number of connected remote consoles.
func (s *RemoteConsoleSystem) Sessions() int { return len(s.sessions) }

func (s *RemoteConsoleSystem) Update(_ coresys.Frame) {
	// Accept new sessions
	for {
		select {
		case sess := <-s.server.NewSessions():
			s.sessions[sess.ID] = sess
		default:
			goto doneNew
		}
	}
doneNew:

	// Process dead sessions
	for {
		select {
		case id := <-s.server.DeadSessions():
			delete(s.sessions, id)
		default:
			goto doneDead
		}
	}
doneDead:

	for _, id := range slices.Sorted(maps.Keys(s.sessions)) {
		sess := s.sessions[id]
		if sess.IsClosed() {
			delete(s.sessions, id)
			continue
		}
		for i := 0; i < s.maxPerTick; i++ {
			select {
			case line := <-sess.InQueue:
				sess.Send(s.run(sess.ID, line))
			default:
				goto nextSession
			}
		}
	nextSession:
		sess.FlushOutput()
	}
}

func (s *RemoteConsoleSystem) run(id uint64, line string) string {
	out, err := s.exec.Exec(line)
	if err != nil {
		s.log.Debug("remote command failed", zap.Uint64("session", id), zap.String("line", line), zap.Error(err))
		return "error: " + err.Error()
	}
	if out == "" {
		return "ok"
	}
	return out
}

// Dispose disconnects every remote console.
func (s *RemoteConsoleSystem) Dispose() {
	for id, sess := range s.sessions {
		sess.Close()
		delete(s.sessions, id)
	}
}
