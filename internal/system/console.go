package system

import (
	"go.uber.org/zap"

	"github.com/tornadoscript/tornado/internal/core/event"
	coresys "github.com/tornadoscript/tornado/internal/core/system"
)

// Executor runs one console line.
type Executor interface {
	Exec(line string) (string, error)
}

// ConsoleSystem drains queued console lines and runs them. Phase 0 (Input).
type ConsoleSystem struct {
	lines      <-chan string
	exec       Executor
	bus        *event.Bus
	maxPerTick int
	log        *zap.Logger
}

func NewConsoleSystem(lines <-chan string, exec Executor, bus *event.Bus, maxPerTick int, log *zap.Logger) *ConsoleSystem {
	if maxPerTick < 1 {
		maxPerTick = 1
	}
	return &ConsoleSystem{lines: lines, exec: exec, bus: bus, maxPerTick: maxPerTick, log: log}
}

func (s *ConsoleSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *ConsoleSystem) Update(_ coresys.Frame) {
	for i := 0; i < s.maxPerTick; i++ {
		select {
		case line, ok := <-s.lines:
			if !ok {
				return
			}
			s.run(line)
		default:
			return
		}
	}
}

func (s *ConsoleSystem) run(line string) {
	out, err := s.exec.Exec(line)
	if err != nil {
		s.log.Debug("console command failed", zap.String("line", line), zap.Error(err))
		out = "error: " + err.Error()
	}
	if out != "" {
		event.Emit(s.bus, event.CommandOutput{Text: out})
	}
}
