package system

import (
	"fmt"
	"sort"

	"go.uber.org/zap"
)

type entry struct {
	kind  Kind
	sys   System
	order int
}

// Runner executes systems in phase order each frame. Within a phase, systems
// run in registration order. Accessed only from the game loop goroutine.
type Runner struct {
	entries []entry
	byKind  map[Kind]System
	seq     int
	sorted  bool
	log     *zap.Logger
}

func NewRunner(log *zap.Logger) *Runner {
	return &Runner{
		entries: make([]entry, 0, 8),
		byKind:  make(map[Kind]System, 8),
		log:     log,
	}
}

// Register adds a system under kind. Registering a kind twice replaces (and
// disposes) the previous system.
func (r *Runner) Register(kind Kind, s System) {
	if _, ok := r.byKind[kind]; ok {
		r.Unregister(kind)
	}
	r.entries = append(r.entries, entry{kind: kind, sys: s, order: r.seq})
	r.byKind[kind] = s
	r.seq++
	r.sorted = false
}

// Get returns the system registered under kind.
func (r *Runner) Get(kind Kind) (System, bool) {
	s, ok := r.byKind[kind]
	return s, ok
}

// Unregister removes the system registered under kind and disposes it.
func (r *Runner) Unregister(kind Kind) {
	s, ok := r.byKind[kind]
	if !ok {
		return
	}
	delete(r.byKind, kind)
	for i := range r.entries {
		if r.entries[i].kind == kind {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			break
		}
	}
	if d, ok := s.(Disposer); ok {
		d.Dispose()
	}
}

// Len returns the number of registered systems.
func (r *Runner) Len() int { return len(r.entries) }

func (r *Runner) Tick(f Frame) {
	r.ensureSorted()
	for _, e := range r.entries {
		r.run(e, f)
	}
}

// TickPhase only runs systems of the given phase.
func (r *Runner) TickPhase(phase Phase, f Frame) {
	r.ensureSorted()
	for _, e := range r.entries {
		if e.sys.Phase() == phase {
			r.run(e, f)
		}
	}
}

// Close unregisters every system, latest registration first.
func (r *Runner) Close() {
	for len(r.entries) > 0 {
		last := r.entries[len(r.entries)-1]
		for _, e := range r.entries {
			if e.order > last.order {
				last = e
			}
		}
		r.Unregister(last.kind)
	}
}

// run is the last-resort boundary: a panicking system is logged and the
// frame continues with the next one.
func (r *Runner) run(e entry, f Frame) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("system update panicked",
				zap.Stringer("system", e.kind),
				zap.Error(fmt.Errorf("%v", rec)),
			)
		}
	}()
	e.sys.Update(f)
}

func (r *Runner) ensureSorted() {
	if !r.sorted {
		sort.SliceStable(r.entries, func(i, j int) bool {
			pi, pj := r.entries[i].sys.Phase(), r.entries[j].sys.Phase()
			if pi != pj {
				return pi < pj
			}
			return r.entries[i].order < r.entries[j].order
		})
		r.sorted = true
	}
}
