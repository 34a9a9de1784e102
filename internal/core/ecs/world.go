package ecs

// World owns the entity pool, the registered component stores and a deferred
// destruction queue flushed by CleanupSystem at the end of each frame.
type World struct {
	pool         *EntityPool
	stores       []Removable
	destroyQueue []EntityID
}

func NewWorld() *World {
	return &World{
		pool:         NewEntityPool(),
		stores:       make([]Removable, 0, 4),
		destroyQueue: make([]EntityID, 0, 64),
	}
}

// Register adds a component store that is cleared on entity destruction.
func (w *World) Register(store Removable) {
	w.stores = append(w.stores, store)
}

func (w *World) CreateEntity() EntityID { return w.pool.Create() }

func (w *World) Alive(id EntityID) bool { return w.pool.Alive(id) }

func (w *World) Live() int { return w.pool.Live() }

// MarkForDestruction queues an entity for end-of-frame cleanup.
func (w *World) MarkForDestruction(id EntityID) {
	w.destroyQueue = append(w.destroyQueue, id)
}

// Destroy removes an entity immediately.
func (w *World) Destroy(id EntityID) {
	for _, s := range w.stores {
		s.Remove(id)
	}
	w.pool.Destroy(id)
}

// FlushDestroyQueue destroys all queued entities and returns how many were queued.
func (w *World) FlushDestroyQueue() int {
	n := len(w.destroyQueue)
	for _, id := range w.destroyQueue {
		w.Destroy(id)
	}
	w.destroyQueue = w.destroyQueue[:0]
	return n
}
