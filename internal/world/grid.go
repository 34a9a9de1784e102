package world

import (
	"math"
	"sort"
)

// Grid buckets handles into square XY cells so radius queries only visit
// nearby cells. Accessed only from the game loop goroutine; no locks.
type Grid struct {
	cellSize float32
	cells    map[cellKey]map[Handle]struct{}
}

type cellKey struct {
	cx int32
	cy int32
}

func NewGrid(cellSize float32) *Grid {
	if cellSize <= 0 {
		cellSize = 32
	}
	return &Grid{
		cellSize: cellSize,
		cells:    make(map[cellKey]map[Handle]struct{}),
	}
}

func (g *Grid) coord(v float32) int32 {
	return int32(math.Floor(float64(v / g.cellSize)))
}

func (g *Grid) key(pos Vec3) cellKey {
	return cellKey{cx: g.coord(pos[0]), cy: g.coord(pos[1])}
}

// Add places a handle into the grid.
func (g *Grid) Add(h Handle, pos Vec3) {
	k := g.key(pos)
	cell := g.cells[k]
	if cell == nil {
		cell = make(map[Handle]struct{})
		g.cells[k] = cell
	}
	cell[h] = struct{}{}
}

// Remove takes a handle out of the grid.
func (g *Grid) Remove(h Handle, pos Vec3) {
	k := g.key(pos)
	cell := g.cells[k]
	if cell != nil {
		delete(cell, h)
		if len(cell) == 0 {
			delete(g.cells, k)
		}
	}
}

// Move updates a handle's cell when its position changes.
func (g *Grid) Move(h Handle, oldPos, newPos Vec3) {
	if g.key(oldPos) == g.key(newPos) {
		return
	}
	g.Remove(h, oldPos)
	g.Add(h, newPos)
}

// Candidates returns handles in every cell overlapping the square around
// center with half-width radius, in ascending handle order. The caller does
// the exact distance filtering.
func (g *Grid) Candidates(center Vec3, radius float32) []Handle {
	minX, maxX := g.coord(center[0]-radius), g.coord(center[0]+radius)
	minY, maxY := g.coord(center[1]-radius), g.coord(center[1]+radius)
	var result []Handle
	for cx := minX; cx <= maxX; cx++ {
		for cy := minY; cy <= maxY; cy++ {
			for h := range g.cells[cellKey{cx: cx, cy: cy}] {
				result = append(result, h)
			}
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}
