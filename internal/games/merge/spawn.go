package merge

import "math/rand"

// DefaultSpawn4 is the probability that a spawned tile is a 4 instead of a 2.
const DefaultSpawn4 = 0.10

// Spawner places new tiles into random empty cells.
type Spawner struct {
	rng  *rand.Rand
	four float64
}

// NewSpawner creates a spawner drawing from rng. A probability outside
// [0, 1] falls back to DefaultSpawn4.
func NewSpawner(rng *rand.Rand, spawn4 float64) *Spawner {
	if spawn4 < 0 || spawn4 > 1 {
		spawn4 = DefaultSpawn4
	}
	return &Spawner{rng: rng, four: spawn4}
}

// Spawn returns a copy of g with one empty cell set to 2 or 4. The cell is
// chosen uniformly. When g is full it returns g unchanged and false.
func (s *Spawner) Spawn(g Grid) (Grid, Cell, bool) {
	empty := g.EmptyCells()
	if len(empty) == 0 {
		return g, Cell{}, false
	}

	cell := empty[s.rng.Intn(len(empty))]
	value := 2
	if s.rng.Float64() < s.four {
		value = 4
	}
	g[cell.Row][cell.Col] = value
	return g, cell, true
}

// NewGrid returns an empty board with two spawned tiles.
func NewGrid(s *Spawner) Grid {
	var g Grid
	g, _, _ = s.Spawn(g)
	g, _, _ = s.Spawn(g)
	return g
}
