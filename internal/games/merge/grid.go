// Package merge implements the Quantum 2048 tile-merging engine: the board,
// directional move resolution, tile spawning, game-over detection and the
// session tracker that keeps score, combo, best score and progression tier.
//
// The package has no terminal or storage dependencies. Hosts drive a Session
// with directional commands and observe it through callbacks.
package merge

import (
	"fmt"
	"strconv"
	"strings"
)

// Size is the board dimension.
const Size = 4

// Grid is the 4x4 board. Zero marks an empty cell; every other value is a
// power of two >= 2. Grid is a value type, so assigning it copies the board.
type Grid [Size][Size]int

// Cell addresses a single board position.
type Cell struct {
	Row int
	Col int
}

// EmptyCells returns the coordinates of all empty cells in row-major order.
func (g Grid) EmptyCells() []Cell {
	cells := make([]Cell, 0, Size*Size)
	for r := range Size {
		for c := range Size {
			if g[r][c] == 0 {
				cells = append(cells, Cell{Row: r, Col: c})
			}
		}
	}
	return cells
}

// HasEmpty reports whether at least one cell is empty.
func (g Grid) HasEmpty() bool {
	for r := range Size {
		for c := range Size {
			if g[r][c] == 0 {
				return true
			}
		}
	}
	return false
}

// MaxTile returns the largest tile on the board, 0 for an empty board.
func (g Grid) MaxTile() int {
	maxVal := 0
	for r := range Size {
		for c := range Size {
			maxVal = max(maxVal, g[r][c])
		}
	}
	return maxVal
}

// Sum returns the total of all tile values.
func (g Grid) Sum() int {
	total := 0
	for r := range Size {
		for c := range Size {
			total += g[r][c]
		}
	}
	return total
}

// Count returns the number of occupied cells.
func (g Grid) Count() int {
	return Size*Size - len(g.EmptyCells())
}

// Valid reports whether every occupied cell holds a power of two >= 2.
func (g Grid) Valid() bool {
	for r := range Size {
		for c := range Size {
			if v := g[r][c]; v != 0 && !isTile(v) {
				return false
			}
		}
	}
	return true
}

// Rows returns the board as nested slices, for hosts that serialize it.
func (g Grid) Rows() [][]int {
	rows := make([][]int, Size)
	for r := range Size {
		rows[r] = append([]int(nil), g[r][:]...)
	}
	return rows
}

// String renders the board as whitespace-aligned rows with '.' for empty cells.
func (g Grid) String() string {
	width := len(strconv.Itoa(g.MaxTile()))
	var sb strings.Builder
	for r := range Size {
		if r > 0 {
			sb.WriteByte('\n')
		}
		for c := range Size {
			if c > 0 {
				sb.WriteByte(' ')
			}
			cell := "."
			if g[r][c] != 0 {
				cell = strconv.Itoa(g[r][c])
			}
			fmt.Fprintf(&sb, "%*s", width, cell)
		}
	}
	return sb.String()
}

// ParseGrid builds a Grid from nested slices. The input must be 4x4 and may
// only contain zeros and powers of two >= 2.
func ParseGrid(rows [][]int) (Grid, error) {
	var g Grid
	if len(rows) != Size {
		return g, fmt.Errorf("%w: want %d rows, got %d", ErrInvalidGrid, Size, len(rows))
	}
	for r, row := range rows {
		if len(row) != Size {
			return g, fmt.Errorf("%w: row %d has %d cells", ErrInvalidGrid, r, len(row))
		}
		for c, v := range row {
			if v != 0 && !isTile(v) {
				return g, fmt.Errorf("%w: cell (%d,%d) holds %d", ErrInvalidGrid, r, c, v)
			}
			g[r][c] = v
		}
	}
	return g, nil
}

// isTile reports whether v is a power of two >= 2.
func isTile(v int) bool {
	return v >= 2 && v&(v-1) == 0
}
