package merge

// Outcome is the result of resolving one directional command. It is built
// fresh for every move and never aliases the input grid.
type Outcome struct {
	Grid    Grid // board after sliding and merging, before any spawn
	Gain    int  // score earned by merges in this move
	Merges  int  // number of merges performed
	Changed bool // whether any cell changed position or value
}

// Resolve slides and merges the grid towards dir.
//
// Every direction is reduced to a single leftward compaction: the grid is
// rotated so that dir points left, each row is compacted, and the inverse
// rotation restores the orientation. Resolve never modifies g.
func Resolve(g Grid, dir Direction) (Outcome, error) {
	if !dir.Valid() {
		return Outcome{Grid: g}, ErrInvalidDirection
	}

	forward, inverse := orient(dir)
	work := forward(g)

	out := Outcome{}
	for r := range Size {
		row, gain, merges := compactRow(work[r])
		if row != work[r] {
			out.Changed = true
		}
		work[r] = row
		out.Gain += gain
		out.Merges += merges
	}
	out.Grid = inverse(work)
	return out, nil
}

// orient returns the transform that aligns dir with leftward motion and its inverse.
func orient(dir Direction) (forward, inverse func(Grid) Grid) {
	switch dir {
	case Up:
		return rotateCCW, rotateCW
	case Down:
		return rotateCW, rotateCCW
	case Right:
		return mirror, mirror
	default:
		return identity, identity
	}
}

// compactRow moves the row's tiles to the left and merges equal neighbours.
// A tile produced by a merge is never merged again within the same call.
func compactRow(row [Size]int) (out [Size]int, gain, merges int) {
	tiles := make([]int, 0, Size)
	for _, v := range row {
		if v != 0 {
			tiles = append(tiles, v)
		}
	}

	w := 0
	for i := 0; i < len(tiles); i++ {
		if i+1 < len(tiles) && tiles[i] == tiles[i+1] {
			out[w] = tiles[i] * 2
			gain += out[w]
			merges++
			i++
		} else {
			out[w] = tiles[i]
		}
		w++
	}
	return out, gain, merges
}

func identity(g Grid) Grid { return g }

// mirror reverses every row.
func mirror(g Grid) Grid {
	var out Grid
	for r := range Size {
		for c := range Size {
			out[r][c] = g[r][Size-1-c]
		}
	}
	return out
}

// rotateCW rotates the grid a quarter turn clockwise.
func rotateCW(g Grid) Grid {
	var out Grid
	for r := range Size {
		for c := range Size {
			out[r][c] = g[Size-1-c][r]
		}
	}
	return out
}

// rotateCCW rotates the grid a quarter turn counter-clockwise.
func rotateCCW(g Grid) Grid {
	var out Grid
	for r := range Size {
		for c := range Size {
			out[r][c] = g[c][Size-1-r]
		}
	}
	return out
}
