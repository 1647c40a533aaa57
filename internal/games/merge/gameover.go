package merge

// IsGameOver reports whether no move can change the grid: every cell is
// occupied and no two orthogonal neighbours are equal.
func IsGameOver(g Grid) bool {
	if g.HasEmpty() {
		return false
	}
	for r := range Size {
		for c := range Size {
			v := g[r][c]
			if c+1 < Size && g[r][c+1] == v {
				return false
			}
			if r+1 < Size && g[r+1][c] == v {
				return false
			}
		}
	}
	return true
}

// CanMove reports whether at least one direction changes the grid.
func CanMove(g Grid) bool {
	return !IsGameOver(g)
}
