package merge

import (
	"errors"
	"math/rand"
	"testing"
)

func TestCompactRow(t *testing.T) {
	tests := []struct {
		name     string
		input    [Size]int
		expected [Size]int
		gain     int
		merges   int
	}{
		{
			name:     "simple merge",
			input:    [Size]int{2, 2, 0, 0},
			expected: [Size]int{4, 0, 0, 0},
			gain:     4,
			merges:   1,
		},
		{
			name:     "merged tile does not merge again",
			input:    [Size]int{2, 2, 2, 0},
			expected: [Size]int{4, 2, 0, 0},
			gain:     4,
			merges:   1,
		},
		{
			name:     "two pairs",
			input:    [Size]int{2, 2, 2, 2},
			expected: [Size]int{4, 4, 0, 0},
			gain:     8,
			merges:   2,
		},
		{
			name:     "four equal large tiles",
			input:    [Size]int{4, 4, 4, 4},
			expected: [Size]int{8, 8, 0, 0},
			gain:     16,
			merges:   2,
		},
		{
			name:     "no merge possible",
			input:    [Size]int{2, 4, 8, 16},
			expected: [Size]int{2, 4, 8, 16},
		},
		{
			name:     "gap between equal tiles",
			input:    [Size]int{2, 0, 0, 2},
			expected: [Size]int{4, 0, 0, 0},
			gain:     4,
			merges:   1,
		},
		{
			name:     "slide only",
			input:    [Size]int{0, 4, 0, 8},
			expected: [Size]int{4, 8, 0, 0},
		},
		{
			name:     "merge prefers the leading pair",
			input:    [Size]int{4, 2, 2, 4},
			expected: [Size]int{4, 4, 4, 0},
			gain:     4,
			merges:   1,
		},
		{
			name:     "empty row",
			input:    [Size]int{},
			expected: [Size]int{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row, gain, merges := compactRow(tt.input)
			if row != tt.expected {
				t.Errorf("compactRow(%v) = %v, want %v", tt.input, row, tt.expected)
			}
			if gain != tt.gain {
				t.Errorf("compactRow(%v) gain = %d, want %d", tt.input, gain, tt.gain)
			}
			if merges != tt.merges {
				t.Errorf("compactRow(%v) merges = %d, want %d", tt.input, merges, tt.merges)
			}
		})
	}
}

func TestResolveDirections(t *testing.T) {
	board := Grid{
		{2, 4, 2, 2},
		{2, 0, 2, 0},
		{0, 4, 2, 0},
		{0, 0, 2, 2},
	}

	tests := []struct {
		dir      Direction
		expected Grid
		gain     int
	}{
		{
			dir: Left,
			expected: Grid{
				{2, 4, 4, 0},
				{4, 0, 0, 0},
				{4, 2, 0, 0},
				{4, 0, 0, 0},
			},
			gain: 4 + 4 + 4,
		},
		{
			dir: Right,
			expected: Grid{
				{0, 2, 4, 4},
				{0, 0, 0, 4},
				{0, 0, 4, 2},
				{0, 0, 0, 4},
			},
			gain: 4 + 4 + 4,
		},
		{
			dir: Up,
			expected: Grid{
				{4, 8, 4, 4},
				{0, 0, 4, 0},
				{0, 0, 0, 0},
				{0, 0, 0, 0},
			},
			gain: 4 + 8 + 4 + 4 + 4,
		},
		{
			dir: Down,
			expected: Grid{
				{0, 0, 0, 0},
				{0, 0, 0, 0},
				{0, 0, 4, 0},
				{4, 8, 4, 4},
			},
			gain: 4 + 8 + 4 + 4 + 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.dir.String(), func(t *testing.T) {
			out, err := Resolve(board, tt.dir)
			if err != nil {
				t.Fatalf("Resolve(%s) error: %v", tt.dir, err)
			}
			if out.Grid != tt.expected {
				t.Errorf("Resolve(%s):\n%v\nwant\n%v", tt.dir, out.Grid, tt.expected)
			}
			if out.Gain != tt.gain {
				t.Errorf("Resolve(%s) gain = %d, want %d", tt.dir, out.Gain, tt.gain)
			}
			if !out.Changed {
				t.Errorf("Resolve(%s) should report a change", tt.dir)
			}
		})
	}
}

func TestResolveUnchanged(t *testing.T) {
	board := Grid{
		{4, 2, 0, 0},
		{8, 0, 0, 0},
		{0, 0, 0, 0},
		{2, 4, 8, 16},
	}

	out, err := Resolve(board, Left)
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if out.Changed {
		t.Error("left-aligned board should not change when moved left")
	}
	if out.Grid != board || out.Gain != 0 {
		t.Errorf("unchanged move returned grid\n%v\ngain %d", out.Grid, out.Gain)
	}
}

func TestResolveSlideWithoutMergeIsChange(t *testing.T) {
	board := Grid{{0, 0, 0, 2}}

	out, _ := Resolve(board, Left)
	if !out.Changed {
		t.Error("sliding a tile should count as a change")
	}
	if out.Gain != 0 || out.Merges != 0 {
		t.Errorf("slide gain = %d merges = %d, want 0", out.Gain, out.Merges)
	}
}

func TestResolveDoesNotModifyInput(t *testing.T) {
	board := Grid{
		{2, 2, 0, 0},
		{0, 4, 4, 0},
		{8, 0, 0, 8},
		{2, 0, 2, 0},
	}
	orig := board

	for _, dir := range Directions {
		if _, err := Resolve(board, dir); err != nil {
			t.Fatalf("Resolve(%s) error: %v", dir, err)
		}
		if board != orig {
			t.Fatalf("Resolve(%s) modified its input", dir)
		}
	}
}

func TestResolveInvalidDirection(t *testing.T) {
	board := Grid{{2, 2, 0, 0}}

	out, err := Resolve(board, Direction(7))
	if !errors.Is(err, ErrInvalidDirection) {
		t.Fatalf("Resolve with bad direction error = %v, want ErrInvalidDirection", err)
	}
	if out.Changed || out.Grid != board {
		t.Error("invalid direction must leave the grid untouched")
	}
}

func TestEndToEndScenario(t *testing.T) {
	board := Grid{{2, 2, 0, 0}}

	out, _ := Resolve(board, Left)
	if out.Grid[0] != [Size]int{4, 0, 0, 0} {
		t.Errorf("row 0 = %v, want [4 0 0 0]", out.Grid[0])
	}
	if out.Gain != 4 || !out.Changed {
		t.Errorf("gain = %d changed = %v, want 4 true", out.Gain, out.Changed)
	}
}

// randomGrid fills roughly half the board with small tiles.
func randomGrid(rng *rand.Rand) Grid {
	var g Grid
	for r := range Size {
		for c := range Size {
			if rng.Intn(2) == 0 {
				g[r][c] = 2 << rng.Intn(5)
			}
		}
	}
	return g
}

func TestResolveValueConservation(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for i := range 500 {
		board := randomGrid(rng)
		for _, dir := range Directions {
			out, _ := Resolve(board, dir)

			if got, want := out.Grid.Sum(), board.Sum()+out.Gain/2; got != want {
				t.Fatalf("case %d %s: sum after = %d, want %d\n%v", i, dir, got, want, board)
			}
			if out.Gain < 0 {
				t.Fatalf("case %d %s: negative gain %d", i, dir, out.Gain)
			}
			if !out.Grid.Valid() {
				t.Fatalf("case %d %s: invalid tile in\n%v", i, dir, out.Grid)
			}
			if got, want := out.Grid.Count(), board.Count()-out.Merges; got != want {
				t.Fatalf("case %d %s: tile count = %d, want %d", i, dir, got, want)
			}
		}
	}
}

func TestRotationsAreInverse(t *testing.T) {
	board := Grid{
		{2, 4, 8, 16},
		{32, 64, 128, 256},
		{512, 1024, 2048, 4096},
		{0, 2, 0, 4},
	}

	if got := rotateCW(rotateCCW(board)); got != board {
		t.Errorf("rotateCW(rotateCCW(b)) = \n%v", got)
	}
	if got := mirror(mirror(board)); got != board {
		t.Errorf("mirror(mirror(b)) = \n%v", got)
	}
	if got := rotateCW(rotateCW(rotateCW(rotateCW(board)))); got != board {
		t.Errorf("four clockwise turns = \n%v", got)
	}
}
