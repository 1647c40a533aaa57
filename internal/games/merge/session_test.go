package merge

import (
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/vovakirdan/quantum2048/internal/progression"
)

// memBest is an in-memory BestScoreStore for tests.
type memBest struct {
	mu     sync.Mutex
	value  int
	sets   []int
	getErr error
	setErr error
}

func (m *memBest) Get() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.value, m.getErr
}

func (m *memBest) Set(v int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets = append(m.sets, v)
	if m.setErr != nil {
		return m.setErr
	}
	m.value = v
	return nil
}

// terminalAfterRight becomes a full checkerboard once moved right and a 4 spawns.
var terminalAfterRight = Grid{
	{2, 4, 2, 4},
	{4, 2, 4, 2},
	{2, 4, 2, 4},
	{2, 4, 2, 0},
}

func TestSessionStart(t *testing.T) {
	store := &memBest{value: 1200}
	s := NewSession(store, WithSeed(42))

	st := s.State()
	if st.Grid.Count() != 2 {
		t.Errorf("new game has %d tiles, want 2", st.Grid.Count())
	}
	if st.Score != 0 || st.Combo != 0 || st.Moves != 0 {
		t.Errorf("new game state = %+v", st)
	}
	if st.BestScore != 1200 {
		t.Errorf("BestScore = %d, want 1200 loaded from store", st.BestScore)
	}
	if st.GameOver || s.Phase() != PhasePlaying {
		t.Error("new game should be playing")
	}
	if st.Tier != 0 || st.TierName != "Classic" {
		t.Errorf("tier = %d %q, want 0 Classic", st.Tier, st.TierName)
	}
}

func TestSessionLoadFailure(t *testing.T) {
	store := &memBest{value: 500, getErr: errors.New("disk gone")}
	s := NewSession(store, WithSeed(1))

	if got := s.State().BestScore; got != 0 {
		t.Errorf("BestScore after failed load = %d, want 0", got)
	}
}

func TestSessionEndToEnd(t *testing.T) {
	store := &memBest{}
	s := NewSession(store, WithSeed(5), WithGrid(Grid{{2, 2, 0, 0}}))

	var changes []State
	s.OnStateChange(func(st State) { changes = append(changes, st) })

	st, err := s.Move(Left)
	if err != nil {
		t.Fatalf("Move error: %v", err)
	}
	if st.Grid[0][0] != 4 {
		t.Errorf("merged tile = %d, want 4", st.Grid[0][0])
	}
	if st.Score != 4 || st.BestScore != 4 {
		t.Errorf("score = %d best = %d, want 4 4", st.Score, st.BestScore)
	}
	if st.Grid.Count() != 2 {
		t.Errorf("tiles after move = %d, want merged tile plus one spawn", st.Grid.Count())
	}
	if st.Combo != 1 || st.Moves != 1 {
		t.Errorf("combo = %d moves = %d, want 1 1", st.Combo, st.Moves)
	}
	if len(changes) != 1 {
		t.Errorf("OnStateChange fired %d times, want 1", len(changes))
	}
	if len(store.sets) != 1 || store.value != 4 {
		t.Errorf("store writes = %v, want [4]", store.sets)
	}
}

func TestSessionNoOpMove(t *testing.T) {
	start := Grid{
		{2, 4, 0, 0},
		{8, 0, 0, 0},
	}
	s := NewSession(nil, WithSeed(3), WithGrid(start))

	fired := 0
	s.OnStateChange(func(State) { fired++ })

	before := s.State()
	st, err := s.Move(Left)
	if err != nil {
		t.Fatalf("Move error: %v", err)
	}
	if st.Grid != before.Grid || st.Score != before.Score || st.Moves != before.Moves {
		t.Errorf("no-op move changed the session:\n%v", st.Grid)
	}
	if st.Combo != 0 {
		t.Errorf("combo after no-op = %d, want 0", st.Combo)
	}
	if st.CanUndo {
		t.Error("no-op move must not create an undo step")
	}
	if fired != 1 {
		t.Errorf("OnStateChange fired %d times, want 1", fired)
	}
}

func TestSessionComboResetsOnNoOp(t *testing.T) {
	s := NewSession(nil, WithSeed(11), WithSpawn4(0), WithGrid(Grid{{2, 2, 0, 0}}))

	st, _ := s.Move(Left)
	if st.Combo != 1 {
		t.Fatalf("combo after merge = %d, want 1", st.Combo)
	}

	// Find a direction that changes nothing, if any; otherwise a merge-free move.
	for _, dir := range Directions {
		out, _ := Resolve(st.Grid, dir)
		if !out.Changed || out.Gain == 0 {
			st, _ = s.Move(dir)
			if st.Combo != 0 {
				t.Errorf("combo after %s = %d, want 0", dir, st.Combo)
			}
			return
		}
	}
	t.Skip("every direction merges on this board")
}

func TestSessionInvalidDirection(t *testing.T) {
	s := NewSession(nil, WithSeed(9))
	before := s.Snapshot()

	_, err := s.Move(Direction(42))
	if !errors.Is(err, ErrInvalidDirection) {
		t.Fatalf("Move error = %v, want ErrInvalidDirection", err)
	}
	if after := s.Snapshot(); after != before {
		t.Errorf("invalid move changed the session: %+v -> %+v", before, after)
	}
}

func TestSessionGameOver(t *testing.T) {
	s := NewSession(&memBest{value: 10}, WithSeed(1), WithSpawn4(1), WithGrid(terminalAfterRight))

	overCalls := 0
	finalScore := -1
	s.OnGameOver(func(score int) {
		overCalls++
		finalScore = score
	})

	st, _ := s.Move(Right)
	if !st.GameOver || s.Phase() != PhaseGameOver {
		t.Fatalf("expected game over, board:\n%v", st.Grid)
	}
	if overCalls != 1 || finalScore != 0 {
		t.Errorf("OnGameOver calls = %d score = %d, want 1 0", overCalls, finalScore)
	}

	stateCalls := 0
	s.OnStateChange(func(State) { stateCalls++ })
	for _, dir := range Directions {
		after, err := s.Move(dir)
		if err != nil {
			t.Fatalf("Move after game over error: %v", err)
		}
		if after.Grid != st.Grid || after.Moves != st.Moves {
			t.Errorf("move %s after game over changed the board", dir)
		}
	}
	if overCalls != 1 {
		t.Errorf("OnGameOver fired %d times, want once", overCalls)
	}
	if stateCalls != 0 {
		t.Errorf("ignored moves fired OnStateChange %d times", stateCalls)
	}

	fresh := s.NewGame()
	if fresh.GameOver || fresh.Score != 0 || fresh.Grid.Count() != 2 {
		t.Errorf("NewGame state = %+v", fresh)
	}
	if fresh.BestScore != 10 {
		t.Errorf("NewGame BestScore = %d, want 10", fresh.BestScore)
	}
}

func TestSessionTierUp(t *testing.T) {
	start := Grid{{2048, 2048, 0, 0}}
	s := NewSession(nil, WithSeed(4), WithGrid(start))

	var tiers []int
	var names []string
	s.OnTierUp(func(tier int, name string) {
		tiers = append(tiers, tier)
		names = append(names, name)
	})

	st, _ := s.Move(Left)
	if st.MaxTile != 4096 || st.Tier != 1 || st.TierName != "Neon" {
		t.Errorf("max = %d tier = %d %q, want 4096 1 Neon", st.MaxTile, st.Tier, st.TierName)
	}
	if len(tiers) != 1 || tiers[0] != 1 || names[0] != "Neon" {
		t.Errorf("OnTierUp calls = %v %v", tiers, names)
	}

	// Tier never falls back within a game, even after undo.
	st, ok := s.Undo()
	if !ok {
		t.Fatal("Undo should succeed after a move")
	}
	if st.Tier != 1 || st.MaxTile != 4096 {
		t.Errorf("after undo tier = %d max = %d, want 1 4096", st.Tier, st.MaxTile)
	}
}

func TestSessionFormulaPolicy(t *testing.T) {
	formula, err := progression.NewFormula(5)
	if err != nil {
		t.Fatal(err)
	}
	s := NewSession(nil, WithSeed(4), WithClassifier(formula, []string{"a", "b", "c"}),
		WithGrid(Grid{{512, 512, 0, 0}}))

	st, _ := s.Move(Left)
	if st.Tier != 2 || st.TierName != "c" {
		t.Errorf("formula tier for 1024 = %d %q, want 2 c", st.Tier, st.TierName)
	}
}

func TestSessionUndo(t *testing.T) {
	start := Grid{{4, 4, 0, 0}, {2, 0, 0, 0}}
	s := NewSession(nil, WithSeed(8), WithGrid(start))

	if _, ok := s.Undo(); ok {
		t.Error("Undo before any move should fail")
	}

	st, _ := s.Move(Left)
	if !st.CanUndo || st.Score != 8 {
		t.Fatalf("after move: CanUndo = %v score = %d", st.CanUndo, st.Score)
	}

	back, ok := s.Undo()
	if !ok {
		t.Fatal("Undo should succeed")
	}
	if back.Grid != start || back.Score != 0 || back.Moves != 0 || back.Combo != 0 {
		t.Errorf("Undo restored %+v", back)
	}
	if back.BestScore != 8 {
		t.Errorf("Undo must not roll back best score, got %d", back.BestScore)
	}
	if _, ok := s.Undo(); ok {
		t.Error("only one undo step is kept")
	}
}

func TestSessionUndoAfterGameOver(t *testing.T) {
	s := NewSession(nil, WithSeed(1), WithSpawn4(1), WithGrid(terminalAfterRight))
	overCalls := 0
	s.OnGameOver(func(int) { overCalls++ })

	over, _ := s.Move(Right)
	if !over.GameOver {
		t.Fatal("expected game over")
	}
	if over.CanUndo {
		t.Error("finished game must not offer undo")
	}

	st, ok := s.Undo()
	if ok {
		t.Error("Undo succeeded after game over")
	}
	if !st.GameOver || s.Phase() != PhaseGameOver {
		t.Errorf("Undo left game over: phase = %s", s.Phase())
	}
	if st.Grid != over.Grid || st.Score != over.Score || st.Moves != over.Moves {
		t.Errorf("Undo after game over changed state: %+v", st)
	}

	s.Move(Left)
	if s.Phase() != PhaseGameOver || overCalls != 1 {
		t.Errorf("phase = %s, OnGameOver calls = %d; want game_over, 1", s.Phase(), overCalls)
	}

	if fresh := s.NewGame(); fresh.GameOver || s.Phase() != PhasePlaying {
		t.Error("NewGame should leave game over")
	}
}

func TestSessionRejectsInvalidStartGrid(t *testing.T) {
	for _, g := range []Grid{
		{{3, 0, 0, 0}},
		{{2, -2, 0, 0}},
		{{0, 0, 0, 0}, {0, 6, 0, 0}},
	} {
		st := NewSession(nil, WithSeed(3), WithGrid(g)).State()
		if st.Grid == g {
			t.Errorf("start grid %v was accepted", g)
		}
		if !st.Grid.Valid() || st.Grid.Count() != 2 {
			t.Errorf("fallback board invalid:\n%v", st.Grid)
		}
	}
}

func TestSessionPersistFailureIgnored(t *testing.T) {
	store := &memBest{setErr: errors.New("storage unavailable")}
	s := NewSession(store, WithSeed(6), WithGrid(Grid{{8, 8, 0, 0}}))

	st, err := s.Move(Left)
	if err != nil {
		t.Fatalf("Move error: %v", err)
	}
	if st.BestScore != 16 {
		t.Errorf("in-memory best = %d, want 16", st.BestScore)
	}
	if len(store.sets) != 1 {
		t.Errorf("store writes attempted = %d, want 1", len(store.sets))
	}
}

func TestSessionCoins(t *testing.T) {
	s := NewSession(nil, WithSeed(6), WithGrid(Grid{{64, 64, 0, 0}, {128, 128, 0, 0}}))

	st, _ := s.Move(Left)
	// gain 128 + 256 = 384 -> 3 steps of 100 -> 1.5 coins
	if !st.Coins.Equal(decimal.RequireFromString("1.5")) {
		t.Errorf("coins = %s, want 1.5", st.Coins)
	}

	s.NewGame()
	if !s.State().Coins.IsZero() {
		t.Error("NewGame should reset coins")
	}
}

func TestSessionProperties(t *testing.T) {
	store := &memBest{}
	s := NewSession(store, WithSeed(2024))

	bestSeen := 0
	tierSeen := 0
	for i := range 3000 {
		dir := Directions[(i*7+i/3)%len(Directions)]
		before := s.State()
		out, _ := Resolve(before.Grid, dir)

		st, err := s.Move(dir)
		if err != nil {
			t.Fatalf("move %d: %v", i, err)
		}

		switch {
		case before.GameOver:
			if st.Grid != before.Grid || st.Score != before.Score {
				t.Fatalf("move %d: game over session changed", i)
			}
			s.NewGame()
			tierSeen = 0
			continue
		case !out.Changed:
			if st.Grid != before.Grid || st.Score != before.Score || st.Combo != 0 {
				t.Fatalf("move %d: no-op move changed state", i)
			}
		default:
			if st.Score != before.Score+out.Gain {
				t.Fatalf("move %d: score %d, want %d", i, st.Score, before.Score+out.Gain)
			}
			if st.Grid.Count() != out.Grid.Count()+1 {
				t.Fatalf("move %d: expected exactly one spawned tile", i)
			}
			for r := range Size {
				for c := range Size {
					if v := out.Grid[r][c]; v != 0 && st.Grid[r][c] != v {
						t.Fatalf("move %d: spawn overwrote (%d,%d)", i, r, c)
					}
				}
			}
			wantCombo := 0
			if out.Gain > 0 {
				wantCombo = before.Combo + 1
			}
			if st.Combo != wantCombo {
				t.Fatalf("move %d: combo %d, want %d", i, st.Combo, wantCombo)
			}
			if st.GameOver != IsGameOver(st.Grid) {
				t.Fatalf("move %d: GameOver flag disagrees with board", i)
			}
		}

		if !st.Grid.Valid() {
			t.Fatalf("move %d: invalid tile in\n%v", i, st.Grid)
		}
		if st.BestScore < bestSeen || st.BestScore < st.Score {
			t.Fatalf("move %d: best score %d fell below %d / score %d", i, st.BestScore, bestSeen, st.Score)
		}
		if st.Tier < tierSeen {
			t.Fatalf("move %d: tier dropped from %d to %d", i, tierSeen, st.Tier)
		}
		bestSeen = st.BestScore
		tierSeen = st.Tier
	}

	if store.value != bestSeen {
		t.Errorf("persisted best = %d, want %d", store.value, bestSeen)
	}
}

func TestSessionDeterministic(t *testing.T) {
	play := func() Snapshot {
		s := NewSession(nil, WithSeed(12345))
		for i := range 200 {
			s.Move(Directions[i%len(Directions)])
		}
		return s.Snapshot()
	}

	a, b := play(), play()
	if a != b {
		t.Errorf("same seed produced different games:\n%+v\n%+v", a, b)
	}
}

func TestSessionConcurrentMoves(t *testing.T) {
	s := NewSession(&memBest{}, WithSeed(77))

	var wg sync.WaitGroup
	for w := range 4 {
		wg.Add(1)
		go func(dir Direction) {
			defer wg.Done()
			for range 100 {
				s.Move(dir)
			}
		}(Directions[w])
	}
	wg.Wait()

	st := s.State()
	if !st.Grid.Valid() || st.BestScore < st.Score {
		t.Errorf("inconsistent state after concurrent moves: %+v", st)
	}
}
