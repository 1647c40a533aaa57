package merge

// Snapshot captures a session for determinism checks and game history.
type Snapshot struct {
	Moves     int
	Phase     string
	Score     int
	BestScore int
	Combo     int
	MaxTile   int
	Tier      int
	Coins     string // decimal string, exact
	Board     Grid
}

// Snapshot returns the current session snapshot.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Snapshot{
		Moves:     s.moves,
		Phase:     s.phase.String(),
		Score:     s.score,
		BestScore: s.bestScore,
		Combo:     s.combo,
		MaxTile:   s.maxTile,
		Tier:      s.tier,
		Coins:     s.coins.String(),
		Board:     s.grid,
	}
}
