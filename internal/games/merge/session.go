package merge

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/shopspring/decimal"

	"github.com/vovakirdan/quantum2048/internal/progression"
)

// BestScoreStore persists the best score between sessions.
// Set is called on every new best score and must not block for long;
// wrap slow stores with storage.NewAsync.
type BestScoreStore interface {
	Get() (int, error)
	Set(score int) error
}

// Phase is the session state machine position.
type Phase int

const (
	PhasePlaying Phase = iota
	PhaseGameOver
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhasePlaying:
		return "playing"
	case PhaseGameOver:
		return "game_over"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// State is the view of a session handed to the host after every command.
type State struct {
	Grid      Grid
	Score     int
	BestScore int
	Combo     int
	MaxTile   int
	Tier      int
	TierName  string
	Moves     int
	Coins     decimal.Decimal
	GameOver  bool
	CanUndo   bool
}

// undoSlot holds what a single Undo restores.
type undoSlot struct {
	grid  Grid
	score int
	combo int
	moves int
	coins decimal.Decimal
}

// Session tracks one game at a time: board, score, combo, best score and
// progression tier. Commands are serialized; a Session may be shared between
// goroutines, but callbacks must not issue commands on the same session.
type Session struct {
	cmdMu sync.Mutex // serializes commands including callback delivery
	mu    sync.Mutex // guards the fields below

	spawner    *Spawner
	best       BestScoreStore
	classifier progression.Classifier
	names      []string
	reward     Reward
	logger     *log.Logger

	grid      Grid
	score     int
	bestScore int
	combo     int
	maxTile   int
	tier      int
	moves     int
	coins     decimal.Decimal
	phase     Phase
	undo      *undoSlot

	onState    func(State)
	onGameOver func(finalScore int)
	onTierUp   func(tier int, name string)
}

// NewSession starts a game. The best score is read from best once; a read
// failure is logged and treated as zero. best may be nil.
func NewSession(best BestScoreStore, opts ...Option) *Session {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	o.finish()

	s := &Session{
		spawner:    NewSpawner(o.rng, o.spawn4),
		best:       best,
		classifier: o.classifier,
		names:      o.names,
		reward:     o.reward,
		logger:     o.logger,
	}

	if best != nil {
		v, err := best.Get()
		if err != nil {
			s.logger.Warn("could not load best score", "error", err)
		} else if v > 0 {
			s.bestScore = v
		}
	}

	g := NewGrid(s.spawner)
	if o.start != nil {
		if o.start.Valid() {
			g = *o.start
		} else {
			s.logger.Warn("ignoring start grid with non power-of-two cells", "grid", o.start.String())
		}
	}
	s.reset(g)
	return s
}

// OnStateChange sets the callback fired after every processed command.
func (s *Session) OnStateChange(cb func(State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onState = cb
}

// OnGameOver sets the callback fired once per game when it ends.
func (s *Session) OnGameOver(cb func(finalScore int)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onGameOver = cb
}

// OnTierUp sets the callback fired when the progression tier increases.
func (s *Session) OnTierUp(cb func(tier int, name string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onTierUp = cb
}

// events records which callbacks a command must fire.
type events struct {
	gameOver bool
	tierUp   bool
}

// Move applies one directional command.
//
// An invalid direction returns ErrInvalidDirection without touching the
// session. After game over, moves are ignored. A move that changes nothing
// resets the combo and spawns no tile. Otherwise a tile is spawned, score,
// best score, combo, coins and tier are updated and game over is checked.
func (s *Session) Move(dir Direction) (State, error) {
	if !dir.Valid() {
		return s.State(), fmt.Errorf("%w: %d", ErrInvalidDirection, int(dir))
	}

	s.cmdMu.Lock()
	defer s.cmdMu.Unlock()

	s.mu.Lock()
	if s.phase == PhaseGameOver {
		st := s.stateLocked()
		s.mu.Unlock()
		return st, nil
	}

	out, _ := Resolve(s.grid, dir)
	if !out.Changed {
		s.combo = 0
		st := s.stateLocked()
		s.mu.Unlock()
		s.emit(st, events{})
		return st, nil
	}

	s.undo = &undoSlot{
		grid:  s.grid,
		score: s.score,
		combo: s.combo,
		moves: s.moves,
		coins: s.coins,
	}

	var ev events
	s.grid, _, _ = s.spawner.Spawn(out.Grid)
	s.score += out.Gain
	s.moves++

	newBest := s.score > s.bestScore
	if newBest {
		s.bestScore = s.score
	}

	if out.Gain > 0 {
		s.combo++
	} else {
		s.combo = 0
	}
	s.coins = s.coins.Add(s.reward.Coins(out.Gain))

	s.maxTile = max(s.maxTile, s.grid.MaxTile())
	if t := s.classifier.Tier(s.maxTile); t > s.tier {
		s.tier = t
		ev.tierUp = true
	}

	if IsGameOver(s.grid) {
		s.phase = PhaseGameOver
		s.undo = nil
		ev.gameOver = true
	}

	st := s.stateLocked()
	s.mu.Unlock()

	if newBest {
		s.persist(st.BestScore)
	}
	s.emit(st, ev)
	return st, nil
}

// NewGame discards the current game and starts a fresh one. The best score
// is kept; score, combo, coins, tier and undo history are cleared.
func (s *Session) NewGame() State {
	s.cmdMu.Lock()
	defer s.cmdMu.Unlock()

	s.mu.Lock()
	s.reset(NewGrid(s.spawner))
	st := s.stateLocked()
	s.mu.Unlock()

	s.emit(st, events{})
	return st
}

// Undo restores the session to before the last move that changed the board.
// Only one step is kept. The best score and tier are never rolled back.
// A finished game cannot be undone; only NewGame leaves game over.
func (s *Session) Undo() (State, bool) {
	s.cmdMu.Lock()
	defer s.cmdMu.Unlock()

	s.mu.Lock()
	if s.undo == nil || s.phase == PhaseGameOver {
		st := s.stateLocked()
		s.mu.Unlock()
		return st, false
	}

	u := s.undo
	s.undo = nil
	s.grid = u.grid
	s.score = u.score
	s.combo = u.combo
	s.moves = u.moves
	s.coins = u.coins
	st := s.stateLocked()
	s.mu.Unlock()

	s.emit(st, events{})
	return st, true
}

// State returns the current session state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

// Phase returns the current state machine phase.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// reset installs g as a fresh game. Caller holds mu.
func (s *Session) reset(g Grid) {
	s.grid = g
	s.score = 0
	s.combo = 0
	s.moves = 0
	s.coins = decimal.Zero
	s.maxTile = g.MaxTile()
	s.tier = s.classifier.Tier(s.maxTile)
	s.undo = nil
	s.phase = PhasePlaying
	if IsGameOver(g) {
		s.phase = PhaseGameOver
	}
}

func (s *Session) stateLocked() State {
	return State{
		Grid:      s.grid,
		Score:     s.score,
		BestScore: s.bestScore,
		Combo:     s.combo,
		MaxTile:   s.maxTile,
		Tier:      s.tier,
		TierName:  progression.Name(s.tier, s.names),
		Moves:     s.moves,
		Coins:     s.coins,
		GameOver:  s.phase == PhaseGameOver,
		CanUndo:   s.undo != nil && s.phase != PhaseGameOver,
	}
}

// persist writes a new best score. Failures are logged and otherwise
// ignored; the in-memory best score stays authoritative.
func (s *Session) persist(score int) {
	if s.best == nil {
		return
	}
	if err := s.best.Set(score); err != nil {
		s.logger.Warn("could not persist best score", "score", score, "error", err)
	}
}

func (s *Session) emit(st State, ev events) {
	s.mu.Lock()
	onState, onGameOver, onTierUp := s.onState, s.onGameOver, s.onTierUp
	s.mu.Unlock()

	if ev.tierUp {
		s.logger.Debug("tier up", "tier", st.Tier, "theme", st.TierName, "max_tile", st.MaxTile)
		if onTierUp != nil {
			onTierUp(st.Tier, st.TierName)
		}
	}
	if onState != nil {
		onState(st)
	}
	if ev.gameOver {
		s.logger.Info("game over", "score", st.Score, "max_tile", st.MaxTile, "moves", st.Moves)
		if onGameOver != nil {
			onGameOver(st.Score)
		}
	}
}
