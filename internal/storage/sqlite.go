// Package storage persists the best score and the history of finished games.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// ErrClosed is returned when writing to a closed store.
var ErrClosed = errors.New("storage: store closed")

// Store manages the SQLite database connection.
type Store struct {
	db *sql.DB
}

// GameRecord is one finished (or abandoned) game.
type GameRecord struct {
	ID        string
	Player    string
	Score     int
	MaxTile   int
	Tier      int
	Moves     int
	Coins     decimal.Decimal
	CreatedAt time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	dbPath, err := ExpandHome(dbPath)
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}
	// One writer at a time; SSH sessions share the handle.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}
	return store, nil
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) (string, error) {
	if path == "" || path[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("storage: cannot expand home directory: %w", err)
	}
	return filepath.Join(home, path[1:]), nil
}

func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS kv (
			key TEXT PRIMARY KEY,
			value INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS games (
			id TEXT PRIMARY KEY,
			player TEXT NOT NULL DEFAULT '',
			score INTEGER NOT NULL,
			max_tile INTEGER NOT NULL,
			tier INTEGER NOT NULL DEFAULT 0,
			moves INTEGER NOT NULL DEFAULT 0,
			coins TEXT NOT NULL DEFAULT '0',
			created_at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_games_top ON games(score DESC);
		CREATE INDEX IF NOT EXISTS idx_games_player ON games(player);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Value returns the integer stored under key, or 0 when absent.
func (s *Store) Value(key string) (int, error) {
	var v int
	err := s.db.QueryRow("SELECT value FROM kv WHERE key = ?", key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("storage: cannot read %q: %w", key, err)
	}
	return v, nil
}

// RaiseValue stores v under key unless a larger value is already stored.
// The comparison happens inside the upsert, so concurrent writers never
// lower the value.
func (s *Store) RaiseValue(key string, v int) error {
	_, err := s.db.Exec(
		`INSERT INTO kv (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = max(value, excluded.value)`,
		key, v,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot write %q: %w", key, err)
	}
	return nil
}

// DeleteValue removes key.
func (s *Store) DeleteValue(key string) error {
	if _, err := s.db.Exec("DELETE FROM kv WHERE key = ?", key); err != nil {
		return fmt.Errorf("storage: cannot delete %q: %w", key, err)
	}
	return nil
}

// Best returns a best-score store backed by the kv table under key.
func (s *Store) Best(key string) *SQLiteBest {
	return &SQLiteBest{store: s, key: key}
}

// SQLiteBest keeps one best score in the kv table.
type SQLiteBest struct {
	store *Store
	key   string
}

func (b *SQLiteBest) Get() (int, error) { return b.store.Value(b.key) }

// Set records score if it beats the stored best. Several handles may share
// a key, as SSH connections of one user do.
func (b *SQLiteBest) Set(score int) error { return b.store.RaiseValue(b.key, score) }

func (b *SQLiteBest) Reset() error { return b.store.DeleteValue(b.key) }

// SaveGame records a game. A new UUID is assigned when rec.ID is empty and
// CreatedAt defaults to now. Returns the record ID.
func (s *Store) SaveGame(rec GameRecord) (string, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	_, err := s.db.Exec(
		`INSERT INTO games (id, player, score, max_tile, tier, moves, coins, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Player, rec.Score, rec.MaxTile, rec.Tier, rec.Moves,
		rec.Coins.String(), rec.CreatedAt.Unix(),
	)
	if err != nil {
		return "", fmt.Errorf("storage: cannot save game: %w", err)
	}
	return rec.ID, nil
}

// TopGames retrieves the top N games by score, newest first on ties.
func (s *Store) TopGames(limit int) ([]GameRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.queryGames(
		`SELECT id, player, score, max_tile, tier, moves, coins, created_at
		 FROM games
		 ORDER BY score DESC, created_at DESC
		 LIMIT ?`,
		limit,
	)
}

// AllGames retrieves every recorded game, newest first.
func (s *Store) AllGames() ([]GameRecord, error) {
	return s.queryGames(
		`SELECT id, player, score, max_tile, tier, moves, coins, created_at
		 FROM games
		 ORDER BY created_at DESC, score DESC`,
	)
}

// PlayerGames retrieves the games of one player, best first.
func (s *Store) PlayerGames(player string, limit int) ([]GameRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.queryGames(
		`SELECT id, player, score, max_tile, tier, moves, coins, created_at
		 FROM games
		 WHERE player = ?
		 ORDER BY score DESC, created_at DESC
		 LIMIT ?`,
		player, limit,
	)
}

func (s *Store) queryGames(query string, args ...any) ([]GameRecord, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query games: %w", err)
	}
	defer rows.Close()

	var games []GameRecord
	for rows.Next() {
		var (
			g       GameRecord
			coins   string
			created int64
		)
		if err := rows.Scan(&g.ID, &g.Player, &g.Score, &g.MaxTile, &g.Tier, &g.Moves, &coins, &created); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		g.Coins, err = decimal.NewFromString(coins)
		if err != nil {
			return nil, fmt.Errorf("storage: bad coins value %q in game %s: %w", coins, g.ID, err)
		}
		g.CreatedAt = time.Unix(created, 0)
		games = append(games, g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return games, nil
}

// HighScore returns the highest recorded game score, or 0 with no history.
func (s *Store) HighScore() (int, error) {
	var score sql.NullInt64
	if err := s.db.QueryRow("SELECT MAX(score) FROM games").Scan(&score); err != nil {
		return 0, fmt.Errorf("storage: cannot query high score: %w", err)
	}
	if !score.Valid {
		return 0, nil
	}
	return int(score.Int64), nil
}

// ClearGames deletes the game history.
func (s *Store) ClearGames() error {
	if _, err := s.db.Exec("DELETE FROM games"); err != nil {
		return fmt.Errorf("storage: cannot clear games: %w", err)
	}
	return nil
}
