// Package store persists finished game transcripts in SQLite so they can be
// listed and replayed later.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/peterkuimelis/dominion/internal/game"
	_ "modernc.org/sqlite"
)

// created_at is stored as fixed-width UTC text so it sorts chronologically.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

const schema = `
CREATE TABLE IF NOT EXISTS games (
	id         TEXT PRIMARY KEY,
	created_at TEXT NOT NULL,
	players    TEXT NOT NULL,
	kingdom    TEXT NOT NULL,
	seed       INTEGER NOT NULL,
	turns      INTEGER NOT NULL,
	result     TEXT NOT NULL,
	transcript TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS games_created_at ON games (created_at);
`

// ErrNotFound is returned when no game has the requested ID.
var ErrNotFound = errors.New("game not found")

// Summary describes a stored game without its transcript.
type Summary struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Players   []string  `json:"players"`
	Kingdom   []string  `json:"kingdom"`
	Seed      int64     `json:"seed"`
	Turns     int       `json:"turns"`
	Result    string    `json:"result"`
}

// Record is a stored game.
type Record struct {
	Summary
	Transcript game.Transcript `json:"transcript"`
}

// Store provides a SQLite-backed transcript store.
type Store struct {
	sqlDB *sql.DB
	now   func() time.Time
}

// Open opens a SQLite store at the provided path. ":memory:" gives a
// throwaway database.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("storage path is required")
	}
	dsn := ":memory:"
	if path != ":memory:" {
		dsn = filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// each :memory: connection is its own database
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{sqlDB: sqlDB, now: time.Now}, nil
}

// Close closes the underlying SQLite database.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// SaveGame stores the game's transcript under a new ID.
func (s *Store) SaveGame(ctx context.Context, g *game.Game) (string, error) {
	res := g.Result()
	return s.Save(ctx, g.Transcript(), res.Turn, res.Reason)
}

// Save stores a transcript and returns its ID.
func (s *Store) Save(ctx context.Context, t game.Transcript, turns int, result string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := json.Marshal(t)
	if err != nil {
		return "", fmt.Errorf("encode transcript: %w", err)
	}
	players, err := json.Marshal(t.Config.Players)
	if err != nil {
		return "", err
	}
	kingdom, err := json.Marshal(t.Config.Kingdom)
	if err != nil {
		return "", err
	}

	id := uuid.NewString()
	_, err = s.sqlDB.ExecContext(ctx,
		`INSERT INTO games (id, created_at, players, kingdom, seed, turns, result, transcript)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, s.now().UTC().Format(timeFormat), string(players), string(kingdom),
		t.Config.Seed, turns, result, string(data))
	if err != nil {
		return "", fmt.Errorf("insert game: %w", err)
	}
	return id, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Load returns a stored game. A unique ID prefix is accepted.
func (s *Store) Load(ctx context.Context, id string) (Record, error) {
	if id == "" {
		return Record{}, fmt.Errorf("%w: empty id", ErrNotFound)
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT id, created_at, players, kingdom, seed, turns, result, transcript
		 FROM games WHERE id = ? OR id LIKE ? ESCAPE '\' LIMIT 2`, id, likeEscaper.Replace(id)+"%")
	if err != nil {
		return Record{}, fmt.Errorf("query game: %w", err)
	}
	defer rows.Close()

	var recs []Record
	for rows.Next() {
		var rec Record
		var data string
		if err := scanSummary(rows, &rec.Summary, &data); err != nil {
			return Record{}, err
		}
		if err := json.Unmarshal([]byte(data), &rec.Transcript); err != nil {
			return Record{}, fmt.Errorf("decode transcript %s: %w", rec.ID, err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return Record{}, err
	}
	for _, rec := range recs {
		if rec.ID == id {
			return rec, nil
		}
	}
	switch len(recs) {
	case 0:
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	case 1:
		return recs[0], nil
	}
	return Record{}, fmt.Errorf("game ID prefix %q is ambiguous", id)
}

// List returns the most recent games first.
func (s *Store) List(ctx context.Context, limit int) ([]Summary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT id, created_at, players, kingdom, seed, turns, result, ''
		 FROM games ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var sum Summary
		var ignored string
		if err := scanSummary(rows, &sum, &ignored); err != nil {
			return nil, err
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

// Delete removes a stored game.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.sqlDB.ExecContext(ctx, `DELETE FROM games WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete game: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

func scanSummary(rows *sql.Rows, sum *Summary, transcript *string) error {
	var created, players, kingdom string
	if err := rows.Scan(&sum.ID, &created, &players, &kingdom, &sum.Seed, &sum.Turns, &sum.Result, transcript); err != nil {
		return fmt.Errorf("scan game: %w", err)
	}
	t, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return fmt.Errorf("parse created_at: %w", err)
	}
	sum.CreatedAt = t
	if err := json.Unmarshal([]byte(players), &sum.Players); err != nil {
		return fmt.Errorf("decode players: %w", err)
	}
	if err := json.Unmarshal([]byte(kingdom), &sum.Kingdom); err != nil {
		return fmt.Errorf("decode kingdom: %w", err)
	}
	return nil
}
