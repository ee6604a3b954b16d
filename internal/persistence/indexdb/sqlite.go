// Package indexdb is an optional sqlite read-model over the chronicle:
// sessions, turns and decisions, queryable after the fact. It is an
// index, not the source of truth; game state never loads from it.
package indexdb

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	_ "modernc.org/sqlite"

	"sovereign.ai/internal/sim/game"
)

type SQLiteIndex struct {
	db *sql.DB

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	closed  atomic.Bool
	dropped atomic.Uint64
}

type reqKind int

const (
	reqSession reqKind = iota + 1
	reqTurn
	reqDecision
)

type req struct {
	kind reqKind

	session  sessionRow
	turn     game.TurnLogEntry
	decision game.DecisionLogEntry
}

type sessionRow struct {
	ID        string
	CreatedAt string
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db: db,
		ch: make(chan req, 8192),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	// WAL is much faster for append-style workloads.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			session_id TEXT PRIMARY KEY,
			created_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS turns (
			session_id TEXT NOT NULL,
			turn INTEGER NOT NULL,
			event_id TEXT NOT NULL,
			theme TEXT NOT NULL,
			stats_json TEXT NOT NULL,
			game_over INTEGER NOT NULL DEFAULT 0,
			cause TEXT,
			at TEXT NOT NULL,
			PRIMARY KEY (session_id, turn)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_turns_theme ON turns(theme);`,
		`CREATE TABLE IF NOT EXISTS decisions (
			session_id TEXT NOT NULL,
			turn INTEGER NOT NULL,
			event_id TEXT NOT NULL,
			option_id TEXT NOT NULL,
			tags_json TEXT,
			at TEXT NOT NULL,
			PRIMARY KEY (session_id, turn)
		);`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// enqueue never blocks the sim; on a full queue the entry is dropped
// and counted.
func (s *SQLiteIndex) enqueue(r req) {
	if s.closed.Load() {
		return
	}
	select {
	case s.ch <- r:
	default:
		s.dropped.Add(1)
	}
}

func (s *SQLiteIndex) RecordSession(id, createdAt string) {
	s.enqueue(req{kind: reqSession, session: sessionRow{ID: id, CreatedAt: createdAt}})
}

func (s *SQLiteIndex) WriteTurn(e game.TurnLogEntry) error {
	s.enqueue(req{kind: reqTurn, turn: e})
	return nil
}

func (s *SQLiteIndex) WriteDecision(e game.DecisionLogEntry) error {
	s.enqueue(req{kind: reqDecision, decision: e})
	return nil
}

// Dropped reports entries discarded due to a full write queue.
func (s *SQLiteIndex) Dropped() uint64 { return s.dropped.Load() }

func (s *SQLiteIndex) Close() error {
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
	})
	s.wg.Wait()
	return s.db.Close()
}

func (s *SQLiteIndex) loop() {
	for r := range s.ch {
		switch r.kind {
		case reqSession:
			_, _ = s.db.Exec(
				`INSERT OR IGNORE INTO sessions(session_id, created_at) VALUES(?,?)`,
				r.session.ID, r.session.CreatedAt)
		case reqTurn:
			statsJSON, _ := json.Marshal(r.turn.Stats)
			_, _ = s.db.Exec(
				`INSERT OR REPLACE INTO turns(session_id, turn, event_id, theme, stats_json, game_over, cause, at)
				 VALUES(?,?,?,?,?,?,?,?)`,
				r.turn.SessionID, r.turn.Turn, r.turn.EventID, r.turn.Theme,
				string(statsJSON), boolToInt(r.turn.GameOver), r.turn.Cause, r.turn.At)
		case reqDecision:
			tagsJSON, _ := json.Marshal(r.decision.Tags)
			_, _ = s.db.Exec(
				`INSERT OR REPLACE INTO decisions(session_id, turn, event_id, option_id, tags_json, at)
				 VALUES(?,?,?,?,?,?)`,
				r.decision.SessionID, r.decision.Turn, r.decision.EventID,
				r.decision.OptionID, string(tagsJSON), r.decision.At)
		}
	}
}

// CountTurns returns the number of indexed turns for a session.
func (s *SQLiteIndex) CountTurns(sessionID string) (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM turns WHERE session_id=?`, sessionID).Scan(&n)
	return n, err
}

// CountDecisions returns the number of indexed decisions for a session.
func (s *SQLiteIndex) CountDecisions(sessionID string) (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM decisions WHERE session_id=?`, sessionID).Scan(&n)
	return n, err
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
