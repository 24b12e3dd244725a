// Package progress persists per-player game progress across sessions in a
// small SQLite database keyed by player name.
package progress

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"
)

// Document is everything a player keeps between sessions.
type Document struct {
	Inventory    map[string]int `json:"inventory"`
	Items        map[string]int `json:"items"`
	Achievements map[string]int `json:"achievements,omitempty"`
	Currency     float64        `json:"currency"`
	RaftLayout   string         `json:"raft_layout"`
	Deaths       int            `json:"deaths"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

type saveReq struct {
	name string
	doc  Document
}

// Store serializes writes through a single goroutine so room loops never
// block on disk.
type Store struct {
	db *sql.DB

	ch   chan saveReq
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool
}

func Open(path string) (*Store, error) {
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

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS progress (
		name TEXT PRIMARY KEY,
		doc_json TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);`); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &Store{
		db: db,
		ch: make(chan saveReq, 1024),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func (s *Store) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

// QueueSave is fire and forget; the newest write for a name wins. Saves are
// dropped if the writer falls behind.
func (s *Store) QueueSave(name string, doc Document) {
	if s == nil || s.closed.Load() || name == "" {
		return
	}
	select {
	case s.ch <- saveReq{name: name, doc: doc}:
	default:
	}
}

// Load returns the stored document for a player name, or nil when the player
// is new.
func (s *Store) Load(ctx context.Context, name string) (*Document, error) {
	if s == nil || name == "" {
		return nil, nil
	}
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT doc_json FROM progress WHERE name = ?`, name).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var doc Document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("corrupt progress for %q: %w", name, err)
	}
	return &doc, nil
}

func (s *Store) loop() {
	ctx := context.Background()
	upsert, _ := s.db.Prepare(`INSERT OR REPLACE INTO progress(name,doc_json,updated_at) VALUES(?,?,?)`)
	defer func() {
		if upsert != nil {
			_ = upsert.Close()
		}
	}()

	var (
		tx          *sql.Tx
		opCount     int
		lastCommit  = time.Now()
		commitEvery = 64
		commitWait  = time.Second
	)

	commit := func() {
		if tx == nil {
			return
		}
		_ = tx.Commit()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}

	for r := range s.ch {
		if tx == nil {
			txx, err := s.db.BeginTx(ctx, nil)
			if err != nil {
				time.Sleep(50 * time.Millisecond)
				continue
			}
			tx = txx
			opCount = 0
			lastCommit = time.Now()
		}
		b, err := json.Marshal(r.doc)
		if err != nil {
			continue
		}
		if upsert != nil {
			ts := r.doc.UpdatedAt
			if ts.IsZero() {
				ts = time.Now()
			}
			if _, err := tx.Stmt(upsert).Exec(r.name, string(b), ts.UTC().Format(time.RFC3339Nano)); err != nil {
				_ = tx.Rollback()
				tx = nil
				opCount = 0
				continue
			}
			opCount++
		}
		if opCount >= commitEvery || time.Since(lastCommit) >= commitWait {
			commit()
		}
	}
	commit()
}
