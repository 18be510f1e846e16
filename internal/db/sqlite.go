// Package db opens the SQLite store and applies its migrations.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"time"

	_ "github.com/mattn/go-sqlite3" // registers the "sqlite3" driver
)

// Mode selects pool sizing and locking for a connection pool.
type Mode string

// Pool modes.
const (
	// ModeWrite is a single-connection pool taking the write lock at BEGIN,
	// so writers queue instead of failing with SQLITE_BUSY mid-transaction.
	ModeWrite Mode = "write"
	// ModeRead is a multi-connection pool for concurrent readers.
	ModeRead Mode = "read"
)

const (
	busyTimeoutMs      = "5000"
	defaultReadMaxOpen = 4
	pingTimeout        = 5 * time.Second
)

// Open opens a pool on the SQLite file at path. Both modes use WAL
// journaling, a 5s busy timeout, synchronous=NORMAL and foreign keys.
// maxOpen applies to ModeRead only; 0 means 4.
func Open(path string, mode Mode, maxOpen int) (*sql.DB, error) {
	if mode != ModeRead && mode != ModeWrite {
		return nil, fmt.Errorf("invalid SQLite mode %q: must be %q or %q", mode, ModeRead, ModeWrite)
	}

	db, err := sql.Open("sqlite3", buildDSN(path, mode))
	if err != nil {
		return nil, fmt.Errorf("open sqlite (%s): %w", mode, err)
	}

	if mode == ModeWrite {
		maxOpen = 1
	} else if maxOpen <= 0 {
		maxOpen = defaultReadMaxOpen
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxOpen)
	db.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite (%s): %w", mode, err)
	}
	return db, nil
}

// Pair is a write pool and a read pool over the same file.
type Pair struct {
	Write *sql.DB
	Read  *sql.DB
}

// OpenPair opens the write pool first so the file and its WAL mode exist
// before readers attach.
func OpenPair(path string, readMaxOpen int) (*Pair, error) {
	w, err := Open(path, ModeWrite, 0)
	if err != nil {
		return nil, err
	}
	r, err := Open(path, ModeRead, readMaxOpen)
	if err != nil {
		_ = w.Close()
		return nil, err
	}
	return &Pair{Write: w, Read: r}, nil
}

// Close closes both pools.
func (p *Pair) Close() error {
	return errors.Join(p.Read.Close(), p.Write.Close())
}

func buildDSN(path string, mode Mode) string {
	params := url.Values{}
	params.Set("_journal_mode", "WAL")
	params.Set("_busy_timeout", busyTimeoutMs)
	params.Set("_synchronous", "NORMAL")
	params.Set("_foreign_keys", "on")
	if mode == ModeWrite {
		params.Set("_txlock", "immediate")
	}
	return path + "?" + params.Encode()
}
