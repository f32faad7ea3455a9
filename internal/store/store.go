// Package store keeps sheetprompt's state and run history in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // sqlite driver
)

// Errors.
var (
	ErrNotFound    = errors.New("key not found")
	ErrNoMatches   = errors.New("no runs matched the given input")
	ErrManyMatches = errors.New("multiple runs matched the input")
)

const schema = `
	create table if not exists state(
		key text not null primary key,
		value text not null,
		updated_at integer not null
	);
	create table if not exists runs(
		id text not null primary key check(id <> ''),
		title text not null check(title <> ''),
		api text not null default '',
		model text not null default '',
		row_count integer not null default 0,
		progress text not null default '',
		status text not null default '',
		created_at integer not null
	);
	create index if not exists idx_runs_created_at on runs(created_at);
`

// DB is the sheetprompt database.
type DB struct {
	db *sqlx.DB
}

// Open opens (and migrates) the database at the given path. Use ":memory:"
// for a throwaway database.
func Open(path string) (*DB, error) {
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("could not create db: %w", err)
	}
	// one connection, so ":memory:" is the same database for every query.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("could not ping db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("could not migrate db: %w", err)
	}
	return &DB{db}, nil
}

// Close closes the database.
func (d *DB) Close() error {
	return d.db.Close() //nolint:wrapcheck
}

// Get decodes the value stored under key into dst. It returns [ErrNotFound]
// when nothing was stored yet.
func (d *DB) Get(ctx context.Context, key string, dst any) error {
	var value string
	if err := d.db.GetContext(ctx, &value, `select value from state where key = ?`, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("could not read %q: %w", key, err)
	}
	if err := json.Unmarshal([]byte(value), dst); err != nil {
		return fmt.Errorf("could not decode %q: %w", key, err)
	}
	return nil
}

// Set stores value under key, replacing what was there.
func (d *DB) Set(ctx context.Context, key string, value any) error {
	bts, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("could not encode %q: %w", key, err)
	}
	if _, err := d.db.ExecContext(ctx, `
		insert into state (key, value, updated_at)
		values (?, ?, ?)
		on conflict(key) do update
		set value = excluded.value, updated_at = excluded.updated_at
	`, key, string(bts), time.Now().UnixNano()); err != nil {
		return fmt.Errorf("could not save %q: %w", key, err)
	}
	return nil
}

// Keys lists the stored keys.
func (d *DB) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	if err := d.db.SelectContext(ctx, &keys, `select key from state order by key`); err != nil {
		return nil, fmt.Errorf("could not list keys: %w", err)
	}
	return keys, nil
}
