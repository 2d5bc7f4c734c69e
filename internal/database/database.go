// Package database keeps small per-user preferences in SQLite: the chosen
// interface language and the AI-request rate-limit window. The nutrition
// data itself lives in the JSON stores under internal/storage.
package database

import (
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

type DB struct {
	conn           *sql.DB
	limitPerMinute int
}

func New(dbPath string, limitPerMinute int) (*DB, error) {
	conn, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db := &DB{conn: conn, limitPerMinute: limitPerMinute}
	if err := db.applySchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return db, nil
}

func (db *DB) applySchema() error {
	_, err := db.conn.Exec(schemaSQL)
	return err
}

func (db *DB) Close() error {
	return db.conn.Close()
}
