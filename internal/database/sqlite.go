// Package database provides SQLite persistence for user accounts and the
// refresh token lifecycle.
package database

import (
	"database/sql"
	"errors"
	"fmt"
	"log"

	_ "modernc.org/sqlite"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrEmailTaken    = errors.New("email already registered")
	ErrTokenNotFound = errors.New("refresh token not found")
	ErrTokenRevoked  = errors.New("refresh token revoked")
	ErrTokenExpired  = errors.New("refresh token expired")
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) *SQLiteStore {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		log.Fatalf("failed to connect to database: %v\n", err)
	}

	// SQLite allows one writer at a time; waiting out a held lock keeps
	// concurrent rotations from surfacing spurious SQLITE_BUSY errors.
	if _, err := db.Exec("PRAGMA busy_timeout = 5000;"); err != nil {
		log.Fatalf("failed to init database: couldn't set busy timeout: %v\n", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		log.Fatalf("failed to init database schema: couldn't enable foreign keys: %v\n", err)
	}

	if err := initSchema(db); err != nil {
		log.Fatalf("failed to init database: %v\n", err)
	}

	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func initSchema(db *sql.DB) error {
	if err := initTable(db, "users", `
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			email         TEXT UNIQUE NOT NULL,
			password_hash BLOB NOT NULL,
			created_at    INTEGER NOT NULL
		);`,
	); err != nil {
		return err
	}

	if err := initTable(db, "refresh_tokens", `
		CREATE TABLE IF NOT EXISTS refresh_tokens (
			token      TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL,
			revoked    INTEGER NOT NULL DEFAULT 0,
			expires_at INTEGER NOT NULL,
			created_at INTEGER NOT NULL,
			FOREIGN KEY (user_id) REFERENCES users (id)
		);`,
	); err != nil {
		return err
	}

	if _, err := db.Exec(`
		CREATE INDEX IF NOT EXISTS refresh_tokens_user
		ON refresh_tokens (user_id);`,
	); err != nil {
		return fmt.Errorf("failed to init refresh_tokens index: %v", err)
	}

	return nil
}

func initTable(
	db *sql.DB,
	name string,
	sql string,
) error {
	if _, err := db.Exec(sql); err != nil {
		return fmt.Errorf("failed to init '%s' table schema: %v", name, err)
	}
	return nil
}

func resultsEmpty(result sql.Result) bool {
	count, err := result.RowsAffected()
	if err != nil {
		return false
	}
	return count == 0
}
