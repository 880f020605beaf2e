package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// User is a stored account record. The service treats it as an opaque
// lookup target; only registration and login read it.
type User struct {
	ID           string
	Email        string
	PasswordHash []byte
	CreatedAt    time.Time
}

func (s *SQLiteStore) InsertUser(
	user *User,
) error {
	_, err := s.db.Exec(`
		INSERT INTO users (id, email, password_hash, created_at)
		VALUES (?1, ?2, ?3, ?4);`,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.CreatedAt.Unix(),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("%w: %s", ErrEmailTaken, user.Email)
		}
		return fmt.Errorf("couldn't insert into users: %v", err)
	}
	return nil
}

func (s *SQLiteStore) GetUserByEmail(
	email string,
) (
	*User,
	error,
) {
	row := s.db.QueryRow(`
		SELECT id, email, password_hash, created_at
		FROM users
		WHERE email=?1;`,
		email,
	)
	return scanUser(row)
}

func (s *SQLiteStore) GetUserByID(
	id string,
) (
	*User,
	error,
) {
	row := s.db.QueryRow(`
		SELECT id, email, password_hash, created_at
		FROM users
		WHERE id=?1;`,
		id,
	)
	return scanUser(row)
}

func scanUser(row *sql.Row) (*User, error) {
	var user User
	var createdAt int64
	err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("couldn't scan user: %v", err)
	}
	user.CreatedAt = time.Unix(createdAt, 0)
	return &user, nil
}
