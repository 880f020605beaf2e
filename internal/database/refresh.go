package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// RefreshRecord is the durable state of one issued refresh token. Records
// are flagged on revocation, never deleted, so replay of a rotated-away
// token stays detectable until the janitor reclaims it long after expiry.
type RefreshRecord struct {
	Token     string
	UserID    string
	Revoked   bool
	ExpiresAt time.Time
	CreatedAt time.Time
}

func (s *SQLiteStore) InsertRefreshToken(
	rec *RefreshRecord,
) error {
	_, err := s.db.Exec(`
		INSERT INTO refresh_tokens (token, user_id, revoked, expires_at, created_at)
		VALUES (?1, ?2, 0, ?3, ?4);`,
		rec.Token,
		rec.UserID,
		rec.ExpiresAt.Unix(),
		rec.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("couldn't insert into refresh_tokens: %v", err)
	}
	return nil
}

func (s *SQLiteStore) GetRefreshToken(
	token string,
) (
	*RefreshRecord,
	error,
) {
	row := s.db.QueryRow(`
		SELECT token, user_id, revoked, expires_at, created_at
		FROM refresh_tokens
		WHERE token=?1;`,
		token,
	)

	var rec RefreshRecord
	var expiresAt, createdAt int64
	err := row.Scan(&rec.Token, &rec.UserID, &rec.Revoked, &expiresAt, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTokenNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("couldn't scan refresh token: %v", err)
	}
	rec.ExpiresAt = time.Unix(expiresAt, 0)
	rec.CreatedAt = time.Unix(createdAt, 0)
	return &rec, nil
}

// RotateRefreshToken revokes oldToken and persists next in its place. The
// revocation is a single conditional update, so when rotations race on the
// same token value exactly one caller wins; the rest see ErrTokenRevoked,
// ErrTokenExpired, or ErrTokenNotFound. A rotated-away token is permanently
// dead even if replayed before the winner receives its replacement.
func (s *SQLiteStore) RotateRefreshToken(
	oldToken string,
	next *RefreshRecord,
) error {
	result, err := s.db.Exec(`
		UPDATE refresh_tokens
		SET revoked = 1
		WHERE token=?1 AND revoked = 0 AND expires_at > ?2;`,
		oldToken,
		time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("couldn't revoke refresh token: %v", err)
	}
	if resultsEmpty(result) {
		return s.classifyRotateFailure(oldToken)
	}

	return s.InsertRefreshToken(next)
}

// classifyRotateFailure explains a lost conditional update. Records only
// move forward (revoked never clears), so the classification can't go stale
// between the update and this read.
func (s *SQLiteStore) classifyRotateFailure(token string) error {
	rec, err := s.GetRefreshToken(token)
	if err != nil {
		return err
	}
	if rec.Revoked {
		return ErrTokenRevoked
	}
	return ErrTokenExpired
}

// RevokeRefreshToken idempotently flags a single record revoked. Absent or
// already-revoked tokens are a no-op.
func (s *SQLiteStore) RevokeRefreshToken(
	token string,
) error {
	_, err := s.db.Exec(`
		UPDATE refresh_tokens
		SET revoked = 1
		WHERE token=?1;`,
		token,
	)
	if err != nil {
		return fmt.Errorf("couldn't revoke refresh token: %v", err)
	}
	return nil
}

// RevokeAllForUser flags every live record for the user ("log out
// everywhere") and reports how many were revoked.
func (s *SQLiteStore) RevokeAllForUser(
	userID string,
) (
	int64,
	error,
) {
	result, err := s.db.Exec(`
		UPDATE refresh_tokens
		SET revoked = 1
		WHERE user_id=?1 AND revoked = 0;`,
		userID,
	)
	if err != nil {
		return 0, fmt.Errorf("couldn't revoke refresh tokens for user: %v", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("couldn't count revoked tokens: %v", err)
	}
	return count, nil
}

func (s *SQLiteStore) IsRefreshTokenActive(
	token string,
) (
	bool,
	error,
) {
	rec, err := s.GetRefreshToken(token)
	if errors.Is(err, ErrTokenNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return !rec.Revoked && rec.ExpiresAt.After(time.Now()), nil
}

// PurgeExpiredRefreshTokens deletes records whose expiry is at least the
// retention window in the past. Anything newer is kept, revoked or not, so
// replay of a just-rotated token is still detected.
func (s *SQLiteStore) PurgeExpiredRefreshTokens(
	retention time.Duration,
) (
	int64,
	error,
) {
	cutoff := time.Now().Add(-retention)
	result, err := s.db.Exec(`
		DELETE FROM refresh_tokens
		WHERE expires_at < ?1;`,
		cutoff.Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("couldn't purge refresh tokens: %v", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("couldn't count purged tokens: %v", err)
	}
	return count, nil
}
