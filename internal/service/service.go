// Package service implements the token lifecycle orchestration: issuing
// credentials at login, rotating refresh tokens, revocation, and access
// token validation. It depends on storage interfaces and delegates to them
// for persistence.
package service

import (
	"errors"
	"time"

	"github.com/mediclogger/auth-service/internal/clients"
	"github.com/mediclogger/auth-service/internal/database"
	"github.com/mediclogger/auth-service/internal/tokens"
)

// The externally visible error taxonomy. Storage and crypto failures are
// classified into these before they leave the package; the detail travels in
// the wrapped error text for logs, never to clients.
var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrEmailExists         = errors.New("email already registered")
	ErrClientNotFound      = errors.New("client not found")
	ErrInternal            = errors.New("internal error")
)

// UserStore handles persistence of user accounts.
type UserStore interface {
	InsertUser(user *database.User) error
	GetUserByEmail(email string) (*database.User, error)
	GetUserByID(id string) (*database.User, error)
}

// RefreshStore handles persistence of refresh token records.
type RefreshStore interface {
	InsertRefreshToken(rec *database.RefreshRecord) error
	RotateRefreshToken(oldToken string, next *database.RefreshRecord) error
	RevokeRefreshToken(token string) error
	RevokeAllForUser(userID string) (int64, error)
	IsRefreshTokenActive(token string) (bool, error)
	PurgeExpiredRefreshTokens(retention time.Duration) (int64, error)
}

// Service coordinates the codec, the refresh store, and the client catalog
// into the login / refresh / logout / validate operations.
type Service struct {
	users      UserStore
	refresh    RefreshStore
	catalog    *clients.Catalog
	codec      *tokens.Codec
	jwks       []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func New(
	users UserStore,
	refresh RefreshStore,
	catalog *clients.Catalog,
	codec *tokens.Codec,
	jwks []byte,
	accessTTL time.Duration,
	refreshTTL time.Duration,
) *Service {
	return &Service{
		users:      users,
		refresh:    refresh,
		catalog:    catalog,
		codec:      codec,
		jwks:       jwks,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// Credentials is what a successful login or refresh hands back to the
// HTTP layer.
type Credentials struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int
}

// PublicKeySet returns the published JWKS document. It contains only public
// key material and is safe to serve to external verifiers.
func (s *Service) PublicKeySet() []byte {
	return s.jwks
}

// PurgeExpired reclaims refresh token records whose expiry is older than the
// retention window. Records inside the window are kept, revoked or not, so
// replay of recently rotated tokens stays detectable.
func (s *Service) PurgeExpired(retention time.Duration) (int64, error) {
	return s.refresh.PurgeExpiredRefreshTokens(retention)
}
