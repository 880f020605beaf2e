package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/mediclogger/auth-service/internal/database"
	"github.com/mediclogger/auth-service/internal/tokens"
)

// Refresh rotates a refresh token: the old token is atomically revoked and a
// replacement pair is issued for the same user and audience. Every failure
// maps to ErrInvalidRefreshToken; the caller must force a re-login rather
// than retry, since a lost rotation is not safely repeatable.
func (s *Service) Refresh(
	oldToken string,
) (
	*Credentials,
	error,
) {
	claims, err := s.codec.Verify(oldToken, tokens.TypeRefresh, "")
	if err != nil {
		if errors.Is(err, tokens.ErrTokenExpired) {
			// Expired on presentation: flag the stored record too, so
			// the expiry shows up as a revocation in the audit trail.
			_ = s.refresh.RevokeRefreshToken(oldToken)
		}
		return nil, fmt.Errorf("%w: couldn't verify refresh token: %v", ErrInvalidRefreshToken, err)
	}

	user, err := s.users.GetUserByID(claims.Subject)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return nil, fmt.Errorf("%w: user no longer exists", ErrInvalidRefreshToken)
		}
		return nil, fmt.Errorf("%w: failed to look up user: %v", ErrInternal, err)
	}

	audience := ""
	if len(claims.Audience) > 0 {
		audience = claims.Audience[0]
	}

	newToken, err := s.codec.SignRefreshToken(user.ID, user.Email, audience, s.refreshTTL)
	if err != nil {
		return nil, fmt.Errorf("%w: couldn't sign refresh token: %v", ErrInternal, err)
	}

	now := time.Now()
	err = s.refresh.RotateRefreshToken(oldToken, &database.RefreshRecord{
		Token:     newToken,
		UserID:    user.ID,
		ExpiresAt: now.Add(s.refreshTTL),
		CreatedAt: now,
	})
	if err != nil {
		if errors.Is(err, database.ErrTokenNotFound) ||
			errors.Is(err, database.ErrTokenRevoked) ||
			errors.Is(err, database.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRefreshToken, err)
		}
		return nil, fmt.Errorf("%w: rotation failed: %v", ErrInternal, err)
	}

	accessToken, err := s.codec.SignAccessToken(user.ID, user.Email, audience, s.accessTTL)
	if err != nil {
		return nil, fmt.Errorf("%w: couldn't sign access token: %v", ErrInternal, err)
	}

	return &Credentials{
		AccessToken:  accessToken,
		RefreshToken: newToken,
		ExpiresIn:    int(s.accessTTL.Seconds()),
	}, nil
}

// Logout revokes a single refresh token, or with all=true every token
// belonging to the user identified by a currently valid access token.
// Single revocation is idempotent; revoking an unknown token is a no-op.
func (s *Service) Logout(
	refreshToken string,
	all bool,
	accessToken string,
) error {
	if !all {
		if err := s.refresh.RevokeRefreshToken(refreshToken); err != nil {
			return fmt.Errorf("%w: failed to revoke refresh token: %v", ErrInternal, err)
		}
		return nil
	}

	claims, err := s.codec.Verify(accessToken, tokens.TypeAccess, "")
	if err != nil {
		return fmt.Errorf("%w: couldn't verify access token: %v", ErrUnauthorized, err)
	}

	if _, err := s.refresh.RevokeAllForUser(claims.Subject); err != nil {
		return fmt.Errorf("%w: failed to revoke refresh tokens: %v", ErrInternal, err)
	}
	return nil
}

// Validate checks an access token and returns its claims. Pure verification:
// no store access, no side effects. The token's audience must belong to a
// registered client.
func (s *Service) Validate(
	accessToken string,
) (
	*tokens.Claims,
	error,
) {
	claims, err := s.codec.Verify(accessToken, tokens.TypeAccess, "")
	if err != nil {
		return nil, err
	}

	for _, audience := range claims.Audience {
		if s.catalog.HasAudience(audience) {
			return claims, nil
		}
	}
	return nil, fmt.Errorf("%w: audience not registered", tokens.ErrClaimMismatch)
}

// Me resolves the user behind a valid access token.
func (s *Service) Me(
	accessToken string,
) (
	*database.User,
	error,
) {
	claims, err := s.Validate(accessToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	user, err := s.users.GetUserByID(claims.Subject)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return nil, fmt.Errorf("%w: user no longer exists", ErrUnauthorized)
		}
		return nil, fmt.Errorf("%w: failed to look up user: %v", ErrInternal, err)
	}
	return user, nil
}
