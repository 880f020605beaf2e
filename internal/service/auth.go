package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/mediclogger/auth-service/internal/database"
	"golang.org/x/crypto/bcrypt"
)

// Login verifies credentials and issues a fresh access/refresh token pair
// for the named client. Unknown users and wrong passwords are deliberately
// the same error, so callers can't enumerate accounts.
func (s *Service) Login(
	email string,
	password string,
	clientName string,
) (
	*Credentials,
	error,
) {
	client, err := s.catalog.Get(clientName)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrClientNotFound, clientName)
	}

	user, err := s.authenticate(email, password)
	if err != nil {
		return nil, err
	}

	accessToken, err := s.codec.SignAccessToken(user.ID, user.Email, client.Audience, s.accessTTL)
	if err != nil {
		return nil, fmt.Errorf("%w: couldn't sign access token: %v", ErrInternal, err)
	}

	refreshToken, err := s.codec.SignRefreshToken(user.ID, user.Email, client.Audience, s.refreshTTL)
	if err != nil {
		return nil, fmt.Errorf("%w: couldn't sign refresh token: %v", ErrInternal, err)
	}

	now := time.Now()
	err = s.refresh.InsertRefreshToken(&database.RefreshRecord{
		Token:     refreshToken,
		UserID:    user.ID,
		ExpiresAt: now.Add(s.refreshTTL),
		CreatedAt: now,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to store refresh token: %v", ErrInternal, err)
	}

	return &Credentials{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(s.accessTTL.Seconds()),
	}, nil
}

func (s *Service) authenticate(
	email string,
	password string,
) (
	*database.User,
	error,
) {
	user, err := s.users.GetUserByEmail(email)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return nil, fmt.Errorf("%w: unknown email", ErrInvalidCredentials)
		}
		return nil, fmt.Errorf("%w: failed to look up user: %v", ErrInternal, err)
	}

	err = bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password))
	if err != nil {
		return nil, fmt.Errorf("%w: password mismatch", ErrInvalidCredentials)
	}

	return user, nil
}
