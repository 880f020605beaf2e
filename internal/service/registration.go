package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mediclogger/auth-service/internal/database"
	"golang.org/x/crypto/bcrypt"
)

// Register creates a new user account. Intended for dev and demo use; real
// deployments seed accounts out of band.
func (s *Service) Register(
	email string,
	password string,
) (
	*database.User,
	error,
) {
	hashPass, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to hash password: %v", ErrInternal, err)
	}

	user := &database.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hashPass,
		CreatedAt:    time.Now(),
	}

	err = s.users.InsertUser(user)
	if err != nil {
		if errors.Is(err, database.ErrEmailTaken) {
			return nil, fmt.Errorf("%w: %s", ErrEmailExists, email)
		}
		return nil, fmt.Errorf("%w: failed to insert user: %v", ErrInternal, err)
	}

	return user, nil
}
