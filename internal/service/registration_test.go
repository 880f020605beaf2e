package service_test

import (
	"errors"
	"testing"

	"github.com/mediclogger/auth-service/internal/service"
	"github.com/mediclogger/auth-service/internal/testutil"
	"golang.org/x/crypto/bcrypt"
)

func TestRegister_CreatesUser(t *testing.T) {
	t.Parallel()
	env := testutil.SetupTestEnv(t)

	user, err := env.Service.Register("new@example.org", "pw123")
	if err != nil {
		t.Fatalf("expected registration to succeed, got %v", err)
	}
	if user.ID == "" {
		t.Error("expected a generated user id")
	}
	if user.Email != "new@example.org" {
		t.Errorf("expected email 'new@example.org', got '%s'", user.Email)
	}

	// the password is stored hashed, never in the clear
	if string(user.PasswordHash) == "pw123" {
		t.Fatal("password must not be stored in plaintext")
	}
	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte("pw123")); err != nil {
		t.Errorf("stored hash should match the password: %v", err)
	}

	// the new account can log in
	if _, err := env.Service.Login("new@example.org", "pw123", testutil.TestClient); err != nil {
		t.Errorf("expected registered user to log in, got %v", err)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	t.Parallel()
	env := testutil.SetupTestEnv(t)

	if _, err := env.Service.Register("dupe@example.org", "pw123"); err != nil {
		t.Fatalf("first registration failed: %v", err)
	}

	_, err := env.Service.Register("dupe@example.org", "other")
	if !errors.Is(err, service.ErrEmailExists) {
		t.Errorf("expected ErrEmailExists, got %v", err)
	}
}
