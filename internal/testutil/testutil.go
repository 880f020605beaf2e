// Package testutil provides test environment setup and utilities for
// internal package tests.
package testutil

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mediclogger/auth-service/internal/api"
	"github.com/mediclogger/auth-service/internal/clients"
	"github.com/mediclogger/auth-service/internal/database"
	"github.com/mediclogger/auth-service/internal/keystore"
	"github.com/mediclogger/auth-service/internal/service"
	"github.com/mediclogger/auth-service/internal/tokens"
	"golang.org/x/crypto/bcrypt"
)

const (
	TestIssuer   = "auth-service"
	TestClient   = "medic-logger"
	TestAudience = "medic-logger"

	AccessTTL  = 900 * time.Second
	RefreshTTL = 604800 * time.Second
)

var (
	sharedKeys     *keystore.Store
	sharedKeysOnce sync.Once
)

// getSharedKeys returns a cached signing keystore for tests. Generating an
// RSA keypair per test would dominate the suite's runtime.
func getSharedKeys() *keystore.Store {
	sharedKeysOnce.Do(func() {
		dir, err := os.MkdirTemp("", "authkeys-")
		if err != nil {
			panic("failed to create shared keys dir: " + err.Error())
		}
		keys, err := keystore.Load(dir)
		if err != nil {
			panic("failed to generate shared keys: " + err.Error())
		}
		sharedKeys = keys
	})
	return sharedKeys
}

// TestEnv provides all dependencies needed for testing
type TestEnv struct {
	DB      *database.SQLiteStore
	Keys    *keystore.Store
	Codec   *tokens.Codec
	Catalog *clients.Catalog
	Service *service.Service
	Router  http.Handler
}

// SetupTestEnv creates an isolated test environment backed by a temp-file
// SQLite database and the shared signing keystore.
func SetupTestEnv(
	t *testing.T,
) *TestEnv {
	t.Helper()

	db := database.NewSQLiteStore(filepath.Join(t.TempDir(), "auth.db"))
	t.Cleanup(func() {
		_ = db.Close()
	})

	keys := getSharedKeys()
	codec := newTestCodec(t, keys)
	catalog := newTestCatalog(t)

	jwks, err := keys.JWKS()
	if err != nil {
		t.Fatalf("failed to read shared jwks: %v", err)
	}

	svc := service.New(db, db, catalog, codec, jwks, AccessTTL, RefreshTTL)

	return &TestEnv{
		DB:      db,
		Keys:    keys,
		Codec:   codec,
		Catalog: catalog,
		Service: svc,
		Router:  api.New(svc, TestClient).Router(),
	}
}

func newTestCodec(t *testing.T, keys *keystore.Store) *tokens.Codec {
	t.Helper()

	kid, err := keys.KeyID()
	if err != nil {
		t.Fatalf("failed to read shared kid: %v", err)
	}
	signingKey, err := keys.SigningKey()
	if err != nil {
		t.Fatalf("failed to read shared signing key: %v", err)
	}
	verifyKeys, err := keys.PublicKeys()
	if err != nil {
		t.Fatalf("failed to read shared public keys: %v", err)
	}

	codec, err := tokens.NewCodec(tokens.Config{
		KeyID:      kid,
		SigningKey: signingKey,
		VerifyKeys: verifyKeys,
		Issuer:     TestIssuer,
	})
	if err != nil {
		t.Fatalf("failed to build test codec: %v", err)
	}
	return codec
}

// newTestCatalog writes a single-client catalog dir and loads it.
func newTestCatalog(t *testing.T) *clients.Catalog {
	t.Helper()

	dir := t.TempDir()
	def, _ := json.Marshal(clients.Client{
		Display:  "Medic Logger",
		Audience: TestAudience,
	})
	if err := os.WriteFile(filepath.Join(dir, TestClient), def, 0o644); err != nil {
		t.Fatalf("failed to write test client definition: %v", err)
	}

	catalog, err := clients.NewCatalog(dir)
	if err != nil {
		t.Fatalf("failed to load test catalog: %v", err)
	}
	return catalog
}

// RegisterTestUser inserts a user directly, hashing with bcrypt.MinCost to
// keep the suite fast. Returns the user id.
func (env *TestEnv) RegisterTestUser(
	t *testing.T,
	email string,
	password string,
) string {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash test password: %v", err)
	}

	user := &database.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	}
	if err := env.DB.InsertUser(user); err != nil {
		t.Fatalf("failed to insert test user: %v", err)
	}
	return user.ID
}

// MintRefreshToken signs a refresh token without storing it.
func (env *TestEnv) MintRefreshToken(
	t *testing.T,
	userID string,
	email string,
	ttl time.Duration,
) string {
	t.Helper()

	token, err := env.Codec.SignRefreshToken(userID, email, TestAudience, ttl)
	if err != nil {
		t.Fatalf("failed to sign test refresh token: %v", err)
	}
	return token
}

// StoreRefreshToken signs a refresh token and persists its record.
func (env *TestEnv) StoreRefreshToken(
	t *testing.T,
	userID string,
	email string,
	ttl time.Duration,
) string {
	t.Helper()

	token := env.MintRefreshToken(t, userID, email, ttl)
	now := time.Now()
	err := env.DB.InsertRefreshToken(&database.RefreshRecord{
		Token:     token,
		UserID:    userID,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	})
	if err != nil {
		t.Fatalf("failed to store test refresh token: %v", err)
	}
	return token
}
