// Package keystore owns the service signing key pair. It loads persisted key
// material on boot, or generates and persists a fresh RSA-2048 pair on first
// run. The public half is published as a JWKS document; the private half never
// leaves this package.
package keystore

import (
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"
)

var (
	// ErrKeyInit marks unrecoverable key material state, like a published
	// JWKS with no matching private key. Regenerating here would silently
	// invalidate every outstanding token, so boot must abort instead.
	ErrKeyInit = errors.New("key initialization failed")

	// ErrNotInitialized marks accessor use before Load.
	ErrNotInitialized = errors.New("keystore not initialized")
)

const jwksFileName = "jwks.json"

// Store holds the single active signing key pair. Immutable after Load;
// reads need no locking.
type Store struct {
	dir  string
	kid  string
	key  *rsa.PrivateKey
	jwks []byte
}

// Load reads key material from dir, generating and persisting a new pair if
// none exists yet. A jwks.json without its private counterpart is fatal.
func Load(dir string) (*Store, error) {
	jwksPath := filepath.Join(dir, jwksFileName)

	if _, err := os.Stat(jwksPath); err == nil {
		return loadExisting(dir, jwksPath)
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: couldn't stat %s: %v", ErrKeyInit, jwksPath, err)
	}

	return generate(dir, jwksPath)
}

func loadExisting(dir string, jwksPath string) (*Store, error) {
	jwksData, err := os.ReadFile(jwksPath)
	if err != nil {
		return nil, fmt.Errorf("%w: couldn't read %s: %v", ErrKeyInit, jwksPath, err)
	}

	kid, err := keyIDFromJWKS(jwksData)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid %s: %v", ErrKeyInit, jwksFileName, err)
	}

	privPath := filepath.Join(dir, privateFileName(kid))
	privData, err := os.ReadFile(privPath)
	if err != nil {
		// Public material without its private counterpart means the key
		// state is corrupt. Never regenerate over it.
		return nil, fmt.Errorf("%w: missing private key for kid '%s': %v", ErrKeyInit, kid, err)
	}

	key, err := parsePrivateJWK(privData)
	if err != nil {
		return nil, fmt.Errorf("%w: couldn't parse private key for kid '%s': %v", ErrKeyInit, kid, err)
	}

	log.Printf("loaded signing key '%s' from %s", kid, dir)
	return &Store{dir: dir, kid: kid, key: key, jwks: jwksData}, nil
}

func generate(dir string, jwksPath string) (*Store, error) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, fmt.Errorf("%w: couldn't generate keypair: %v", ErrKeyInit, err)
	}
	kid := fmt.Sprintf("k-%d", time.Now().UnixMilli())

	jwksData, err := marshalJWKS(kid, &key.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("%w: couldn't marshal jwks: %v", ErrKeyInit, err)
	}
	privData, err := marshalPrivateJWK(kid, key)
	if err != nil {
		return nil, fmt.Errorf("%w: couldn't marshal private key: %v", ErrKeyInit, err)
	}

	// Private key first: a crash between the two writes must not leave a
	// published JWKS pointing at a key that was never persisted.
	privPath := filepath.Join(dir, privateFileName(kid))
	if err := atomicWriteFile(privPath, privData, 0o600); err != nil {
		return nil, fmt.Errorf("%w: couldn't persist private key: %v", ErrKeyInit, err)
	}
	if err := atomicWriteFile(jwksPath, jwksData, 0o644); err != nil {
		return nil, fmt.Errorf("%w: couldn't persist jwks: %v", ErrKeyInit, err)
	}

	log.Printf("generated new signing key '%s' in %s", kid, dir)
	return &Store{dir: dir, kid: kid, key: key, jwks: jwksData}, nil
}

func privateFileName(kid string) string {
	return fmt.Sprintf("%s.private.json", kid)
}

// KeyID returns the identifier embedded in every token header.
func (s *Store) KeyID() (string, error) {
	if s == nil || s.key == nil {
		return "", ErrNotInitialized
	}
	return s.kid, nil
}

// SigningKey returns the private signing key.
func (s *Store) SigningKey() (*rsa.PrivateKey, error) {
	if s == nil || s.key == nil {
		return nil, ErrNotInitialized
	}
	return s.key, nil
}

// PublicKeys returns the verification keys by kid.
func (s *Store) PublicKeys() (map[string]*rsa.PublicKey, error) {
	if s == nil || s.key == nil {
		return nil, ErrNotInitialized
	}
	return map[string]*rsa.PublicKey{s.kid: &s.key.PublicKey}, nil
}

// JWKS returns the published public key set document, safe to expose.
func (s *Store) JWKS() ([]byte, error) {
	if s == nil || s.key == nil {
		return nil, ErrNotInitialized
	}
	return s.jwks, nil
}

// atomicWriteFile writes data to a temp file in the target directory and
// renames it into place, so a crash can't leave a half-written key behind.
func atomicWriteFile(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("fsync temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp: %w", err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("chmod temp: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
