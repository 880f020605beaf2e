package main

import (
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/mediclogger/auth-service/internal/api"
	"github.com/mediclogger/auth-service/internal/clients"
	"github.com/mediclogger/auth-service/internal/config"
	"github.com/mediclogger/auth-service/internal/database"
	"github.com/mediclogger/auth-service/internal/keystore"
	"github.com/mediclogger/auth-service/internal/service"
	"github.com/mediclogger/auth-service/internal/tokens"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v\n", err)
	}

	keys, err := keystore.Load(cfg.KeysDir)
	if err != nil {
		log.Fatalf("failed to initialize keys: %v\n", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		log.Fatalf("failed to create data directory: %v\n", err)
	}
	db := database.NewSQLiteStore(cfg.DBPath)
	defer db.Close()

	catalog, err := clients.NewCatalog(cfg.ClientsDir)
	if err != nil {
		log.Fatalf("failed to load client catalog: %v\n", err)
	}
	if err := catalog.Watch(); err != nil {
		log.Fatalf("failed to start client catalog watcher: %v\n", err)
	}

	codec, err := newCodec(keys, cfg.Issuer)
	if err != nil {
		log.Fatalf("failed to build token codec: %v\n", err)
	}

	jwks, err := keys.JWKS()
	if err != nil {
		log.Fatalf("failed to read jwks: %v\n", err)
	}

	svc := service.New(db, db, catalog, codec, jwks, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	go runJanitor(svc, cfg.PurgeInterval, cfg.PurgeRetention)

	router := api.New(svc, cfg.DefaultClient).Router()
	log.Printf("auth service listening on %s", cfg.Addr)
	log.Fatal(http.ListenAndServe(cfg.Addr, router))
}

func newCodec(keys *keystore.Store, issuer string) (*tokens.Codec, error) {
	kid, err := keys.KeyID()
	if err != nil {
		return nil, err
	}
	signingKey, err := keys.SigningKey()
	if err != nil {
		return nil, err
	}
	verifyKeys, err := keys.PublicKeys()
	if err != nil {
		return nil, err
	}
	return tokens.NewCodec(tokens.Config{
		KeyID:      kid,
		SigningKey: signingKey,
		VerifyKeys: verifyKeys,
		Issuer:     issuer,
	})
}

// runJanitor periodically reclaims refresh token records that expired longer
// than the retention window ago.
func runJanitor(svc *service.Service, interval time.Duration, retention time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		count, err := svc.PurgeExpired(retention)
		if err != nil {
			log.Printf("janitor: failed to purge refresh tokens: %v\n", err)
			continue
		}
		if count > 0 {
			log.Printf("janitor: purged %d expired refresh tokens", count)
		}
	}
}
