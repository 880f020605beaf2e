// Package tokens signs and verifies the service's bearer tokens. The codec is
// stateless: it holds immutable key material and never persists anything.
package tokens

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Verification failures are distinguishable so callers can react differently:
// an expired refresh token triggers revocation, a bad signature does not.
var (
	ErrSignatureInvalid = errors.New("token signature invalid")
	ErrTokenExpired     = errors.New("token expired")
	ErrClaimMismatch    = errors.New("token claim mismatch")
)

// Token type claim values.
const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

const signingAlg = "RS256"

// Claims is the payload of every token this service mints.
type Claims struct {
	Email     string `json:"email,omitempty"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

// Config carries the codec's immutable key material and claim policy.
type Config struct {
	KeyID      string
	SigningKey *rsa.PrivateKey
	VerifyKeys map[string]*rsa.PublicKey
	Issuer     string

	// Leeway widens expiry comparison during verification. Zero by default;
	// no skew window is assumed unless explicitly configured.
	Leeway time.Duration
}

type Codec struct {
	config Config
}

func NewCodec(cfg Config) (*Codec, error) {
	if cfg.SigningKey == nil {
		return nil, errors.New("codec requires a signing key")
	}
	if cfg.KeyID == "" {
		return nil, errors.New("codec requires a key id")
	}
	if len(cfg.VerifyKeys) == 0 {
		return nil, errors.New("codec requires at least one verification key")
	}
	if _, ok := cfg.VerifyKeys[cfg.KeyID]; !ok {
		return nil, errors.New("KeyID is not present in VerifyKeys")
	}
	if cfg.Issuer == "" {
		return nil, errors.New("codec requires an issuer")
	}
	if cfg.Leeway < 0 {
		return nil, errors.New("invalid leeway configuration")
	}
	return &Codec{config: cfg}, nil
}

// SignAccessToken mints a short-lived access token for the user.
func (c *Codec) SignAccessToken(userID string, email string, audience string, ttl time.Duration) (string, error) {
	return c.sign(TypeAccess, userID, email, audience, ttl)
}

// SignRefreshToken mints a refresh token. Persisting the returned value is
// the caller's responsibility.
func (c *Codec) SignRefreshToken(userID string, email string, audience string, ttl time.Duration) (string, error) {
	return c.sign(TypeRefresh, userID, email, audience, ttl)
}

func (c *Codec) sign(typ string, userID string, email string, audience string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Email:     email,
		TokenType: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			// Tokens double as storage keys, so two otherwise identical
			// tokens minted in the same second must still differ.
			ID:        uuid.NewString(),
			Subject:   userID,
			Issuer:    c.config.Issuer,
			Audience:  jwt.ClaimStrings{audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = c.config.KeyID

	signed, err := token.SignedString(c.config.SigningKey)
	if err != nil {
		return "", fmt.Errorf("couldn't sign %s token: %v", typ, err)
	}
	return signed, nil
}

// Verify checks a token's signature against the public key named by its kid
// header, then issuer, expiry, type, and (when non-empty) audience. Returns
// ErrTokenExpired, ErrClaimMismatch, or ErrSignatureInvalid.
func (c *Codec) Verify(tokenStr string, typ string, audience string) (*Claims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{signingAlg}),
		jwt.WithIssuer(c.config.Issuer),
		jwt.WithExpirationRequired(),
	}
	if audience != "" {
		options = append(options, jwt.WithAudience(audience))
	}
	if c.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(c.config.Leeway))
	}

	parser := jwt.NewParser(options...)
	token, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("missing kid")
		}
		key, ok := c.config.VerifyKeys[kid]
		if !ok {
			return nil, fmt.Errorf("unknown kid '%s'", kid)
		}
		return key, nil
	})
	if err != nil {
		return nil, classifyParseError(err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%w: unexpected claims format", ErrSignatureInvalid)
	}
	if claims.TokenType != typ {
		return nil, fmt.Errorf("%w: expected '%s' token, found '%s'", ErrClaimMismatch, typ, claims.TokenType)
	}

	return claims, nil
}

func classifyParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", ErrTokenExpired, err)
	case errors.Is(err, jwt.ErrTokenInvalidIssuer),
		errors.Is(err, jwt.ErrTokenInvalidAudience):
		return fmt.Errorf("%w: %v", ErrClaimMismatch, err)
	default:
		return fmt.Errorf("%w: %v", ErrSignatureInvalid, err)
	}
}
