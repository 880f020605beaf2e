package keystore

import (
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
)

// JWK serialization for RSA keys (RFC 7517/7518). The public form carries
// only the modulus and exponent; the private form adds the full CRT set.

type jwk struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	Alg string `json:"alg"`
	Use string `json:"use"`
	N   string `json:"n"`
	E   string `json:"e"`

	// private members, omitted from the published set
	D  string `json:"d,omitempty"`
	P  string `json:"p,omitempty"`
	Q  string `json:"q,omitempty"`
	DP string `json:"dp,omitempty"`
	DQ string `json:"dq,omitempty"`
	QI string `json:"qi,omitempty"`
}

type jwkSet struct {
	Keys []jwk `json:"keys"`
}

func marshalJWKS(kid string, pub *rsa.PublicKey) ([]byte, error) {
	set := jwkSet{Keys: []jwk{publicJWK(kid, pub)}}
	return json.MarshalIndent(&set, "", "  ")
}

func marshalPrivateJWK(kid string, key *rsa.PrivateKey) ([]byte, error) {
	if len(key.Primes) != 2 {
		return nil, fmt.Errorf("expected two prime factors, found %d", len(key.Primes))
	}
	key.Precompute()

	j := publicJWK(kid, &key.PublicKey)
	j.D = encodeBigInt(key.D)
	j.P = encodeBigInt(key.Primes[0])
	j.Q = encodeBigInt(key.Primes[1])
	j.DP = encodeBigInt(key.Precomputed.Dp)
	j.DQ = encodeBigInt(key.Precomputed.Dq)
	j.QI = encodeBigInt(key.Precomputed.Qinv)

	return json.MarshalIndent(&j, "", "  ")
}

func publicJWK(kid string, pub *rsa.PublicKey) jwk {
	return jwk{
		Kty: "RSA",
		Kid: kid,
		Alg: "RS256",
		Use: "sig",
		N:   encodeBigInt(pub.N),
		E:   encodeBigInt(big.NewInt(int64(pub.E))),
	}
}

func keyIDFromJWKS(data []byte) (string, error) {
	var set jwkSet
	if err := json.Unmarshal(data, &set); err != nil {
		return "", fmt.Errorf("not valid JSON: %v", err)
	}
	if len(set.Keys) == 0 {
		return "", fmt.Errorf("no keys in set")
	}
	kid := set.Keys[0].Kid
	if kid == "" {
		return "", fmt.Errorf("key missing kid")
	}
	return kid, nil
}

func parsePrivateJWK(data []byte) (*rsa.PrivateKey, error) {
	var j jwk
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("not valid JSON: %v", err)
	}
	if j.Kty != "RSA" {
		return nil, fmt.Errorf("unexpected key type: %s", j.Kty)
	}
	if j.D == "" || j.P == "" || j.Q == "" {
		return nil, fmt.Errorf("missing private key members")
	}

	n, err := decodeBigInt(j.N)
	if err != nil {
		return nil, fmt.Errorf("invalid modulus: %v", err)
	}
	e, err := decodeBigInt(j.E)
	if err != nil {
		return nil, fmt.Errorf("invalid exponent: %v", err)
	}
	d, err := decodeBigInt(j.D)
	if err != nil {
		return nil, fmt.Errorf("invalid private exponent: %v", err)
	}
	p, err := decodeBigInt(j.P)
	if err != nil {
		return nil, fmt.Errorf("invalid prime p: %v", err)
	}
	q, err := decodeBigInt(j.Q)
	if err != nil {
		return nil, fmt.Errorf("invalid prime q: %v", err)
	}

	key := &rsa.PrivateKey{
		PublicKey: rsa.PublicKey{N: n, E: int(e.Int64())},
		D:         d,
		Primes:    []*big.Int{p, q},
	}
	key.Precompute()
	if err := key.Validate(); err != nil {
		return nil, fmt.Errorf("key fails validation: %v", err)
	}
	return key, nil
}

func encodeBigInt(i *big.Int) string {
	return base64.RawURLEncoding.EncodeToString(i.Bytes())
}

func decodeBigInt(s string) (*big.Int, error) {
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid base64 encoding: %v", err)
	}
	return new(big.Int).SetBytes(b), nil
}
