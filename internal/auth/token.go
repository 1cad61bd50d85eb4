package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrDecode is returned for malformed tokens and signature mismatches.
	ErrDecode = errors.New("token decode failed")
	// ErrUnsupportedAlgorithm is returned when the configured algorithm is not an HMAC one.
	ErrUnsupportedAlgorithm = errors.New("unsupported token algorithm")
)

// Claim is the signed identity carried by an auth token.
type Claim struct {
	Email    string `json:"email"`
	IsMaster bool   `json:"is_master"`
}

type tokenClaims struct {
	Claim
	jwt.RegisteredClaims
}

// TokenCodec signs and verifies claims with a process-wide shared secret.
type TokenCodec struct {
	key    []byte
	method jwt.SigningMethod
}

func NewTokenCodec(secret, algorithm string) (*TokenCodec, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("token secret is required")
	}
	if algorithm == "" {
		algorithm = jwt.SigningMethodHS256.Alg()
	}
	method, ok := jwt.GetSigningMethod(strings.ToUpper(algorithm)).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAlgorithm, algorithm)
	}
	return &TokenCodec{key: []byte(secret), method: method}, nil
}

// Encode issues a token without an expiry; validity rests on the signature alone.
func (c *TokenCodec) Encode(claim Claim) (string, error) {
	token := jwt.NewWithClaims(c.method, tokenClaims{Claim: claim})
	signed, err := token.SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (c *TokenCodec) Decode(tokenString string) (Claim, error) {
	var claims tokenClaims
	token, err := jwt.ParseWithClaims(
		strings.TrimSpace(tokenString),
		&claims,
		func(*jwt.Token) (any, error) { return c.key, nil },
		jwt.WithValidMethods([]string{c.method.Alg()}),
		jwt.WithStrictDecoding(),
	)
	if err != nil {
		return Claim{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if !token.Valid || claims.Email == "" {
		return Claim{}, ErrDecode
	}
	return claims.Claim, nil
}
