package auth

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
)

func newTestCodec(t *testing.T) *TokenCodec {
	t.Helper()
	codec, err := NewTokenCodec("q1w2e3r4", "HS256")
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	return codec
}

func TestTokenRoundTrip(t *testing.T) {
	codec := newTestCodec(t)
	claims := []Claim{
		{Email: "tester@example.com", IsMaster: false},
		{Email: "admin@example.com", IsMaster: true},
	}
	for _, claim := range claims {
		token, err := codec.Encode(claim)
		if err != nil {
			t.Fatalf("encode: %v", err)
		}
		got, err := codec.Decode(token)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if got != claim {
			t.Fatalf("expected %+v, got %+v", claim, got)
		}
	}
}

func TestTokenPayloadHasNoExpiry(t *testing.T) {
	codec := newTestCodec(t)
	token, err := codec.Encode(Claim{Email: "a@b.co"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	parts := strings.Split(token, ".")
	raw, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if len(payload) != 2 || payload["email"] != "a@b.co" || payload["is_master"] != false {
		t.Fatalf("unexpected payload %v", payload)
	}
}

func TestTamperedSignatureFails(t *testing.T) {
	codec := newTestCodec(t)
	token, err := codec.Encode(Claim{Email: "tester@example.com"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	sigStart := strings.LastIndex(token, ".") + 1
	for i := sigStart; i < len(token); i++ {
		replacement := byte('A')
		if token[i] == 'A' {
			replacement = 'B'
		}
		tampered := token[:i] + string(replacement) + token[i+1:]
		if _, err := codec.Decode(tampered); !errors.Is(err, ErrDecode) {
			t.Fatalf("position %d: expected ErrDecode, got %v", i, err)
		}
	}
}

func TestDecodeRejectsOtherSecretsAndAlgorithms(t *testing.T) {
	codec := newTestCodec(t)

	other, err := NewTokenCodec("another-secret", "HS256")
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	foreign, err := other.Encode(Claim{Email: "tester@example.com"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	hs512, err := NewTokenCodec("q1w2e3r4", "HS512")
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	wrongAlg, err := hs512.Encode(Claim{Email: "tester@example.com"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"email":     "tester@example.com",
		"is_master": true,
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}

	tests := map[string]string{
		"foreign secret": foreign,
		"wrong alg":      wrongAlg,
		"alg none":       unsigned,
		"garbage":        "not-a-token",
		"empty":          "",
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := codec.Decode(token); !errors.Is(err, ErrDecode) {
				t.Fatalf("expected ErrDecode, got %v", err)
			}
		})
	}
}

func TestNewTokenCodecValidation(t *testing.T) {
	if _, err := NewTokenCodec("", "HS256"); err == nil {
		t.Fatalf("expected error for empty secret")
	}
	if _, err := NewTokenCodec("secret", "RS256"); !errors.Is(err, ErrUnsupportedAlgorithm) {
		t.Fatalf("expected ErrUnsupportedAlgorithm, got %v", err)
	}
	if _, err := NewTokenCodec("secret", ""); err != nil {
		t.Fatalf("expected default algorithm, got %v", err)
	}
}
