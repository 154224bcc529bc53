package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/angelmondragon/cartsync/pkg/config"
)

func TestMintAndParseActorToken(t *testing.T) {
	cfg := config.JWTConfig{
		Secret:            "secret",
		Issuer:            "cartsync",
		ExpirationMinutes: 30,
	}
	now := time.Now().UTC()

	token, err := MintActorToken(cfg, now, "42", "Ada")
	if err != nil {
		t.Fatalf("mint actor token: %v", err)
	}

	claims, err := ParseActorToken(cfg, token)
	if err != nil {
		t.Fatalf("parse actor token: %v", err)
	}
	if claims.Subject != "42" || claims.Name != "Ada" {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if claims.Issuer != cfg.Issuer {
		t.Fatalf("issuer mismatch %s", claims.Issuer)
	}
	if claims.ExpiresAt == nil || !claims.ExpiresAt.Time.After(now) {
		t.Fatalf("expected future expiry")
	}
	if claims.ID == "" {
		t.Fatalf("expected jti")
	}
}

func TestParseActorTokenRejectsWrongIssuer(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "cartsync", ExpirationMinutes: 5}
	token, err := MintActorToken(cfg, time.Now(), "42", "")
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	other := cfg
	other.Issuer = "someone-else"
	if _, err := ParseActorToken(other, token); err == nil {
		t.Fatalf("expected issuer mismatch")
	}
}

func TestParseActorTokenRejectsExpired(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "cartsync", ExpirationMinutes: 1}
	token, err := MintActorToken(cfg, time.Now().Add(-2*time.Hour), "42", "")
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if _, err := ParseActorToken(cfg, token); err == nil || !strings.Contains(err.Error(), "expired") {
		t.Fatalf("expected expired error, got %v", err)
	}
}

func TestMintActorTokenValidatesConfig(t *testing.T) {
	if _, err := MintActorToken(config.JWTConfig{}, time.Now(), "42", ""); err == nil {
		t.Fatalf("expected missing secret error")
	}
	if _, err := MintActorToken(config.JWTConfig{Secret: "s", Issuer: "i", ExpirationMinutes: 1}, time.Now(), " ", ""); err == nil {
		t.Fatalf("expected missing subject error")
	}
}
