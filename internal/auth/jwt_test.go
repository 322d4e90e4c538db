package auth

import (
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	tokenString, err := NewToken("test-secret", "trackas-test", "d6f1b7a0-0000-0000-0000-000000000001", time.Hour)
	if err != nil {
		t.Fatalf("sign error: %v", err)
	}
	claims, err := ParseToken("test-secret", "trackas-test", tokenString)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if claims.LecturerID != "d6f1b7a0-0000-0000-0000-000000000001" {
		t.Fatalf("unexpected lecturer id %s", claims.LecturerID)
	}
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	tokenString, err := NewToken("test-secret", "trackas-test", "lect-1", time.Hour)
	if err != nil {
		t.Fatalf("sign error: %v", err)
	}
	if _, err := ParseToken("other-secret", "trackas-test", tokenString); err == nil {
		t.Fatalf("expected error for wrong secret")
	}
}

func TestParseTokenRejectsWrongIssuer(t *testing.T) {
	tokenString, err := NewToken("test-secret", "someone-else", "lect-1", time.Hour)
	if err != nil {
		t.Fatalf("sign error: %v", err)
	}
	if _, err := ParseToken("test-secret", "trackas-test", tokenString); err == nil {
		t.Fatalf("expected error for wrong issuer")
	}
}

func TestParseTokenRejectsExpired(t *testing.T) {
	tokenString, err := NewToken("test-secret", "trackas-test", "lect-1", -time.Minute)
	if err != nil {
		t.Fatalf("sign error: %v", err)
	}
	if _, err := ParseToken("test-secret", "trackas-test", tokenString); err == nil {
		t.Fatalf("expected error for expired token")
	}
}
