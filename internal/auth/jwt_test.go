package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestGenerateAndParseToken(t *testing.T) {
	v := NewVerifier("test-secret-key", "go_productlabel")

	token, err := v.GenerateToken("merchandiser", "admin", time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("GenerateToken() failed: %v", err)
	}
	if token == "" {
		t.Error("Expected non-empty token")
	}

	claims, err := v.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken() failed: %v", err)
	}
	if claims.Username != "merchandiser" {
		t.Errorf("Expected username merchandiser, got %s", claims.Username)
	}
	if claims.Role != "admin" {
		t.Errorf("Expected role admin, got %s", claims.Role)
	}
	if claims.Issuer != "go_productlabel" {
		t.Errorf("Expected issuer go_productlabel, got %s", claims.Issuer)
	}
}

func TestParseToken_Expired(t *testing.T) {
	v := NewVerifier("test-secret-key", "go_productlabel")

	token, err := v.GenerateToken("merchandiser", "admin", time.Now().Add(-time.Minute))
	if err != nil {
		t.Fatalf("GenerateToken() failed: %v", err)
	}

	_, err = v.ParseToken(token)
	if !errors.Is(err, jwt.ErrTokenExpired) {
		t.Errorf("Expected ErrTokenExpired, got %v", err)
	}
}

func TestParseToken_WrongSecretOrIssuer(t *testing.T) {
	issuer := NewVerifier("secret-a", "go_productlabel")
	token, _ := issuer.GenerateToken("merchandiser", "admin", time.Now().Add(time.Hour))

	if _, err := NewVerifier("secret-b", "go_productlabel").ParseToken(token); err == nil {
		t.Error("Expected error for token signed with another secret")
	}
	if _, err := NewVerifier("secret-a", "someone-else").ParseToken(token); err == nil {
		t.Error("Expected error for token from another issuer")
	}
}

func TestParseToken_NoSecret(t *testing.T) {
	if _, err := NewVerifier("", "x").ParseToken("abc"); err == nil {
		t.Error("Expected error when secret is not initialized")
	}
}
