package auth

import (
	"testing"
)

func TestTokenRoundTrip(t *testing.T) {
	InitializeJWT("test-secret")

	token, err := GenerateToken("user-1", "ana@example.com")
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	claims, err := ValidateToken(token)
	if err != nil {
		t.Fatalf("failed to validate token: %v", err)
	}
	if claims.UserID != "user-1" || claims.Email != "ana@example.com" {
		t.Errorf("unexpected claims: %+v", claims)
	}
	if claims.TokenType != TokenTypeAccess {
		t.Errorf("expected access token type, got %q", claims.TokenType)
	}
}

func TestTokenTypesAreNotInterchangeable(t *testing.T) {
	InitializeJWT("test-secret")

	access, err := GenerateToken("user-1", "ana@example.com")
	if err != nil {
		t.Fatalf("failed to generate access token: %v", err)
	}
	refresh, err := GenerateRefreshToken("user-1", "ana@example.com")
	if err != nil {
		t.Fatalf("failed to generate refresh token: %v", err)
	}

	if _, err := ValidateRefreshToken(access); err == nil {
		t.Error("access token validated as refresh token")
	}
	if _, err := ValidateToken(refresh); err == nil {
		t.Error("refresh token validated as access token")
	}
	if _, err := ValidateRefreshToken(refresh); err != nil {
		t.Errorf("refresh token rejected: %v", err)
	}
}

func TestTokenRejectedWithWrongSecret(t *testing.T) {
	InitializeJWT("secret-a")
	token, err := GenerateToken("user-1", "ana@example.com")
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	InitializeJWT("secret-b")
	if _, err := ValidateToken(token); err == nil {
		t.Error("token signed with a different secret was accepted")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("secret1")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	if hash == "secret1" {
		t.Fatal("password stored in plain text")
	}

	if err := VerifyPassword("secret1", hash); err != nil {
		t.Errorf("correct password rejected: %v", err)
	}
	if err := VerifyPassword("wrong", hash); err == nil {
		t.Error("wrong password accepted")
	}
}
