package utils

import (
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func TestGenerateAndValidateJWT(t *testing.T) {
	userID := uuid.New()

	token, err := GenerateJWT(userID, "admin@dropindrop.app", true)
	if err != nil {
		t.Fatalf("GenerateJWT() error = %v", err)
	}
	if token == "" {
		t.Fatal("GenerateJWT() returned empty token")
	}

	claims, err := ValidateJWT(token)
	if err != nil {
		t.Fatalf("ValidateJWT() error = %v", err)
	}
	if claims.UserID != userID {
		t.Errorf("user id = %s, want %s", claims.UserID, userID)
	}
	if claims.Email != "admin@dropindrop.app" {
		t.Errorf("email = %s, want admin@dropindrop.app", claims.Email)
	}
	if !claims.IsAdmin {
		t.Error("is_admin = false, want true")
	}
	if claims.Issuer != "dropindrop" {
		t.Errorf("issuer = %s, want dropindrop", claims.Issuer)
	}
}

func TestValidateJWTRejectsBadToken(t *testing.T) {
	if _, err := ValidateJWT("not-a-token"); err == nil {
		t.Error("ValidateJWT() expected error for malformed token")
	}

	// Token signed with a different secret must be rejected
	claims := &Claims{
		UserID: uuid.New(),
		Email:  "x@y.z",
	}
	other := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := other.SignedString([]byte("some-other-secret"))
	if err != nil {
		t.Fatalf("SignedString() error = %v", err)
	}
	if _, err := ValidateJWT(signed); err == nil || !strings.Contains(err.Error(), "signature") {
		t.Errorf("ValidateJWT() error = %v, want signature failure", err)
	}
}
