package security

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("S3cr3tP@ss!")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if hash == "S3cr3tP@ss!" {
		t.Fatal("HashPassword() returned the plaintext")
	}
	if !strings.HasPrefix(hash, "$2a$10$") {
		t.Errorf("hash = %q, want bcrypt cost 10", hash)
	}
	if !CheckPasswordHash("S3cr3tP@ss!", hash) {
		t.Error("CheckPasswordHash() rejected the correct password")
	}
	if CheckPasswordHash("wrong-password", hash) {
		t.Error("CheckPasswordHash() accepted a wrong password")
	}
}

func TestHashPasswordIsSalted(t *testing.T) {
	a, _ := HashPassword("same-password")
	b, _ := HashPassword("same-password")
	if a == b {
		t.Error("two hashes of the same password are identical")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)

	token, err := tm.GenerateToken("5b0c3c3e-3b7a-4c43-9d0b-1a2f3e4d5c6b", "ana@example.com", "CUSTOMER")
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	sub, err := tm.Subject(token)
	if err != nil {
		t.Fatalf("Subject() error = %v", err)
	}
	if sub != "5b0c3c3e-3b7a-4c43-9d0b-1a2f3e4d5c6b" {
		t.Errorf("Subject() = %q, want the user id", sub)
	}
}

func TestTokenRejectsOtherSecret(t *testing.T) {
	token, err := NewTokenManager("secret-a", time.Hour).GenerateToken("u1", "a@example.com", "CUSTOMER")
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	if _, err := NewTokenManager("secret-b", time.Hour).Subject(token); err == nil {
		t.Error("Subject() accepted a token signed with another secret")
	}
}

func TestTokenRejectsExpired(t *testing.T) {
	tm := NewTokenManager("test-secret", -time.Minute)
	token, err := tm.GenerateToken("u1", "a@example.com", "CUSTOMER")
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	if _, err := tm.Subject(token); err == nil {
		t.Error("Subject() accepted an expired token")
	}
}

func TestClaimHelpers(t *testing.T) {
	claims := jwt.MapClaims{ClaimSubject: "u1", ClaimRole: "ADMINISTRATOR", ClaimEmail: "root@example.com"}

	if id, err := GetUserIDFromClaims(claims); err != nil || id != "u1" {
		t.Errorf("GetUserIDFromClaims() = %q, %v", id, err)
	}
	if role, err := GetUserRoleFromClaims(claims); err != nil || role != "ADMINISTRATOR" {
		t.Errorf("GetUserRoleFromClaims() = %q, %v", role, err)
	}
	if email := GetEmailFromClaims(claims); email != "root@example.com" {
		t.Errorf("GetEmailFromClaims() = %q", email)
	}

	if _, err := GetUserIDFromClaims(jwt.MapClaims{}); err == nil {
		t.Error("GetUserIDFromClaims() accepted claims without sub")
	}
	if _, err := GetUserRoleFromClaims(jwt.MapClaims{ClaimRole: 7}); err == nil {
		t.Error("GetUserRoleFromClaims() accepted a non-string role")
	}
}
