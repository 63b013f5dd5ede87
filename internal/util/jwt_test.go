package util

import (
	"testing"
	"time"

	"skillverify_backend/internal/model"
)

func testUser() *model.User {
	u := &model.User{
		Name:     "Ada",
		Username: "ada",
		Email:    "ada@example.com",
		Role:     model.Candidate,
	}
	u.ID = 42
	return u
}

func TestJWTRoundTrip(t *testing.T) {
	token, err := GenerateJWT(testUser(), "test-secret-test-secret-test-1234", time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	claims, err := ParseJWT(token, "test-secret-test-secret-test-1234")
	if err != nil {
		t.Fatalf("ParseJWT: %v", err)
	}
	if claims.UserID != 42 || claims.Username != "ada" || claims.Role != model.Candidate {
		t.Fatalf("claims mangled: %+v", claims)
	}
}

func TestJWTWrongSecret(t *testing.T) {
	token, _ := GenerateJWT(testUser(), "secret-one", time.Hour)
	if _, err := ParseJWT(token, "secret-two"); err == nil {
		t.Fatal("wrong secret must not validate")
	}
}

func TestJWTExpired(t *testing.T) {
	token, _ := GenerateJWT(testUser(), "secret", -time.Minute)
	if _, err := ParseJWT(token, "secret"); err == nil {
		t.Fatal("expired token must not validate")
	}
}
