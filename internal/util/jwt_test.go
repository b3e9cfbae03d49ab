package util

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestJWTRoundTrip(t *testing.T) {
	manager := NewJWTManager("test-secret", time.Hour)
	userID := uuid.New()
	username := "arenauser"

	token, expiresAt, err := manager.Generate(userID, "student@uni.edu", &username, true)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if time.Until(expiresAt) <= 0 {
		t.Fatal("expiry should be in the future")
	}

	claims, err := manager.Parse(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != userID {
		t.Fatalf("expected user %s, got %s", userID, claims.UserID)
	}
	if claims.Email != "student@uni.edu" {
		t.Fatalf("unexpected email %q", claims.Email)
	}
	if claims.Username == nil || *claims.Username != username {
		t.Fatalf("unexpected username %v", claims.Username)
	}
	if !claims.ProfileCompleted {
		t.Fatal("expected profile_completed carried through")
	}
}

func TestJWTRejectsWrongSecret(t *testing.T) {
	token, _, err := NewJWTManager("secret-a", time.Hour).Generate(uuid.New(), "student@uni.edu", nil, false)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := NewJWTManager("secret-b", time.Hour).Parse(token); err == nil {
		t.Fatal("a token signed with another secret must not parse")
	}
}

func TestJWTRejectsExpired(t *testing.T) {
	manager := NewJWTManager("test-secret", -time.Minute)
	token, _, err := manager.Generate(uuid.New(), "student@uni.edu", nil, false)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := manager.Parse(token); err == nil {
		t.Fatal("expired token must not parse")
	}
}
