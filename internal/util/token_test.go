package util

import (
	"net/url"
	"testing"
)

func TestGenerateResetTokenIsURLSafe(t *testing.T) {
	token, err := GenerateResetToken()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if token == "" {
		t.Fatal("expected a non-empty token")
	}
	if escaped := url.PathEscape(token); escaped != token {
		t.Fatalf("token must survive a URL path unescaped: %q vs %q", token, escaped)
	}
}

func TestGenerateResetTokenUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		token, err := GenerateResetToken()
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if seen[token] {
			t.Fatalf("duplicate token %q", token)
		}
		seen[token] = true
	}
}
