package internal

import (
	"encoding/hex"
	"testing"
)

func TestNewTokenHexAndLength(t *testing.T) {
	token, err := NewToken(32)
	if err != nil {
		t.Fatalf("NewToken: %v", err)
	}
	raw, err := hex.DecodeString(token)
	if err != nil {
		t.Fatalf("token is not hex: %v", err)
	}
	if len(raw) != 32 {
		t.Fatalf("expected 32 bytes of entropy, got %d", len(raw))
	}
}

func TestNewTokenRejectsWeakLength(t *testing.T) {
	if _, err := NewToken(8); err == nil {
		t.Fatal("expected error for 8-byte token")
	}
}

func TestNewTokenNoCollisions(t *testing.T) {
	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		token, err := NewSessionToken()
		if err != nil {
			t.Fatalf("NewSessionToken: %v", err)
		}
		if _, dup := seen[token]; dup {
			t.Fatalf("duplicate token after %d draws", i)
		}
		seen[token] = struct{}{}
	}
}

func TestNewIDLength(t *testing.T) {
	id, err := NewID()
	if err != nil {
		t.Fatalf("NewID: %v", err)
	}
	if len(id) != IDBytes*2 {
		t.Fatalf("expected %d hex chars, got %d", IDBytes*2, len(id))
	}
}
