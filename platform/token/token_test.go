package token

import (
	"encoding/base64"
	"testing"
)

func TestGenerateRandomTokenIsURLSafeAndUnique(t *testing.T) {
	a, err := New()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	b, err := New()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if a == b {
		t.Fatalf("expected distinct tokens")
	}
	raw, err := base64.RawURLEncoding.DecodeString(a)
	if err != nil {
		t.Fatalf("expected base64url token, got %v", err)
	}
	if len(raw) != DefaultSize {
		t.Fatalf("expected %d bytes, got %d", DefaultSize, len(raw))
	}
}

func TestGenerateRandomTokenRejectsZeroSize(t *testing.T) {
	if _, err := GenerateRandomToken(0); err == nil {
		t.Fatalf("expected error for zero size")
	}
}
