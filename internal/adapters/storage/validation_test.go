package storage

import "testing"

func TestValidateKey(t *testing.T) {
	valid := []string{"digests/cleaning/2026-01-05.html", "a.json"}
	for _, key := range valid {
		if err := ValidateKey(key); err != nil {
			t.Fatalf("expected %q to be valid, got %v", key, err)
		}
	}

	invalid := []string{"", "/digests/x.html", "digests/../secrets", "digests//x.html", "digests/./x.html"}
	for _, key := range invalid {
		if err := ValidateKey(key); err == nil {
			t.Fatalf("expected %q to be rejected", key)
		}
	}
}

func TestValidateObject(t *testing.T) {
	if err := ValidateObject("digests/a.html", "text/html; charset=utf-8", 10); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := ValidateObject("digests/a.exe", "application/octet-stream", 10); err == nil {
		t.Fatalf("expected content type to be rejected")
	}
	if err := ValidateObject("digests/a.html", "text/html", 0); err == nil {
		t.Fatalf("expected empty object to be rejected")
	}
	if err := ValidateObject("digests/a.html", "text/html", MaxObjectSize+1); err == nil {
		t.Fatalf("expected oversized object to be rejected")
	}
}
