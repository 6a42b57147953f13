package email

import (
	"testing"

	"exits_backend/internal/vertical"
)

func TestBrandResolverUsesPrimaryHostname(t *testing.T) {
	reg, err := vertical.LoadDefault()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	brand := NewBrandResolver(reg, "").ForSlug("hvac")
	if brand.BaseURL != "https://hvacexits.com" {
		t.Fatalf("expected primary hostname base url, got %q", brand.BaseURL)
	}
	if brand.FromEmail != "listings@hvacexits.com" {
		t.Fatalf("expected vertical sender, got %q", brand.FromEmail)
	}
	if brand.UnsubscribeURL("abc") != "https://hvacexits.com/unsubscribe?token=abc" {
		t.Fatalf("unexpected unsubscribe url %q", brand.UnsubscribeURL("abc"))
	}
}

func TestBrandResolverOverrideAndFallback(t *testing.T) {
	reg, err := vertical.LoadDefault()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	brand := NewBrandResolver(reg, "http://localhost:3000/").ForSlug("plumbing")
	if brand.Slug != "cleaning" {
		t.Fatalf("expected default vertical for unknown slug, got %q", brand.Slug)
	}
	if brand.ConfirmURL("t1") != "http://localhost:3000/confirm?token=t1" {
		t.Fatalf("unexpected confirm url %q", brand.ConfirmURL("t1"))
	}
}
