package config

import "testing"

func TestLoadDefaultsWithoutDatabase(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("EMAIL_PROVIDER", "none")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.IsDatabaseConfigured() {
		t.Fatalf("expected database to be unconfigured")
	}
	if cfg.GetDigestBatchSize() != 100 {
		t.Fatalf("expected batch size 100, got %d", cfg.GetDigestBatchSize())
	}
	if cfg.GetDigestLookbackDays() != 90 {
		t.Fatalf("expected lookback 90, got %d", cfg.GetDigestLookbackDays())
	}
	if cfg.GetDigestSize() != 10 {
		t.Fatalf("expected digest size 10, got %d", cfg.GetDigestSize())
	}
}

func TestLoadRejectsResendWithoutKey(t *testing.T) {
	t.Setenv("EMAIL_PROVIDER", "resend")
	t.Setenv("RESEND_API_KEY", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for missing RESEND_API_KEY")
	}
}

func TestLoadRejectsUnknownProvider(t *testing.T) {
	t.Setenv("EMAIL_PROVIDER", "pigeon")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unknown provider")
	}
}

func TestCORSWildcardEnablesAllowAll(t *testing.T) {
	t.Setenv("EMAIL_PROVIDER", "none")
	t.Setenv("CORS_ORIGINS", "https://vendingexits.com, *")
	t.Setenv("CORS_ALLOW_ALL", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !cfg.GetCORSAllowAll() {
		t.Fatalf("expected wildcard origin to enable allow-all")
	}
	if len(cfg.GetCORSOrigins()) != 2 {
		t.Fatalf("expected 2 origins, got %v", cfg.GetCORSOrigins())
	}
}

func TestAppBaseURLTrailingSlashTrimmed(t *testing.T) {
	t.Setenv("EMAIL_PROVIDER", "none")
	t.Setenv("APP_BASE_URL", "https://vendingexits.com/")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.GetAppBaseURL() != "https://vendingexits.com" {
		t.Fatalf("expected trimmed base url, got %q", cfg.GetAppBaseURL())
	}
}
