package vertical

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func mustDefault(t *testing.T) *Registry {
	t.Helper()
	reg, err := LoadDefault()
	if err != nil {
		t.Fatalf("expected embedded registry to load, got %v", err)
	}
	return reg
}

func TestResolveStripsPortAndCase(t *testing.T) {
	reg := mustDefault(t)

	cases := map[string]string{
		"VendingExits.com:443":   "cleaning",
		"vendingexits.com":       "cleaning",
		"www.HVACEXITS.com":      "hvac",
		"landscapeexits.com.":    "landscape",
		"localhost:3000":         "cleaning",
		"unknown.example.org":    "cleaning",
		"":                       "cleaning",
		"www.landscapeexits.com": "landscape",
	}
	for host, want := range cases {
		if got := reg.Resolve(host).Slug; got != want {
			t.Fatalf("host %q: expected %s, got %s", host, want, got)
		}
	}
}

func TestEveryVerticalHasCompiledRules(t *testing.T) {
	reg := mustDefault(t)

	if len(reg.All()) != 4 {
		t.Fatalf("expected 4 verticals, got %d", len(reg.All()))
	}
	for _, v := range reg.All() {
		if v.Classifier() == nil {
			t.Fatalf("vertical %s has no classifier", v.Slug)
		}
		if v.Valuation.SDE.Median <= 0 {
			t.Fatalf("vertical %s has no SDE median", v.Slug)
		}
	}
}

func TestCleaningClassifierBlocksFranchiseAdvertising(t *testing.T) {
	reg := mustDefault(t)
	v, ok := reg.BySlug("cleaning")
	if !ok {
		t.Fatalf("expected cleaning vertical")
	}

	if v.Classifier().Includes("Cleaning supply franchise opportunity, advertising included") {
		t.Fatalf("expected franchise listing to be blocked")
	}
	if !v.Classifier().Includes("Established commercial janitorial company\nRecurring contracts") {
		t.Fatalf("expected janitorial listing to be included")
	}
	if !v.Classifier().Includes("Glass cleaning route for sale") {
		t.Fatalf("expected glass cleaning to pass the glass block rule")
	}
}

func TestPrimaryHostnameAndSlugs(t *testing.T) {
	reg := mustDefault(t)

	if got := reg.PrimaryHostname("hvac"); got != "hvacexits.com" {
		t.Fatalf("expected hvacexits.com, got %q", got)
	}
	if got := reg.PrimaryHostname("vending"); got != "VendingExits.com" {
		t.Fatalf("expected domain fallback for vending, got %q", got)
	}
	if !reg.IsValid("HVAC") || reg.IsValid("plumbing") {
		t.Fatalf("unexpected IsValid results")
	}
	slugs := reg.Slugs()
	if slugs[0] != "cleaning" || slugs[len(slugs)-1] != "vending" {
		t.Fatalf("expected sorted slugs, got %v", slugs)
	}
}

func TestParseRejectsUnknownReferences(t *testing.T) {
	bad := []byte(`
default_vertical: missing
verticals:
  - slug: cleaning
    name: Cleaning
`)
	if _, err := Parse(bad); err == nil {
		t.Fatalf("expected error for unknown default vertical")
	}

	badHost := []byte(`
default_vertical: cleaning
hostnames:
  - { hostname: a.com, vertical: nope }
verticals:
  - slug: cleaning
`)
	if _, err := Parse(badHost); err == nil {
		t.Fatalf("expected error for hostname pointing at unknown vertical")
	}
}

func TestMiddlewareSetsHeadersAndOverride(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := mustDefault(t)

	r := gin.New()
	r.Use(Middleware(reg))
	r.GET("/v", func(c *gin.Context) {
		c.String(http.StatusOK, FromContext(c, nil).Slug)
	})

	req := httptest.NewRequest(http.MethodGet, "/v", nil)
	req.Host = "hvacexits.com:8080"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Body.String() != "hvac" {
		t.Fatalf("expected hvac, got %q", w.Body.String())
	}
	if w.Header().Get("X-Vertical-Slug") != "hvac" {
		t.Fatalf("expected slug header, got %q", w.Header().Get("X-Vertical-Slug"))
	}
	if w.Header().Get("X-Vertical-Domain") != "hvacexits.com" {
		t.Fatalf("expected domain header, got %q", w.Header().Get("X-Vertical-Domain"))
	}

	req = httptest.NewRequest(http.MethodGet, "/v?vertical=vending", nil)
	req.Host = "hvacexits.com"
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Body.String() != "vending" {
		t.Fatalf("expected override to vending, got %q", w.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/v?vertical=bogus", nil)
	req.Host = "hvacexits.com"
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Body.String() != "hvac" {
		t.Fatalf("expected invalid override to be ignored, got %q", w.Body.String())
	}
}
