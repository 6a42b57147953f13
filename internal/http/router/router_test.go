package router

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apphttp "exits_backend/internal/http"
	"exits_backend/internal/vertical"
	"exits_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

type testConfig struct {
	origins []string
	secret  string
}

func (c testConfig) GetHTTPAddr() string        { return ":0" }
func (c testConfig) GetCORSAllowAll() bool      { return false }
func (c testConfig) GetCORSOrigins() []string   { return c.origins }
func (c testConfig) GetRateLimitPerMinute() int { return 60 }
func (c testConfig) GetAdminJWTSecret() string  { return c.secret }

type testHealth struct {
	err error
}

func (h testHealth) Ping(context.Context) error { return h.err }

type testModule struct{}

func (testModule) Name() string { return "test" }

func (testModule) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Store.GET("/things", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })
	ctx.Admin.GET("/things", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })
}

func newTestApp(t *testing.T, storeAvailable bool, health apphttp.HealthChecker) *apphttp.App {
	t.Helper()
	gin.SetMode(gin.TestMode)

	reg, err := vertical.LoadDefault()
	if err != nil {
		t.Fatalf("expected default registry, got %v", err)
	}
	return &apphttp.App{
		Config:         testConfig{origins: []string{"https://vendingexits.com"}, secret: "secret"},
		Logger:         logger.NewWithWriter("test", io.Discard),
		Health:         health,
		StoreAvailable: storeAvailable,
		Verticals:      reg,
		Modules:        []apphttp.Module{testModule{}},
	}
}

func serve(engine *gin.Engine, method, path, host string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if host != "" {
		req.Host = host
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestStoreRoutesAnswer503WithoutStore(t *testing.T) {
	engine := New(newTestApp(t, false, nil))

	rec := serve(engine, http.MethodGet, "/api/v1/things", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Service configuration error") {
		t.Fatalf("expected configuration error body, got %s", rec.Body.String())
	}
}

func TestPureRoutesWorkWithoutStore(t *testing.T) {
	engine := New(newTestApp(t, false, nil))

	if rec := serve(engine, http.MethodGet, "/api/v1/finance/estimate?price=100000&cash_flow=40000", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected estimate 200, got %d", rec.Code)
	}

	rec := serve(engine, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "unconfigured") {
		t.Fatalf("expected healthy unconfigured store, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestVerticalResolvedFromHost(t *testing.T) {
	engine := New(newTestApp(t, true, testHealth{}))

	rec := serve(engine, http.MethodGet, "/api/v1/vertical", "www.hvacexits.com:443")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("X-Vertical-Slug"); got != "hvac" {
		t.Fatalf("expected hvac vertical header, got %q", got)
	}
}

func TestAdminRequiresToken(t *testing.T) {
	engine := New(newTestApp(t, true, testHealth{}))

	rec := serve(engine, http.MethodGet, "/api/v1/admin/things", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestHealthReportsStoreFailure(t *testing.T) {
	engine := New(newTestApp(t, true, testHealth{err: errors.New("connection refused")}))

	rec := serve(engine, http.MethodGet, "/health", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestMetricsExposed(t *testing.T) {
	engine := New(newTestApp(t, false, nil))

	serve(engine, http.MethodGet, "/health", "")
	rec := serve(engine, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "http_request_duration_seconds") {
		t.Fatalf("expected prometheus exposition, got %d", rec.Code)
	}
}
