package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"exits_backend/internal/events"
	"exits_backend/internal/leads/repository"
	"exits_backend/internal/leads/service"
	listingsrepo "exits_backend/internal/listings/repository"
	subscribersrepo "exits_backend/internal/subscribers/repository"
	"exits_backend/internal/vertical"
	"exits_backend/platform/httpkit"
	"exits_backend/platform/logger"
	"exits_backend/platform/validator"
)

type testLeadRepo struct {
	created []repository.CreateParams
}

func (r *testLeadRepo) Create(_ context.Context, p repository.CreateParams) (repository.Lead, error) {
	r.created = append(r.created, p)
	return repository.Lead{ID: p.ID, Email: p.Email, ListingID: p.ListingID, Status: p.Status}, nil
}

func (r *testLeadRepo) UpdateStatus(_ context.Context, id uuid.UUID, status string) (string, repository.Lead, error) {
	return repository.StatusNew, repository.Lead{ID: id, Status: status}, nil
}

func (r *testLeadRepo) List(context.Context, repository.ListParams) ([]repository.Lead, int, error) {
	return nil, 0, nil
}

type testListings struct{}

func (testListings) Get(_ context.Context, id string) (listingsrepo.Listing, error) {
	return listingsrepo.Listing{ID: id, Title: "HVAC Service Company", City: "Tulsa", State: "OK"}, nil
}

type testSubscribers struct{}

func (testSubscribers) UpsertConfirmed(_ context.Context, email, vertical string) (subscribersrepo.Subscriber, error) {
	return subscribersrepo.Subscriber{Email: email, Vertical: vertical, Confirmed: true}, nil
}

type testBus struct{}

func (testBus) Publish(context.Context, events.Event) {}

func (testBus) PublishSync(context.Context, events.Event) error {
	return nil
}

func (testBus) Subscribe(string, events.Handler) {}

func newTestEngine(t *testing.T, repo *testLeadRepo) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	reg, err := vertical.LoadDefault()
	if err != nil {
		t.Fatalf("expected default registry, got %v", err)
	}
	svc := service.New(repo, testListings{}, testSubscribers{}, testBus{}, logger.NewWithWriter("test", io.Discard))
	h := New(svc, validator.New(), reg)

	engine := gin.New()
	engine.Use(vertical.Middleware(reg))
	engine.POST("/api/v1/leads/capture", h.Capture)
	engine.PATCH("/api/v1/admin/leads/:id/status", h.UpdateStatus)
	return engine
}

func post(engine *gin.Engine, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/leads/capture", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	if host := headers["Host"]; host != "" {
		req.Host = host
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestCaptureMissingFieldsIs400(t *testing.T) {
	repo := &testLeadRepo{}
	engine := newTestEngine(t, repo)

	rec := post(engine, `{"email":"buyer@example.com"}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	var body httpkit.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("expected json error, got %v", err)
	}
	if body.Error != "Email and listing_id required" {
		t.Fatalf("expected required-field message, got %q", body.Error)
	}
	if len(repo.created) != 0 {
		t.Fatalf("expected nothing stored")
	}
}

func TestCaptureMalformedJSONIs400(t *testing.T) {
	engine := newTestEngine(t, &testLeadRepo{})

	if rec := post(engine, `{"email":`, nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCaptureRecordsRequestMetadata(t *testing.T) {
	repo := &testLeadRepo{}
	engine := newTestEngine(t, repo)

	rec := post(engine, `{"email":"buyer@example.com","listing_id":"L9"}`, map[string]string{
		"Host":            "hvacexits.com",
		"X-Forwarded-For": "203.0.113.7, 10.0.0.1",
		"User-Agent":      "test-agent",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected one lead, got %d", len(repo.created))
	}

	p := repo.created[0]
	if p.Vertical != "hvac" {
		t.Fatalf("expected hvac vertical, got %q", p.Vertical)
	}
	if p.IPAddress != "203.0.113.7" {
		t.Fatalf("expected first forwarded hop, got %q", p.IPAddress)
	}
	if p.UserAgent == nil || *p.UserAgent != "test-agent" {
		t.Fatalf("expected user agent, got %v", p.UserAgent)
	}
}

func TestUpdateStatusRejectsBadID(t *testing.T) {
	engine := newTestEngine(t, &testLeadRepo{})

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/admin/leads/not-a-uuid/status", strings.NewReader(`{"status":"contacted"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
