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

	"exits_backend/internal/adapters/storage"
	"exits_backend/internal/digest/service"
	"exits_backend/internal/digest/transport"
	"exits_backend/internal/vertical"
	"exits_backend/platform/logger"
	"exits_backend/platform/validator"
)

type testEnqueuer struct {
	vertical string
	force    bool
}

func (e *testEnqueuer) EnqueueWeeklyDigest(_ context.Context, vertical string, force bool) (string, error) {
	e.vertical, e.force = vertical, force
	return "task-1", nil
}

type testArchive struct {
	objects map[string][]byte
}

func (a testArchive) PutObject(context.Context, string, string, string, []byte) error {
	return nil
}

func (a testArchive) GetObject(_ context.Context, _, key string) ([]byte, error) {
	data, ok := a.objects[key]
	if !ok {
		return nil, storage.ErrObjectNotFound
	}
	return data, nil
}

func (a testArchive) EnsureBucketExists(context.Context, string) error {
	return nil
}

func newTestEngine(t *testing.T, archive storage.ObjectStore, enqueuer Enqueuer) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	reg, err := vertical.LoadDefault()
	if err != nil {
		t.Fatalf("expected default registry, got %v", err)
	}
	svc := service.New(service.Deps{
		Archive: archive,
		Log:     logger.NewWithWriter("test", io.Discard),
	}, service.Settings{Bucket: "digests"})
	h := New(svc, validator.New(), reg, enqueuer)

	engine := gin.New()
	engine.Use(vertical.Middleware(reg))
	engine.GET("/api/v1/digests/:vertical/:week", h.Archived)
	engine.POST("/api/v1/admin/digests/weekly", h.Send)
	return engine
}

func serve(engine *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestSendQueuesWhenEnqueuerConfigured(t *testing.T) {
	enqueuer := &testEnqueuer{}
	engine := newTestEngine(t, nil, enqueuer)

	rec := serve(engine, http.MethodPost, "/api/v1/admin/digests/weekly", `{"vertical":"hvac","force":true}`)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp transport.SendResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("expected json body, got %v", err)
	}
	if !resp.Queued || resp.TaskID != "task-1" {
		t.Fatalf("unexpected response %+v", resp)
	}
	if enqueuer.vertical != "hvac" || !enqueuer.force {
		t.Fatalf("expected hvac forced enqueue, got %q %v", enqueuer.vertical, enqueuer.force)
	}
}

func TestSendWithEmptyBodyUsesRequestVertical(t *testing.T) {
	enqueuer := &testEnqueuer{}
	engine := newTestEngine(t, nil, enqueuer)

	rec := serve(engine, http.MethodPost, "/api/v1/admin/digests/weekly", "")
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	if enqueuer.vertical != "cleaning" {
		t.Fatalf("expected default vertical, got %q", enqueuer.vertical)
	}
}

func TestSendUnknownVerticalIs400(t *testing.T) {
	engine := newTestEngine(t, nil, &testEnqueuer{})

	rec := serve(engine, http.MethodPost, "/api/v1/admin/digests/weekly", `{"vertical":"plumbing"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestArchivedServesStoredHTML(t *testing.T) {
	archive := testArchive{objects: map[string][]byte{
		service.ArchiveKey("cleaning", "2026-01-05"): []byte("<html>digest</html>"),
	}}
	engine := newTestEngine(t, archive, nil)

	rec := serve(engine, http.MethodGet, "/api/v1/digests/cleaning/2026-01-05.html", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != "<html>digest</html>" {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}
	if !strings.HasPrefix(rec.Header().Get("Content-Type"), "text/html") {
		t.Fatalf("expected html content type, got %q", rec.Header().Get("Content-Type"))
	}
	if rec.Header().Get("Cache-Control") == "" {
		t.Fatalf("expected cache header")
	}
}

func TestArchivedErrors(t *testing.T) {
	engine := newTestEngine(t, testArchive{objects: map[string][]byte{}}, nil)

	if rec := serve(engine, http.MethodGet, "/api/v1/digests/cleaning/2026-01-12", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for missing week, got %d", rec.Code)
	}
	if rec := serve(engine, http.MethodGet, "/api/v1/digests/cleaning/last-week", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed week, got %d", rec.Code)
	}
	if rec := serve(engine, http.MethodGet, "/api/v1/digests/plumbing/2026-01-12", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown vertical, got %d", rec.Code)
	}
}

func TestArchivedWithoutStorageIs503(t *testing.T) {
	engine := newTestEngine(t, nil, nil)

	if rec := serve(engine, http.MethodGet, "/api/v1/digests/cleaning/2026-01-05", ""); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}
