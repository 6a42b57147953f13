package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"exits_backend/internal/digest/service"
	"exits_backend/internal/digest/transport"
	"exits_backend/internal/vertical"
	"exits_backend/platform/apperr"
	"exits_backend/platform/httpkit"
	"exits_backend/platform/validator"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgUnknownVertical  = "Unknown vertical"

	htmlContentType = "text/html; charset=utf-8"
)

// Enqueuer hands a digest send to the background worker.
type Enqueuer interface {
	EnqueueWeeklyDigest(ctx context.Context, vertical string, force bool) (string, error)
}

// Handler handles HTTP requests for the weekly digest.
type Handler struct {
	svc      *service.Service
	val      *validator.Validator
	reg      *vertical.Registry
	enqueuer Enqueuer
}

// New creates a new digest handler. enqueuer may be nil, in which case sends run inline.
func New(svc *service.Service, val *validator.Validator, reg *vertical.Registry, enqueuer Enqueuer) *Handler {
	return &Handler{svc: svc, val: val, reg: reg, enqueuer: enqueuer}
}

// Send runs or queues the weekly digest.
// POST /api/v1/admin/digests/weekly
func (h *Handler) Send(c *gin.Context) {
	var req transport.SendRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.FieldErrors(err))
		return
	}

	v, err := h.resolve(c, req.Vertical)
	if httpkit.HandleError(c, err) {
		return
	}

	if h.enqueuer != nil && !req.DryRun {
		taskID, err := h.enqueuer.EnqueueWeeklyDigest(c.Request.Context(), v.Slug, req.Force)
		if httpkit.HandleError(c, err) {
			return
		}
		httpkit.JSON(c, http.StatusAccepted, transport.SendResponse{
			Message:  "Weekly digest queued",
			Vertical: v.Slug,
			Queued:   true,
			TaskID:   taskID,
		})
		return
	}

	result, err := h.svc.Send(c.Request.Context(), v, service.SendOptions{DryRun: req.DryRun, Force: req.Force})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Preview renders this week's digest without sending it.
// GET /api/v1/admin/digests/weekly/preview?vertical=
func (h *Handler) Preview(c *gin.Context) {
	v, ok := h.resolveQuery(c)
	if !ok {
		return
	}

	preview, err := h.svc.Build(c.Request.Context(), v)
	if httpkit.HandleError(c, err) {
		return
	}
	c.Header("X-Digest-Subject", preview.Subject)
	c.Data(http.StatusOK, htmlContentType, []byte(preview.HTML))
}

// Runs lists recent digest runs.
// GET /api/v1/admin/digests/runs?vertical=
func (h *Handler) Runs(c *gin.Context) {
	v, ok := h.resolveQuery(c)
	if !ok {
		return
	}

	result, err := h.svc.Runs(c.Request.Context(), v)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Archived serves the browser copy of a past digest.
// GET /api/v1/digests/:vertical/:week
func (h *Handler) Archived(c *gin.Context) {
	v, err := h.resolve(c, c.Param("vertical"))
	if httpkit.HandleError(c, err) {
		return
	}

	week := strings.TrimSuffix(c.Param("week"), ".html")
	data, err := h.svc.Archived(c.Request.Context(), v, week)
	if httpkit.HandleError(c, err) {
		return
	}
	c.Header("Cache-Control", "public, max-age=86400")
	c.Data(http.StatusOK, htmlContentType, data)
}

func (h *Handler) resolveQuery(c *gin.Context) (*vertical.Vertical, bool) {
	var query transport.VerticalQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return nil, false
	}
	if err := h.val.Struct(query); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.FieldErrors(err))
		return nil, false
	}
	v, err := h.resolve(c, query.Vertical)
	if httpkit.HandleError(c, err) {
		return nil, false
	}
	return v, true
}

func (h *Handler) resolve(c *gin.Context, slug string) (*vertical.Vertical, error) {
	if strings.TrimSpace(slug) == "" {
		return vertical.FromContext(c, h.reg.Default()), nil
	}
	v, ok := h.reg.BySlug(slug)
	if !ok {
		return nil, apperr.BadRequest(msgUnknownVertical).WithDetails(map[string]any{"valid": h.reg.Slugs()})
	}
	return v, nil
}
