package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"exits_backend/internal/listings/service"
	"exits_backend/internal/listings/transport"
	"exits_backend/internal/vertical"
	"exits_backend/platform/httpkit"
	"exits_backend/platform/validator"
)

// Handler handles HTTP requests for listings.
type Handler struct {
	svc *service.Service
	val *validator.Validator
	reg *vertical.Registry
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidID        = "invalid listing id"

	// Edge caches may serve search results for a week while revalidating.
	searchCacheControl = "s-maxage=604800, stale-while-revalidate=604800"
)

// New creates a new listings handler.
func New(svc *service.Service, val *validator.Validator, reg *vertical.Registry) *Handler {
	return &Handler{svc: svc, val: val, reg: reg}
}

// Search lists listings.
// GET /api/v1/listings
func (h *Handler) Search(c *gin.Context) {
	var req transport.SearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.FieldErrors(err))
		return
	}

	v := vertical.FromContext(c, h.reg.Default())
	result, err := h.svc.Search(c.Request.Context(), v, req)
	if httpkit.HandleError(c, err) {
		return
	}
	c.Header("Cache-Control", searchCacheControl)
	httpkit.OK(c, result)
}

// Daily lists today's listings for the resolved vertical.
// GET /api/v1/listings/daily
func (h *Handler) Daily(c *gin.Context) {
	v := vertical.FromContext(c, h.reg.Default())
	result, err := h.svc.DailyFeed(c.Request.Context(), v)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Detail returns one listing with financing and valuation.
// GET /api/v1/listings/:id
func (h *Handler) Detail(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" || len(id) > 128 {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	v := vertical.FromContext(c, h.reg.Default())
	result, err := h.svc.Detail(c.Request.Context(), id, v)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// State returns the landing page data for a state.
// GET /api/v1/states/:state
func (h *Handler) State(c *gin.Context) {
	v := vertical.FromContext(c, h.reg.Default())
	result, err := h.svc.StatePage(c.Request.Context(), v, c.Param("state"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}
