package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"exits_backend/internal/subscribers/service"
	"exits_backend/internal/subscribers/transport"
	"exits_backend/internal/vertical"
	"exits_backend/platform/httpkit"
	"exits_backend/platform/validator"
)

// Handler handles HTTP requests for subscriptions.
type Handler struct {
	svc *service.Service
	val *validator.Validator
	reg *vertical.Registry
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// New creates a new subscribers handler.
func New(svc *service.Service, val *validator.Validator, reg *vertical.Registry) *Handler {
	return &Handler{svc: svc, val: val, reg: reg}
}

// Subscribe starts the double opt-in flow.
// POST /api/v1/subscribe
func (h *Handler) Subscribe(c *gin.Context) {
	var req transport.SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.FieldErrors(err))
		return
	}

	v := vertical.FromContext(c, h.reg.Default())
	result, err := h.svc.Subscribe(c.Request.Context(), req.Email, v.Slug)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Confirm redeems a confirmation token from a JSON body.
// POST /api/v1/subscribe/confirm
func (h *Handler) Confirm(c *gin.Context) {
	var req transport.TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	h.confirm(c, req)
}

// ConfirmLink redeems a confirmation token from the emailed link.
// GET /api/v1/subscribe/confirm?token=
func (h *Handler) ConfirmLink(c *gin.Context) {
	h.confirm(c, transport.TokenRequest{Token: c.Query("token")})
}

func (h *Handler) confirm(c *gin.Context, req transport.TokenRequest) {
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.FieldErrors(err))
		return
	}
	result, err := h.svc.Confirm(c.Request.Context(), req.Token)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// LookupUnsubscribe returns the email an unsubscribe token belongs to.
// GET /api/v1/unsubscribe?token=
func (h *Handler) LookupUnsubscribe(c *gin.Context) {
	req := transport.TokenRequest{Token: c.Query("token")}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.FieldErrors(err))
		return
	}
	result, err := h.svc.LookupUnsubscribe(c.Request.Context(), req.Token)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Unsubscribe opts the token's owner out of the digest.
// POST /api/v1/unsubscribe
func (h *Handler) Unsubscribe(c *gin.Context) {
	var req transport.TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.FieldErrors(err))
		return
	}
	result, err := h.svc.Unsubscribe(c.Request.Context(), req.Token)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}
