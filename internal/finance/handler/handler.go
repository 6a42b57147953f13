// Package handler serves the public financing calculator.
package handler

import (
	"math"
	"net/http"

	"github.com/gin-gonic/gin"

	"exits_backend/internal/finance"
	"exits_backend/internal/vertical"
	"exits_backend/platform/httpkit"
	"exits_backend/platform/validator"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// EstimateQuery is the calculator input. Absent values are treated as zero;
// NaN and Inf are rejected.
type EstimateQuery struct {
	Price    float64 `form:"price" validate:"finite,gte=0"`
	CashFlow float64 `form:"cash_flow" validate:"finite"`
}

// EstimateResponse is the calculator output in whole dollars.
type EstimateResponse struct {
	Vertical  string                  `json:"vertical"`
	Price     int64                   `json:"price"`
	CashFlow  int64                   `json:"cash_flow"`
	Financing finance.RoundedScenario `json:"financing"`
	Badge     string                  `json:"multiple_badge,omitempty"`
	Valuation *finance.Valuation      `json:"valuation,omitempty"`
	Position  finance.Position        `json:"price_position"`
}

type Handler struct {
	val *validator.Validator
	reg *vertical.Registry
}

func New(val *validator.Validator, reg *vertical.Registry) *Handler {
	return &Handler{val: val, reg: reg}
}

// RegisterRoutes mounts /finance/estimate.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/finance/estimate", h.Estimate)
}

// Estimate projects financing for a hypothetical listing.
// GET /api/v1/finance/estimate?price=&cash_flow=
func (h *Handler) Estimate(c *gin.Context) {
	var req EstimateQuery
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.FieldErrors(err))
		return
	}

	v := vertical.FromContext(c, h.reg.Default())
	scenario := finance.Estimate(req.Price, req.CashFlow)
	resp := EstimateResponse{
		Vertical:  v.Slug,
		Price:     int64(math.Round(scenario.Price)),
		CashFlow:  int64(math.Round(scenario.AnnualCashFlow)),
		Financing: scenario.Rounded(),
		Badge:     finance.MultipleLabel(scenario.Multiple),
		Position:  finance.PositionUnknown,
	}

	if valuation, ok := finance.Value(req.CashFlow, v.Valuation.SDE.Multiples()); ok {
		resp.Valuation = &valuation
		resp.Position = finance.Assess(req.Price, valuation)
	}

	httpkit.OK(c, resp)
}
