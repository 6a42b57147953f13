// Package finance projects SBA-style acquisition financing for a listing.
// All figures stay unrounded float64 until Rounded or Dollars is called.
package finance

import (
	"fmt"
	"math"
)

// Terms are the loan assumptions applied to every listing.
type Terms struct {
	DownPaymentRate    float64
	LoanRate           float64
	AnnualInterestRate float64
	TermMonths         int
}

// StandardTerms: 10% down, 90% financed at 8% APR over 10 years.
var StandardTerms = Terms{
	DownPaymentRate:    0.10,
	LoanRate:           0.90,
	AnnualInterestRate: 0.08,
	TermMonths:         120,
}

// Multiple is price divided by annual cash flow. Applicable is false when
// cash flow is absent or not positive.
type Multiple struct {
	Value      float64
	Applicable bool
}

// String renders "2.4x" or "N/A".
func (m Multiple) String() string {
	if !m.Applicable {
		return "N/A"
	}
	return fmt.Sprintf("%.1fx", m.Value)
}

// Scenario is the derived financing projection for one listing.
type Scenario struct {
	Price                   float64
	AnnualCashFlow          float64
	DownPayment             float64
	LoanAmount              float64
	MonthlyPayment          float64
	AnnualDebtService       float64
	AnnualCashFlowAfterDebt float64
	Multiple                Multiple
}

// Estimate applies StandardTerms.
func Estimate(price, annualCashFlow float64) Scenario {
	return EstimateWith(StandardTerms, price, annualCashFlow)
}

// EstimateWith projects financing under terms. Negative or NaN inputs are
// treated as zero, so the function is total.
func EstimateWith(terms Terms, price, annualCashFlow float64) Scenario {
	price = nonNegative(price)
	cashFlowInput := annualCashFlow
	if math.IsNaN(cashFlowInput) {
		cashFlowInput = 0
	}

	s := Scenario{
		Price:          price,
		AnnualCashFlow: cashFlowInput,
		DownPayment:    price * terms.DownPaymentRate,
		LoanAmount:     price * terms.LoanRate,
	}
	s.MonthlyPayment = MonthlyPayment(s.LoanAmount, terms.AnnualInterestRate, terms.TermMonths)
	s.AnnualDebtService = s.MonthlyPayment * 12
	s.AnnualCashFlowAfterDebt = cashFlowInput - s.AnnualDebtService

	if cashFlowInput > 0 {
		s.Multiple = Multiple{Value: price / cashFlowInput, Applicable: true}
	}
	return s
}

// EstimatePtr accepts nullable store columns; nil behaves as zero.
func EstimatePtr(price, annualCashFlow *int64) Scenario {
	var p, cf float64
	if price != nil {
		p = float64(*price)
	}
	if annualCashFlow != nil {
		cf = float64(*annualCashFlow)
	}
	return Estimate(p, cf)
}

// MonthlyPayment is the standard amortization formula
// P * r * (1+r)^n / ((1+r)^n - 1). A zero principal or term yields 0 and a
// zero rate degrades to straight-line repayment.
func MonthlyPayment(principal, annualRate float64, months int) float64 {
	if principal <= 0 || months <= 0 {
		return 0
	}
	r := annualRate / 12
	if r == 0 {
		return principal / float64(months)
	}
	growth := math.Pow(1+r, float64(months))
	return principal * r * growth / (growth - 1)
}

// RoundedScenario carries whole-dollar figures for display.
type RoundedScenario struct {
	DownPayment             int64    `json:"down_payment"`
	LoanAmount              int64    `json:"loan_amount"`
	MonthlyPayment          int64    `json:"monthly_payment"`
	AnnualDebtService       int64    `json:"annual_debt_service"`
	AnnualCashFlowAfterDebt int64    `json:"annual_cash_flow_after_debt"`
	Multiple                *float64 `json:"price_to_sde_multiple"`
	MultipleLabel           string   `json:"price_to_sde_multiple_label"`
}

// Rounded rounds every monetary figure to the nearest dollar.
func (s Scenario) Rounded() RoundedScenario {
	out := RoundedScenario{
		DownPayment:             roundDollars(s.DownPayment),
		LoanAmount:              roundDollars(s.LoanAmount),
		MonthlyPayment:          roundDollars(s.MonthlyPayment),
		AnnualDebtService:       roundDollars(s.AnnualDebtService),
		AnnualCashFlowAfterDebt: roundDollars(s.AnnualCashFlowAfterDebt),
		MultipleLabel:           s.Multiple.String(),
	}
	if s.Multiple.Applicable {
		v := math.Round(s.Multiple.Value*10) / 10
		out.Multiple = &v
	}
	return out
}

// MultipleLabel classifies a multiple against typical small-business ranges:
// above 4x "High", below 2.5x "Low", otherwise "Market". N/A yields "".
func MultipleLabel(m Multiple) string {
	if !m.Applicable {
		return ""
	}
	switch {
	case m.Value > 4:
		return "High"
	case m.Value < 2.5:
		return "Low"
	default:
		return "Market"
	}
}

func roundDollars(v float64) int64 {
	return int64(math.Round(v))
}

func nonNegative(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	return v
}
