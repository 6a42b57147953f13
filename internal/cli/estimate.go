package cli

import (
	"fmt"
	"io"

	"exits_backend/internal/finance"

	"github.com/spf13/cobra"
)

// EstimateResult is the estimate command output.
type EstimateResult struct {
	Vertical  string                  `json:"vertical"`
	Financing finance.RoundedScenario `json:"financing"`
	Badge     string                  `json:"multiple_badge,omitempty"`
	Valuation *finance.Valuation      `json:"valuation,omitempty"`
	Position  finance.Position        `json:"price_position"`
}

// NewEstimateCommand creates the estimate command.
func NewEstimateCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		price    float64
		cashFlow float64
		slug     string
	)

	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Project acquisition financing for a price and annual cash flow",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, v, err := rootOpts.resolveVertical(slug)
			if err != nil {
				return err
			}

			scenario := finance.Estimate(price, cashFlow)
			result := EstimateResult{
				Vertical:  v.Slug,
				Financing: scenario.Rounded(),
				Badge:     finance.MultipleLabel(scenario.Multiple),
				Position:  finance.PositionUnknown,
			}
			if valuation, ok := finance.Value(cashFlow, v.Valuation.SDE.Multiples()); ok {
				result.Valuation = &valuation
				result.Position = finance.Assess(price, valuation)
			}

			return newFormatter(rootOpts, cmd.OutOrStdout()).Success(result, func(w io.Writer) {
				writeEstimate(w, scenario, result)
			})
		},
	}

	cmd.Flags().Float64Var(&price, "price", 0, "asking price in dollars")
	cmd.Flags().Float64Var(&cashFlow, "cash-flow", 0, "annual cash flow (SDE) in dollars")
	cmd.Flags().StringVar(&slug, "vertical", "", "vertical whose valuation multiples apply")

	return cmd
}

func writeEstimate(w io.Writer, s finance.Scenario, r EstimateResult) {
	fmt.Fprintf(w, "Down payment (10%%):      %s\n", finance.Dollars(s.DownPayment))
	fmt.Fprintf(w, "Loan amount (90%%):       %s\n", finance.Dollars(s.LoanAmount))
	fmt.Fprintf(w, "Monthly payment:         %s\n", finance.Dollars(s.MonthlyPayment))
	fmt.Fprintf(w, "Annual debt service:     %s\n", finance.Dollars(s.AnnualDebtService))
	fmt.Fprintf(w, "Cash flow after debt:    %s\n", finance.Dollars(s.AnnualCashFlowAfterDebt))

	multiple := s.Multiple.String()
	if r.Badge != "" {
		multiple += " (" + r.Badge + ")"
	}
	fmt.Fprintf(w, "Price / SDE multiple:    %s\n", multiple)

	if r.Valuation != nil {
		fmt.Fprintf(w, "Implied range (%s):  %s - %s, %s\n",
			r.Vertical, finance.Dollars(r.Valuation.Low), finance.Dollars(r.Valuation.High), r.Position)
	}
}
