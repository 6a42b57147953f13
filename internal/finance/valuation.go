package finance

// Multiples are the SDE multiple range a vertical's businesses typically trade at.
type Multiples struct {
	Min    float64
	Median float64
	Max    float64
}

// Valuation is an implied price range from cash flow and Multiples.
type Valuation struct {
	Low    float64 `json:"low"`
	Median float64 `json:"median"`
	High   float64 `json:"high"`
}

// Position describes where an asking price falls relative to a Valuation.
type Position string

const (
	PositionUnknown Position = "unknown"
	PositionBelow   Position = "below_range"
	PositionWithin  Position = "within_range"
	PositionAbove   Position = "above_range"
)

// Value computes the implied range. It reports false when cash flow is not positive.
func Value(annualCashFlow float64, m Multiples) (Valuation, bool) {
	if annualCashFlow <= 0 {
		return Valuation{}, false
	}
	return Valuation{
		Low:    annualCashFlow * m.Min,
		Median: annualCashFlow * m.Median,
		High:   annualCashFlow * m.Max,
	}, true
}

// Assess places price within v.
func Assess(price float64, v Valuation) Position {
	switch {
	case price <= 0 || v.High <= 0:
		return PositionUnknown
	case price < v.Low:
		return PositionBelow
	case price > v.High:
		return PositionAbove
	default:
		return PositionWithin
	}
}
