package finance

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.AmericanEnglish)

// Dollars formats v as whole US dollars with thousands separators, e.g. "$2,400,000".
func Dollars(v float64) string {
	rounded := int64(math.Round(v))
	if rounded < 0 {
		return printer.Sprintf("-$%d", -rounded)
	}
	return printer.Sprintf("$%d", rounded)
}

// DollarsPtr formats a nullable amount; nil renders as fallback.
func DollarsPtr(v *int64, fallback string) string {
	if v == nil {
		return fallback
	}
	return Dollars(float64(*v))
}
