// Package phone normalizes the optional phone field buyers leave on lead forms.
package phone

import (
	"errors"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// DefaultRegion is assumed for numbers typed without a country code.
// Every vertical site targets US buyers.
const DefaultRegion = "US"

// errInvalid is returned by parse when input is not a dialable number.
var errInvalid = errors.New("phone: invalid number")

// parse returns input in E.164 form, interpreting national numbers in region.
// An empty region means DefaultRegion.
func parse(input, region string) (string, error) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return "", errInvalid
	}
	if region == "" {
		region = DefaultRegion
	}

	num, err := phonenumbers.Parse(raw, region)
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return "", errInvalid
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}

// NormalizeE164 is the lenient form used for lead capture: a number that
// cannot be parsed is kept as typed (trimmed) so the broker still sees it.
func NormalizeE164(input string) string {
	if e164, err := parse(input, DefaultRegion); err == nil {
		return e164
	}
	return strings.TrimSpace(input)
}
