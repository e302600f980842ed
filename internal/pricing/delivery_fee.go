package pricing

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var ukPostcodeRe = regexp.MustCompile(`^(GIR ?0AA|[A-Z]{1,2}[0-9][A-Z0-9]? ?[0-9][A-Z]{2})$`)

// FeeRules configures the delivery fee charged on top of the cart total.
type FeeRules struct {
	FlatFee                decimal.Decimal
	FreeThreshold          decimal.Decimal
	WaivedPostcodePrefixes []string
}

// DeliveryFee returns the fee for a cart of subtotal delivered to postcode.
// Waived postcode areas and subtotals at or above the threshold ship free.
func DeliveryFee(subtotal decimal.Decimal, postcode string, rules FeeRules) decimal.Decimal {
	if PostcodeWaived(postcode, rules.WaivedPostcodePrefixes) {
		return decimal.Zero
	}
	if rules.FreeThreshold.IsPositive() && subtotal.GreaterThanOrEqual(rules.FreeThreshold) {
		return decimal.Zero
	}
	return rules.FlatFee
}

// PostcodeWaived reports whether postcode starts with one of prefixes.
func PostcodeWaived(postcode string, prefixes []string) bool {
	normalized := NormalizePostcode(postcode)
	if normalized == "" {
		return false
	}
	for _, prefix := range prefixes {
		p := NormalizePostcode(prefix)
		if p != "" && strings.HasPrefix(normalized, p) {
			return true
		}
	}
	return false
}

// NormalizePostcode upper-cases and trims a postcode, collapsing inner whitespace to one space.
func NormalizePostcode(postcode string) string {
	return strings.Join(strings.Fields(strings.ToUpper(postcode)), " ")
}

// ValidPostcode reports whether postcode looks like a UK postcode.
func ValidPostcode(postcode string) bool {
	return ukPostcodeRe.MatchString(NormalizePostcode(postcode))
}
