// Package payments holds the gateway's payment rules: generic order tiers,
// the payment methods offered for an amount and the checkout catalogue.
package payments

import "math"

// GatewaySource is stamped into every gateway PaymentIntent's metadata and is
// the only thing the webhook forwarder uses to recognise its own payments.
const GatewaySource = "payment-gateway"

// Metadata keys written onto gateway PaymentIntents.
const (
	MetadataRef    = "ref"
	MetadataSource = "source"
)

// Klarna and Affirm refuse orders below this many dollars.
const DelayedMethodsMinimum = 35.0

const (
	DescriptionBasic = "Basic Technology Consultation"
	DescriptionMid   = "Mid Tier Technology Consultation"
	DescriptionAllIn = "All-In Consultation"
)

// Description returns the generic statement description for a dollar amount.
// Both thresholds are inclusive on the lower tier.
func Description(amount float64) string {
	switch {
	case amount <= 100:
		return DescriptionBasic
	case amount <= 500:
		return DescriptionMid
	default:
		return DescriptionAllIn
	}
}

// PaymentMethodTypes returns the Stripe payment method types offered for a
// dollar amount. Card is always first.
func PaymentMethodTypes(amount float64) []string {
	methods := []string{"card"}
	if amount >= DelayedMethodsMinimum {
		methods = append(methods, "klarna", "affirm")
	}
	return methods
}

// ToCents converts dollars to integer cents, rounding half away from zero.
func ToCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// FromCents converts Stripe minor units back to dollars.
func FromCents(cents int64) float64 {
	return float64(cents) / 100
}

// Tier is one fixed consultation package sold through Stripe Checkout.
type Tier struct {
	Key         string
	Name        string
	Description string
	UnitAmount  int64 // cents
}

var tiers = map[string]Tier{
	"basic": {
		Key:         "basic",
		Name:        DescriptionBasic,
		Description: "A focused 1-hour session covering technology assessment, recommendations, and a written summary.",
		UnitAmount:  14900,
	},
	"mid": {
		Key:         "mid",
		Name:        DescriptionMid,
		Description: "A comprehensive half-day engagement including systems review, architecture planning, and a detailed roadmap.",
		UnitAmount:  49900,
	},
	"allin": {
		Key:         "allin",
		Name:        DescriptionAllIn,
		Description: "Full-service multi-day consultation with hands-on systems build planning, fulfillment strategy, and ongoing support.",
		UnitAmount:  149900,
	},
}

// LookupTier returns the catalogue entry for key.
func LookupTier(key string) (Tier, bool) {
	t, ok := tiers[key]
	return t, ok
}
