package payments

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDescriptionTierBoundaries(t *testing.T) {
	cases := []struct {
		amount float64
		want   string
	}{
		{0.5, DescriptionBasic},
		{99.99, DescriptionBasic},
		{100, DescriptionBasic},
		{100.01, DescriptionMid},
		{250, DescriptionMid},
		{500, DescriptionMid},
		{500.01, DescriptionAllIn},
		{12000, DescriptionAllIn},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, Description(tc.amount), "amount %v", tc.amount)
	}
}

func TestPaymentMethodTypes(t *testing.T) {
	require.Equal(t, []string{"card"}, PaymentMethodTypes(1))
	require.Equal(t, []string{"card"}, PaymentMethodTypes(34.99))
	require.Equal(t, []string{"card", "klarna", "affirm"}, PaymentMethodTypes(35))
	require.Equal(t, []string{"card", "klarna", "affirm"}, PaymentMethodTypes(1499))
}

func TestToCentsUsesDollars(t *testing.T) {
	require.Equal(t, int64(14999), ToCents(149.99))
	require.Equal(t, int64(1), ToCents(0.005))
	require.Equal(t, int64(3500), ToCents(35))
	require.Equal(t, int64(1010), ToCents(10.1))
	require.InDelta(t, 149.99, FromCents(14999), 1e-9)
}

func TestLookupTier(t *testing.T) {
	tier, ok := LookupTier("mid")
	require.True(t, ok)
	require.Equal(t, int64(49900), tier.UnitAmount)
	require.Equal(t, DescriptionMid, tier.Name)

	_, ok = LookupTier("platinum")
	require.False(t, ok)
}
