package auction

import (
	"testing"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBid(class, qty string, priceCents int64) *Bid {
	return &Bid{
		ID:         uuid.Must(uuid.NewV4()),
		InvestorID: uuid.Must(uuid.NewV4()),
		ShareClass: class,
		Quantity:   decimal.RequireFromString(qty),
		PriceCents: priceCents,
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// two bids, no binding limits - everyone clears at the highest bid price
func TestFullClearingAtHighestBid(t *testing.T) {
	low := newBid("Common", "100", 1000)
	high := newBid("Common", "200", 1200)

	res := Clear(Input{
		Bids:                  []*Bid{low, high},
		ClassLimits:           map[string]ClassLimit{},
		TotalShareLimit:       dec("1000000"),
		TotalAmountLimitCents: 100000000,
	})

	require.NotNil(t, res.ClearingPriceCents)
	assert.EqualValues(t, 1200, *res.ClearingPriceCents)
	assert.True(t, low.AcceptedShares.Equal(dec("100")))
	assert.True(t, high.AcceptedShares.Equal(dec("200")))
	assert.True(t, res.AcceptedShares.Equal(dec("300")))
}

// same bids, but the global share ceiling forces uniform rationing -
// the clearing price stays at the high bid and both fills scale by 0.5
func TestShareCeilingForcesUniformRationing(t *testing.T) {
	low := newBid("Common", "100", 1000)
	high := newBid("Common", "200", 1200)

	res := Clear(Input{
		Bids: []*Bid{low, high},
		ClassLimits: map[string]ClassLimit{
			"Common": {Available: dec("1000000")},
		},
		TotalShareLimit:       dec("150"),
		TotalAmountLimitCents: 100000000,
	})

	require.NotNil(t, res.ClearingPriceCents)
	assert.EqualValues(t, 1200, *res.ClearingPriceCents)
	assert.True(t, low.AcceptedShares.Equal(dec("50")))
	assert.True(t, high.AcceptedShares.Equal(dec("100")))
	assert.True(t, res.LimitingFactor.Equal(dec("0.5")))
}

// two classes with very different caps and a binding dollar ceiling -
// the clearing price lands on the interior equilibrium and every
// in-the-money bid across both classes fills at the same ~38.6% factor
func TestDollarCeilingEquilibriumAcrossClasses(t *testing.T) {
	a1 := newBid("Class A", "2000", 1100)
	a2 := newBid("Class A", "11000", 1138)
	b1 := newBid("Class B", "8000", 1100)
	b2 := newBid("Class B", "22000", 1138)
	b3 := newBid("Class B", "5000", 1150)
	b4 := newBid("Class B", "1000", 1200)

	res := Clear(Input{
		Bids: []*Bid{a1, a2, b1, b2, b3, b4},
		ClassLimits: map[string]ClassLimit{
			"Class A": {Available: dec("10500")},
			"Class B": {Available: dec("1000000")},
		},
		TotalShareLimit:       dec("100000"),
		TotalAmountLimitCents: 17790000,
	})

	require.NotNil(t, res.ClearingPriceCents)
	assert.EqualValues(t, 1138, *res.ClearingPriceCents)

	// uniform fill factor ~0.386 across both classes
	factor, _ := res.LimitingFactor.Float64()
	assert.InDelta(t, 0.386, factor, 0.001)

	assert.True(t, a1.AcceptedShares.Equal(dec("623")))
	assert.True(t, a2.AcceptedShares.Equal(dec("3429")))
	assert.True(t, b1.AcceptedShares.Equal(dec("3087")))
	assert.True(t, b2.AcceptedShares.Equal(dec("8491")))

	// priced above the clearing price - excluded entirely
	assert.True(t, b3.AcceptedShares.IsZero())
	assert.True(t, b4.AcceptedShares.IsZero())

	assert.True(t, res.AcceptedShares.Equal(dec("15630")))
	assert.True(t, res.AcceptedCents.LessThanOrEqual(dec("17790000")))
}

// fractional classes keep decimal precision, whole-share classes truncate
func TestFractionalClassKeepsPrecision(t *testing.T) {
	safe := newBid("Crowd SAFE", "150.5", 800)
	common := newBid("Common", "100", 800)

	res := Clear(Input{
		Bids: []*Bid{safe, common},
		ClassLimits: map[string]ClassLimit{
			"Crowd SAFE": {Available: dec("10000"), Fractional: true},
			"Common":     {Available: dec("10000")},
		},
		TotalShareLimit:       dec("100000"),
		TotalAmountLimitCents: 100000000,
	})

	require.NotNil(t, res.ClearingPriceCents)
	assert.EqualValues(t, 800, *res.ClearingPriceCents)
	assert.True(t, safe.AcceptedShares.Equal(dec("150.5")))
	assert.True(t, common.AcceptedShares.Equal(dec("100")))
}

func TestFractionalClassKeepsPrecisionUnderRationing(t *testing.T) {
	safe := newBid("Crowd SAFE", "150.5", 800)

	res := Clear(Input{
		Bids: []*Bid{safe},
		ClassLimits: map[string]ClassLimit{
			"Crowd SAFE": {Available: dec("10000"), Fractional: true},
		},
		TotalShareLimit:       dec("75.25"),
		TotalAmountLimitCents: 100000000,
	})

	require.NotNil(t, res.ClearingPriceCents)
	assert.True(t, safe.AcceptedShares.Equal(dec("75.25")))
}

// a fractional fill that consumes the dollar ceiling almost exactly -
// half-up division would overshoot the ceiling by a hair here, so the
// ceiling-to-ratio conversions must truncate
func TestTightDollarCeilingNeverOvershoots(t *testing.T) {
	c1 := newBid("Common", "1", 3177)
	s1 := newBid("Crowd SAFE", "1", 1)
	c2 := newBid("Common", "1", 3177)
	s2 := newBid("Crowd SAFE", "2087", 3176)

	res := Clear(Input{
		Bids: []*Bid{c1, s1, c2, s2},
		ClassLimits: map[string]ClassLimit{
			"Common":     {Available: dec("5000")},
			"Crowd SAFE": {Available: dec("1000000"), Fractional: true},
		},
		TotalShareLimit:       dec("2084"),
		TotalAmountLimitCents: 3179,
	})

	require.NotNil(t, res.ClearingPriceCents)
	assert.EqualValues(t, 3176, *res.ClearingPriceCents)

	// the ceiling binds almost exactly, but is never exceeded
	assert.True(t, res.AcceptedCents.LessThanOrEqual(dec("3179")))
	assert.True(t, res.AcceptedCents.GreaterThan(dec("3178")))
	assert.True(t, res.AcceptedShares.LessThanOrEqual(dec("2084")))
}

func TestNoBids(t *testing.T) {
	res := Clear(Input{
		Bids:                  []*Bid{},
		ClassLimits:           map[string]ClassLimit{},
		TotalShareLimit:       dec("100"),
		TotalAmountLimitCents: 100000,
	})

	assert.Nil(t, res.ClearingPriceCents)
	assert.True(t, res.AcceptedShares.IsZero())
}

// a class with a zero ceiling gets nothing, without disturbing the others
func TestZeroLimitClass(t *testing.T) {
	frozen := newBid("Frozen", "500", 900)
	common := newBid("Common", "100", 1000)

	res := Clear(Input{
		Bids: []*Bid{frozen, common},
		ClassLimits: map[string]ClassLimit{
			"Frozen": {Available: decimal.Zero},
			"Common": {Available: dec("10000")},
		},
		TotalShareLimit:       dec("10000"),
		TotalAmountLimitCents: 100000000,
	})

	require.NotNil(t, res.ClearingPriceCents)
	assert.EqualValues(t, 1000, *res.ClearingPriceCents)
	assert.True(t, frozen.AcceptedShares.IsZero())
	assert.True(t, common.AcceptedShares.Equal(dec("100")))
}

// non-positive quantities and prices never reach the aggregate sums
func TestInvalidBidsIgnored(t *testing.T) {
	bad1 := newBid("Common", "0", 1000)
	bad2 := newBid("Common", "-5", 1000)
	bad3 := newBid("Common", "10", 0)
	good := newBid("Common", "10", 1000)

	res := Clear(Input{
		Bids:                  []*Bid{bad1, bad2, bad3, good},
		ClassLimits:           map[string]ClassLimit{},
		TotalShareLimit:       dec("10000"),
		TotalAmountLimitCents: 100000000,
	})

	require.NotNil(t, res.ClearingPriceCents)
	assert.EqualValues(t, 1000, *res.ClearingPriceCents)
	assert.True(t, bad1.AcceptedShares.IsZero())
	assert.True(t, bad2.AcceptedShares.IsZero())
	assert.True(t, bad3.AcceptedShares.IsZero())
	assert.True(t, good.AcceptedShares.Equal(dec("10")))
	assert.True(t, res.AcceptedShares.Equal(dec("10")))
}

// multiple bids from one investor are evaluated independently, and bids
// priced exactly at the clearing price are in the money
func TestSameInvestorIndependentBids(t *testing.T) {
	investor := uuid.Must(uuid.NewV4())

	b1 := newBid("Common", "100", 1000)
	b1.InvestorID = investor
	b2 := newBid("Common", "50", 1200)
	b2.InvestorID = investor

	res := Clear(Input{
		Bids:                  []*Bid{b1, b2},
		ClassLimits:           map[string]ClassLimit{},
		TotalShareLimit:       dec("1000000"),
		TotalAmountLimitCents: 100000000,
	})

	require.NotNil(t, res.ClearingPriceCents)
	assert.EqualValues(t, 1200, *res.ClearingPriceCents)
	assert.True(t, b1.AcceptedShares.Equal(dec("100")))
	assert.True(t, b2.AcceptedShares.Equal(dec("50")))
}

// unsatisfiable ceilings resolve by rationing, never by faulting
func TestDegenerateCeilings(t *testing.T) {
	b := newBid("Common", "100", 1000)

	res := Clear(Input{
		Bids:                  []*Bid{b},
		ClassLimits:           map[string]ClassLimit{},
		TotalShareLimit:       decimal.Zero,
		TotalAmountLimitCents: 0,
	})

	require.NotNil(t, res.ClearingPriceCents)
	assert.EqualValues(t, 1000, *res.ClearingPriceCents)
	assert.True(t, b.AcceptedShares.IsZero())
	assert.True(t, res.AcceptedShares.IsZero())
	assert.True(t, res.LimitingFactor.IsZero())
}
