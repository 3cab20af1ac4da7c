// Package auction implements the uniform clearing price computation and
// proportional share allocation for tender offers. The computation is a
// pure function over an in-memory snapshot of bids - it performs no I/O
// and holds no locks, so callers are free to re-run it for what-if
// previews with overridden limits.
package auction

import (
	"sort"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

// Bid is an investor's standing offer to sell shares of a single class
// back to the company at or above a minimum price. Clear writes the
// allocation onto AcceptedShares; the other fields are read-only inputs.
type Bid struct {
	ID             uuid.UUID
	InvestorID     uuid.UUID
	ShareClass     string
	Quantity       decimal.Decimal
	PriceCents     int64
	AcceptedShares decimal.Decimal
}

// ClassLimit caps how many shares of a class are eligible to participate.
// Fractional classes (convertible instrument equivalents and other
// synthetic classes) keep full decimal precision in their allocations;
// all other classes settle in whole shares.
type ClassLimit struct {
	Available  decimal.Decimal
	Fractional bool
}

// Input is the full snapshot the allocator operates on. A share class
// missing from ClassLimits is treated as an uncapped whole-share class.
// TotalShareLimit and TotalAmountLimitCents may be the offer's own
// ceilings or caller-supplied overrides.
type Input struct {
	Bids                  []*Bid
	ClassLimits           map[string]ClassLimit
	TotalShareLimit       decimal.Decimal
	TotalAmountLimitCents int64
}

// Result reports the uniform clearing price and the aggregate accepted
// shares/cents. Per-bid allocations are written back onto the input bids.
// ClearingPriceCents is nil when there are no valid bids.
type Result struct {
	ClearingPriceCents *int64
	AcceptedShares     decimal.Decimal
	AcceptedCents      decimal.Decimal
	ClassRatios        map[string]decimal.Decimal
	LimitingFactor     decimal.Decimal
}

// Clear determines the clearing price for the given bids and allocates
// accepted shares per bid.
//
// A bid is in the money when its price is at or below the clearing price
// (the bid price is the minimum the seller will take; everyone accepted
// is paid the clearing price). The clearing price is the distinct bid
// price at which the offer can buy the most shares without breaching the
// share ceiling, the dollar ceiling, or any class ceiling; ties go to the
// higher price. Within a class every in-the-money bid is filled at the
// same ratio, and a single limiting factor - identical across classes -
// scales the grand total down to the global ceilings.
//
// Bids with non-positive quantity or price are ignored. The computation
// is deterministic: identical input always yields identical output.
func Clear(in Input) Result {
	bids := make([]*Bid, 0, len(in.Bids))
	for _, b := range in.Bids {
		b.AcceptedShares = decimal.Zero
		if b.Quantity.Sign() > 0 && b.PriceCents > 0 {
			bids = append(bids, b)
		}
	}

	res := Result{
		AcceptedShares: decimal.Zero,
		AcceptedCents:  decimal.Zero,
		ClassRatios:    map[string]decimal.Decimal{},
		LimitingFactor: decimal.Zero,
	}

	if len(bids) == 0 {
		return res
	}

	budget := decimal.New(in.TotalAmountLimitCents, 0)

	var (
		clearing int64
		best     = decimal.New(-1, 0)
	)
	for _, price := range candidatePrices(bids) {
		if s := purchasableAt(bids, in, budget, price); s.GreaterThan(best) {
			best = s
			clearing = price
		}
	}

	res.ClearingPriceCents = &clearing
	allocate(bids, in, budget, clearing, &res)

	return res
}

// divFloor divides truncating toward zero. Every ceiling-to-ratio
// conversion uses it: a half-up quotient can land a hair above the exact
// value, which would push an otherwise exact fractional allocation over
// the ceiling it was derived from. Truncation errs under, never over.
func divFloor(a, b decimal.Decimal) decimal.Decimal {
	q, _ := a.QuoRem(b, int32(decimal.DivisionPrecision))
	return q
}

// candidatePrices returns the distinct bid prices in descending order.
// The clearing price is always one of these - price-takers can only be
// cleared at a price somebody actually bid.
func candidatePrices(bids []*Bid) []int64 {
	seen := map[int64]bool{}
	prices := make([]int64, 0, len(bids))
	for _, b := range bids {
		if !seen[b.PriceCents] {
			seen[b.PriceCents] = true
			prices = append(prices, b.PriceCents)
		}
	}
	sort.Slice(prices, func(i, j int) bool { return prices[i] > prices[j] })
	return prices
}

// rawDemand sums, per share class, the quantities of bids in the money at
// the given price.
func rawDemand(bids []*Bid, price int64) map[string]decimal.Decimal {
	demand := map[string]decimal.Decimal{}
	for _, b := range bids {
		if b.PriceCents <= price {
			demand[b.ShareClass] = demand[b.ShareClass].Add(b.Quantity)
		}
	}
	return demand
}

// purchasableAt computes how many shares the offer could buy at the given
// candidate price: cumulative in-the-money demand capped per class, then
// capped by the global share ceiling and by the dollar ceiling converted
// to shares at that price.
func purchasableAt(bids []*Bid, in Input, budget decimal.Decimal, price int64) decimal.Decimal {
	total := decimal.Zero
	for class, qty := range rawDemand(bids, price) {
		if limit, ok := in.ClassLimits[class]; ok && qty.GreaterThan(limit.Available) {
			qty = limit.Available
		}
		total = total.Add(qty)
	}

	if total.GreaterThan(in.TotalShareLimit) {
		total = in.TotalShareLimit
	}

	if budgetShares := divFloor(budget, decimal.New(price, 0)); total.GreaterThan(budgetShares) {
		total = budgetShares
	}

	return total
}

// allocate fills AcceptedShares on every in-the-money bid at the clearing
// price. Each class is first scaled to its own ceiling, then the grand
// total is scaled by a uniform limiting factor so neither global ceiling
// is breached. Whole-share classes truncate per bid, which can only leave
// the aggregate under the ceilings, never over.
func allocate(bids []*Bid, in Input, budget decimal.Decimal, clearing int64, res *Result) {
	raw := rawDemand(bids, clearing)

	one := decimal.New(1, 0)
	capped := decimal.Zero
	for class, qty := range raw {
		ratio := one
		if limit, ok := in.ClassLimits[class]; ok && qty.GreaterThan(limit.Available) {
			// qty > limit >= 0 so qty is strictly positive here
			ratio = divFloor(limit.Available, qty)
		}
		res.ClassRatios[class] = ratio
		capped = capped.Add(qty.Mul(ratio))
	}

	factor := one
	if capped.GreaterThan(in.TotalShareLimit) {
		factor = divFloor(in.TotalShareLimit, capped)
	}
	if capped.Sign() > 0 {
		if budgetShares := divFloor(budget, decimal.New(clearing, 0)); capped.Mul(factor).GreaterThan(budgetShares) {
			factor = divFloor(budgetShares, capped)
		}
	}
	if factor.Sign() < 0 {
		factor = decimal.Zero
	}
	res.LimitingFactor = factor

	price := decimal.New(clearing, 0)
	for _, b := range bids {
		if b.PriceCents > clearing {
			continue
		}

		accepted := b.Quantity.Mul(res.ClassRatios[b.ShareClass]).Mul(factor)

		if limit, ok := in.ClassLimits[b.ShareClass]; !ok || !limit.Fractional {
			accepted = accepted.Floor()
		}

		b.AcceptedShares = accepted
		res.AcceptedShares = res.AcceptedShares.Add(accepted)
		res.AcceptedCents = res.AcceptedCents.Add(accepted.Mul(price))
	}
}
