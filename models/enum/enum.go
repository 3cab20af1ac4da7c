package enum

type OfferStatus string

const (
	// offer is accepting bids until its end time passes
	OfferOpen OfferStatus = "OPEN"
	// end time passed and settlement has persisted the clearing
	// price and per-bid allocations
	OfferSettled OfferStatus = "SETTLED"
	// withdrawn by an admin before settlement - bids are void
	OfferCanceled OfferStatus = "CANCELED"
)
