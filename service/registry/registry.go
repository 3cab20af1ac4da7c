package registry

import (
	"github.com/capclear/tenderbroker/service/bid"
	"github.com/capclear/tenderbroker/service/investor"
	"github.com/capclear/tenderbroker/service/shareclass"
	"github.com/capclear/tenderbroker/service/tenderoffer"
)

type Registry interface {
	Investor() investor.InvestorService
	ShareClass() shareclass.ShareClassService
	Bid() bid.BidService
	TenderOffer() tenderoffer.TenderOfferService
}
