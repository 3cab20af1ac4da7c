package tbreg

import (
	"github.com/capclear/tenderbroker/service/bid"
	"github.com/capclear/tenderbroker/service/investor"
	"github.com/capclear/tenderbroker/service/registry"
	"github.com/capclear/tenderbroker/service/shareclass"
	"github.com/capclear/tenderbroker/service/tenderoffer"
)

// Services is the default service registry used by the REST layer
// and the workers.
var Services registry.Registry = &tbRegistry{}

type tbRegistry struct{}

func (r *tbRegistry) Investor() investor.InvestorService {
	return investor.Service()
}

func (r *tbRegistry) ShareClass() shareclass.ShareClassService {
	return shareclass.Service()
}

func (r *tbRegistry) Bid() bid.BidService {
	return bid.Service(r.ShareClass())
}

func (r *tbRegistry) TenderOffer() tenderoffer.TenderOfferService {
	return tenderoffer.Service(r.ShareClass())
}
