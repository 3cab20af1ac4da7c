package bid

import (
	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"

	"github.com/capclear/tenderbroker/models"
	"github.com/capclear/tenderbroker/rest/api"
	"github.com/capclear/tenderbroker/tberrors"
)

type CreateRequest struct {
	ShareClass string          `json:"share_class"`
	Quantity   decimal.Decimal `json:"quantity"`
	PriceCents int64           `json:"price_cents"`
}

// Create places a bid on an open offer for the authenticated investor.
func Create(ctx api.Context) {
	offerID, err := uuid.FromString(ctx.Params().Get("offer_id"))
	if err != nil {
		ctx.RespondError(tberrors.InvalidRequestParam.WithMsg("invalid offer_id"))
		return
	}

	req := CreateRequest{}

	if err := ctx.Read(&req); err != nil {
		ctx.RespondError(tberrors.RequestBodyLoadFailure.WithError(err))
		return
	}

	srv := ctx.Services().Bid().WithTx(ctx.Tx())

	b, err := srv.Create(offerID, &models.Bid{
		InvestorID:     ctx.Session().ID.String(),
		ShareClassName: req.ShareClass,
		Quantity:       req.Quantity,
		PriceCents:     req.PriceCents,
	})
	if err != nil {
		ctx.RespondError(err)
		return
	}

	ctx.Respond(b)
}

// List returns every bid on an offer. Admin only - investors see their
// own bids through ListMine.
func List(ctx api.Context) {
	offerID, err := uuid.FromString(ctx.Params().Get("offer_id"))
	if err != nil {
		ctx.RespondError(tberrors.InvalidRequestParam.WithMsg("invalid offer_id"))
		return
	}

	srv := ctx.Services().Bid().WithTx(ctx.Tx())

	if bids, err := srv.List(offerID); err != nil {
		ctx.RespondError(err)
	} else {
		ctx.Respond(bids)
	}
}

// ListMine returns the authenticated investor's bids across all offers.
func ListMine(ctx api.Context) {
	srv := ctx.Services().Bid().WithTx(ctx.Tx())

	if bids, err := srv.ListByInvestor(ctx.Session().ID); err != nil {
		ctx.RespondError(err)
	} else {
		ctx.Respond(bids)
	}
}
