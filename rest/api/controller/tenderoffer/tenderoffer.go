package tenderoffer

import (
	"strconv"
	"time"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"

	"github.com/capclear/tenderbroker/models"
	"github.com/capclear/tenderbroker/rest/api"
	"github.com/capclear/tenderbroker/service/tenderoffer"
	"github.com/capclear/tenderbroker/tberrors"
)

type CreateRequest struct {
	Name                  string          `json:"name"`
	StartsAt              time.Time       `json:"starts_at"`
	EndsAt                time.Time       `json:"ends_at"`
	TotalShareLimit       decimal.Decimal `json:"total_share_limit"`
	TotalAmountLimitCents int64           `json:"total_amount_limit_cents"`
}

func Create(ctx api.Context) {
	req := CreateRequest{}

	if err := ctx.Read(&req); err != nil {
		ctx.RespondError(tberrors.RequestBodyLoadFailure.WithError(err))
		return
	}

	srv := ctx.Services().TenderOffer().WithTx(ctx.Tx())

	offer, err := srv.Create(&models.TenderOffer{
		Name:                  req.Name,
		StartsAt:              req.StartsAt,
		EndsAt:                req.EndsAt,
		TotalShareLimit:       req.TotalShareLimit,
		TotalAmountLimitCents: req.TotalAmountLimitCents,
	})
	if err != nil {
		ctx.RespondError(err)
		return
	}

	ctx.Respond(offer)
}

func Get(ctx api.Context) {
	id, err := offerID(ctx)
	if err != nil {
		ctx.RespondError(err)
		return
	}

	srv := ctx.Services().TenderOffer().WithTx(ctx.Tx())

	if offer, err := srv.GetByID(id); err != nil {
		ctx.RespondError(err)
	} else {
		ctx.Respond(offer)
	}
}

func List(ctx api.Context) {
	srv := ctx.Services().TenderOffer().WithTx(ctx.Tx())

	if offers, err := srv.List(); err != nil {
		ctx.RespondError(err)
	} else {
		ctx.Respond(offers)
	}
}

func Cancel(ctx api.Context) {
	id, err := offerID(ctx)
	if err != nil {
		ctx.RespondError(err)
		return
	}

	srv := ctx.Services().TenderOffer().WithTx(ctx.Tx())

	if offer, err := srv.Cancel(id); err != nil {
		ctx.RespondError(err)
	} else {
		ctx.Respond(offer)
	}
}

// Preview runs the allocator without persisting anything. The offer's
// ceilings can be overridden via query parameters for what-if runs.
func Preview(ctx api.Context) {
	id, err := offerID(ctx)
	if err != nil {
		ctx.RespondError(err)
		return
	}

	overrides := tenderoffer.Overrides{}

	if v := ctx.URLParam("total_amount_limit_cents"); v != "" {
		cents, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			ctx.RespondError(tberrors.InvalidRequestParam.WithMsg("invalid total_amount_limit_cents"))
			return
		}
		overrides.TotalAmountLimitCents = &cents
	}

	if v := ctx.URLParam("total_share_limit"); v != "" {
		shares, err := decimal.NewFromString(v)
		if err != nil {
			ctx.RespondError(tberrors.InvalidRequestParam.WithMsg("invalid total_share_limit"))
			return
		}
		overrides.TotalShareLimit = &shares
	}

	srv := ctx.Services().TenderOffer().WithTx(ctx.Tx())

	if alloc, err := srv.Preview(id, overrides); err != nil {
		ctx.RespondError(err)
	} else {
		ctx.Respond(alloc)
	}
}

func Settle(ctx api.Context) {
	id, err := offerID(ctx)
	if err != nil {
		ctx.RespondError(err)
		return
	}

	srv := ctx.Services().TenderOffer().WithTx(ctx.SerializableTx())

	if offer, err := srv.Settle(id); err != nil {
		ctx.RespondError(err)
	} else {
		ctx.Respond(offer)
	}
}

func offerID(ctx api.Context) (uuid.UUID, error) {
	id, err := uuid.FromString(ctx.Params().Get("offer_id"))
	if err != nil {
		return uuid.Nil, tberrors.InvalidRequestParam.WithMsg("invalid offer_id")
	}
	return id, nil
}
