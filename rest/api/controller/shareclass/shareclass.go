package shareclass

import (
	"github.com/shopspring/decimal"

	"github.com/capclear/tenderbroker/models"
	"github.com/capclear/tenderbroker/rest/api"
	"github.com/capclear/tenderbroker/tberrors"
)

type CreateRequest struct {
	Name            string          `json:"name"`
	AvailableShares decimal.Decimal `json:"available_shares"`
	Fractional      bool            `json:"fractional"`
}

func Create(ctx api.Context) {
	req := CreateRequest{}

	if err := ctx.Read(&req); err != nil {
		ctx.RespondError(tberrors.RequestBodyLoadFailure.WithError(err))
		return
	}

	srv := ctx.Services().ShareClass().WithTx(ctx.Tx())

	class, err := srv.Create(&models.ShareClass{
		Name:            req.Name,
		AvailableShares: req.AvailableShares,
		Fractional:      req.Fractional,
	})
	if err != nil {
		ctx.RespondError(err)
		return
	}

	ctx.Respond(class)
}

func List(ctx api.Context) {
	srv := ctx.Services().ShareClass().WithTx(ctx.Tx())

	classes, err := srv.List()
	if err != nil {
		ctx.RespondError(err)
		return
	}

	ctx.Respond(classes)
}
