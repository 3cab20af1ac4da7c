package investor

import (
	"github.com/gofrs/uuid"

	"github.com/capclear/tenderbroker/models"
	"github.com/capclear/tenderbroker/rest/api"
	"github.com/capclear/tenderbroker/tberrors"
)

type CreateRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

func Create(ctx api.Context) {
	req := CreateRequest{}

	if err := ctx.Read(&req); err != nil {
		ctx.RespondError(tberrors.RequestBodyLoadFailure.WithError(err))
		return
	}

	srv := ctx.Services().Investor().WithTx(ctx.Tx())

	inv, err := srv.Create(&models.Investor{Email: req.Email, Name: req.Name})
	if err != nil {
		ctx.RespondError(err)
		return
	}

	ctx.Respond(inv)
}

func Get(ctx api.Context) {
	id, err := uuid.FromString(ctx.Params().Get("investor_id"))
	if err != nil {
		ctx.RespondError(tberrors.InvalidRequestParam.WithMsg("invalid investor_id"))
		return
	}

	if ctx.Session().Permission != api.PermissionAdmin && !ctx.Session().Authorized(id) {
		ctx.RespondError(tberrors.Forbidden)
		return
	}

	srv := ctx.Services().Investor().WithTx(ctx.Tx())

	inv, err := srv.GetByID(id)
	if err != nil {
		ctx.RespondError(err)
		return
	}

	ctx.Respond(inv)
}

func List(ctx api.Context) {
	srv := ctx.Services().Investor().WithTx(ctx.Tx())

	investors, err := srv.List()
	if err != nil {
		ctx.RespondError(err)
		return
	}

	ctx.Respond(investors)
}
