package binder

import (
	"github.com/iris-contrib/middleware/cors"
	"github.com/kataras/iris"

	"github.com/capclear/tenderbroker/rest/api"
	"github.com/capclear/tenderbroker/rest/api/controller/bid"
	"github.com/capclear/tenderbroker/rest/api/controller/investor"
	"github.com/capclear/tenderbroker/rest/api/controller/shareclass"
	"github.com/capclear/tenderbroker/rest/api/controller/tenderoffer"
	"github.com/capclear/tenderbroker/rest/api/middleware/httplogger"
	"github.com/capclear/tenderbroker/utils"
)

// Tender binds the tender offer API handlers to their endpoints
func Tender(api *api.API, r iris.Party) {
	r.Use(httplogger.New())

	// CORS
	{
		getOrigins := func() []string {
			switch {
			case utils.Prod():
				return []string{"https://app.capclear.io"}
			default:
				// staging/dev mode
				return []string{"*"}
			}
		}

		crs := cors.New(cors.Options{
			AllowedOrigins: getOrigins(),
			AllowedMethods: []string{
				iris.MethodGet,
				iris.MethodPost,
				iris.MethodDelete,
				iris.MethodOptions,
			},
			AllowedHeaders:     []string{"*"},
			AllowCredentials:   true,
			OptionsPassthrough: false,
		})

		r.Use(crs)
		r.AllowMethods(iris.MethodOptions) // <- important for the preflight.
	}

	// investors
	r.Post("/investors", api.AuthenticateAdmin(investor.Create))
	r.Get("/investors", api.AuthenticateAdmin(investor.List))
	r.Get("/investors/{investor_id}", api.Authenticate(investor.Get))

	// share classes
	r.Post("/share_classes", api.AuthenticateAdmin(shareclass.Create))
	r.Get("/share_classes", api.Authenticate(shareclass.List))

	// tender offers
	r.Post("/tender_offers", api.AuthenticateAdmin(tenderoffer.Create))
	r.Get("/tender_offers", api.Authenticate(tenderoffer.List))
	r.Get("/tender_offers/{offer_id}", api.Authenticate(tenderoffer.Get))
	r.Delete("/tender_offers/{offer_id}", api.AuthenticateAdmin(tenderoffer.Cancel))

	// bids
	r.Post("/tender_offers/{offer_id}/bids", api.Authenticate(bid.Create, utils.StandBy()))
	r.Get("/tender_offers/{offer_id}/bids", api.AuthenticateAdmin(bid.List))
	r.Get("/bids", api.Authenticate(bid.ListMine))

	// allocation
	r.Get("/tender_offers/{offer_id}/allocation/preview", api.AuthenticateAdmin(tenderoffer.Preview))
	r.Post("/tender_offers/{offer_id}/settle", api.AuthenticateAdmin(tenderoffer.Settle))
}
