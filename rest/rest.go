// The rest package defines tenderbroker's RESTful API service
package rest

import (
	"context"

	"github.com/kataras/iris"

	"github.com/capclear/tenderbroker/rest/api"
	"github.com/capclear/tenderbroker/rest/api/binder"
	"github.com/capclear/tenderbroker/service/registry"
	"github.com/capclear/tenderbroker/utils"
)

var app *iris.Application

func Start(port string, services registry.Registry) error {
	return run((":" + port), services)
}

func Shutdown(ctx context.Context) error {
	if app != nil {
		return app.Shutdown(ctx)
	}
	return nil
}

func bindAPI(api *api.API, binder func(*api.API, iris.Party)) func(iris.Party) {
	return func(r iris.Party) {
		binder(api, r)
	}
}

func run(host string, services registry.Registry) error {
	app = iris.New()

	apis := api.New(api.NewAuthenticator(), services)

	// tender offer API (v1)
	app.PartyFunc("/tenderbroker/api/v1", bindAPI(apis, binder.Tender))

	// heartbeat
	app.HandleMany("GET HEAD", "/tenderbroker/heartbeat", func(ctx iris.Context) {
		ctx.StatusCode(iris.StatusOK)
		ctx.JSON(struct {
			Status  string `json:"status"`
			Version string `json:"version"`
		}{
			"alive", utils.Version,
		})
	})

	return app.Run(
		iris.Addr(host),
		iris.WithConfiguration(iris.Configuration{
			// Disable it to re-fetch request body again for logging purpose.
			DisableBodyConsumptionOnUnmarshal: true,
			// Enable real IP forwarding, which is reliable when it is on private proxy.
			RemoteAddrHeaders: map[string]bool{
				"X-Forwarded-For": true,
			},
		}),
		iris.WithoutInterruptHandler,
	)
}
