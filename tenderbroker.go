package main

import (
	stdContext "context"
	"flag"
	"strings"
	"time"

	"github.com/alpacahq/gopaca/clock"
	"github.com/alpacahq/gopaca/db"
	"github.com/alpacahq/gopaca/env"
	"github.com/alpacahq/gopaca/log"

	"github.com/capclear/tenderbroker/rest"
	"github.com/capclear/tenderbroker/tbreg"
	"github.com/capclear/tenderbroker/utils/initializer"
	"github.com/capclear/tenderbroker/utils/signalman"
)

func shutdown() error {
	timeout := time.Second
	ctx, cancel := stdContext.WithTimeout(stdContext.Background(), timeout)
	defer cancel()
	return rest.Shutdown(ctx)
}

func init() {
	// set the clock
	clock.Set()

	// register env defaults
	initializer.Initialize()

	flag.Parse()

	// set deployment level on logger
	log.Logger().SetDeploymentLevel(env.GetVar("BROKER_MODE"))

	signalman.RegisterFunc("rest_shutdown", shutdown)
}

func main() {
	log.Info("tenderbroker is live", "mode", env.GetVar("BROKER_MODE"), "clock", clock.Now())

	signalman.Start()

	if err := rest.Start(env.GetVar("API_PORT"), tbreg.Services); err != nil {
		if !strings.Contains(err.Error(), "Server closed") {
			log.Fatal("rest server unexpectedly exited", "error", err)
		}
	}

	defer db.DB().Close()

	log.Info("waiting for graceful shutdown")
	signalman.Wait()
}
