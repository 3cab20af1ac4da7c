package main

import (
	"flag"
	"fmt"
	"sync"
	"time"

	"github.com/alpacahq/gopaca/clock"
	"github.com/alpacahq/gopaca/env"
	"github.com/alpacahq/gopaca/log"
	"github.com/robfig/cron"

	"github.com/capclear/tenderbroker/utils"
	"github.com/capclear/tenderbroker/utils/initializer"
	"github.com/capclear/tenderbroker/utils/signalman"
	"github.com/capclear/tenderbroker/workers/settlement"
)

var (
	cronWg sync.WaitGroup
	c      *cron.Cron
)

func shutdown() error {
	// stop crons so no new ones start
	if c != nil {
		c.Stop()
	}

	// wait for existing crons to finish
	cronWg.Wait()

	// sleep a second to let things cleanup
	<-time.After(time.Second)
	return nil
}

func init() {
	// set the clock
	clock.Set()

	// register env defaults
	initializer.Initialize()

	flag.Parse()

	// set deployment level on logger
	log.Logger().SetDeploymentLevel(env.GetVar("BROKER_MODE"))

	signalman.RegisterFunc("workers_shutdown", shutdown)
	signalman.Start()
}

func main() {
	if utils.StandBy() {
		log.Info("starting in standby mode - no crons will be run")
		signalman.Wait()
		return
	}

	c = cron.New()

	// settlement worker
	log.Info(
		"starting settlement worker",
		"interval",
		env.GetVar("SETTLEMENT_WORKER_INTERVAL"))

	c.AddFunc(fmt.Sprintf("@every %v", env.GetVar("SETTLEMENT_WORKER_INTERVAL")), func() {
		cronWg.Add(1)
		defer cronWg.Done()
		settlement.Work()
	})

	c.Start()

	signalman.Wait()
}
