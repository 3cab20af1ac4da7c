package initializer

import (
	"github.com/alpacahq/gopaca/env"
)

// Initialize tenderbroker's required environment variables
// to their default values.
func Initialize() {
	// Broker
	env.RegisterDefault("BROKER_MODE", "DEV")
	env.RegisterDefault("BROKER_SECRET", "XgPMeyzDRVrRJ0mgVzaLBqsuWootq3Ca")
	env.RegisterDefault("ADMIN_SECRET", "c0smV1euPdRVrqh6a3vbCUM1gSMAZy2i")
	env.RegisterDefault("LOG_LEVEL", "INFO")
	env.RegisterDefault("API_PORT", "5995")
	env.RegisterDefault("STANDBY_MODE", "FALSE")
	env.RegisterDefault("SETTLEMENT_WORKER_INTERVAL", "1m")

	// Postgres
	env.RegisterDefault("PGDATABASE", "tenderbroker")
	env.RegisterDefault("PGHOST", "127.0.0.1")
	env.RegisterDefault("PGUSER", "postgres")
	env.RegisterDefault("PGPASSWORD", "alpacas")
}
