package main

import (
	"fmt"

	"github.com/MKhiriev/go-finance-sync/internal/client"
	"github.com/MKhiriev/go-finance-sync/internal/config"
	"github.com/MKhiriev/go-finance-sync/internal/logger"
	"github.com/MKhiriev/go-finance-sync/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

// defaultTUILogFile keeps log lines off the terminal the badge draws on.
const defaultTUILogFile = "finsync.log"

func main() {
	printBuildInfo()

	bootLog := logger.NewLogger("finsync")
	cfg, err := config.GetClientConfig()
	if err != nil {
		bootLog.Fatal().Err(err).Msg("error getting configs")
	}

	logFile := cfg.Log.File
	if cfg.App.TUI && logFile == "" {
		logFile = defaultTUILogFile
	}
	log := logger.NewClientLogger("finsync", logFile)
	defer log.Close()

	log.Debug().
		Str("api", cfg.Adapter.HTTPAddress).
		Str("control_api", cfg.Server.HTTPAddress).
		Str("grpc", cfg.Server.GRPCAddress).
		Dur("sync_interval", cfg.Workers.SyncInterval).
		Msg("received configs")

	app, err := client.NewApp(cfg, models.NewAppBuildInfo(buildVersion, buildDate, buildCommit), log)
	if err != nil {
		log.Fatal().Err(err).Msg("init sync agent error")
	}

	if err = app.Run(); err != nil {
		log.Error().Err(err).Msg("sync agent run error")
	}
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}
	if buildDate == "" {
		buildDate = "N/A"
	}
	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
