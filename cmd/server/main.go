package main

import (
	app "vitals-monitor/internal/app/server"
	"vitals-monitor/internal/config"
)

func main() {
	cfg := config.Load()
	config.SetupLogging(cfg.Server.LogLevel)
	app.Run(cfg)
}
