package main

import (
	"flag"
	"log"
	"os"

	"NeelyWave/internal/di"
	"NeelyWave/pkg/config"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	log.Printf("env=%s source=%s cache=%s kafka=%t schedule=%t",
		cfg.Environment, cfg.Source.Type, cfg.Cache.Type, cfg.Kafka.Enabled, cfg.Schedule.Enabled)

	app, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	// blocks until SIGINT or SIGTERM
	if err := app.Run(); err != nil {
		log.Printf("app error: %v", err)
		os.Exit(1)
	}
}
