package main

import (
	"log"

	"github.com/Algoraver22/employee-hr-platform/internal/app"
	"github.com/Algoraver22/employee-hr-platform/internal/bootstrap"
	"github.com/Algoraver22/employee-hr-platform/internal/config"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := bootstrap.NewLogger(cfg.IsProduction())
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if err := app.RunConsumer(cfg); err != nil {
		logger.Fatal("run consumer failed", zap.Error(err))
	}
}
