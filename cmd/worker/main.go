package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"contratos_backend/internal/crm"
	"contratos_backend/internal/scheduler"
	"contratos_backend/platform/config"
	"contratos_backend/platform/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting worker", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	crmClient := crm.NewClient(cfg, log)

	worker, err := scheduler.NewWorker(cfg, crmClient, log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	worker.Run(ctx)
}
