package scheduler

import (
	"context"
	"fmt"

	"contratos_backend/platform/config"
	"contratos_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// SaleDeleter removes a sale from the CRM. A sale already absent remotely
// counts as success.
type SaleDeleter interface {
	DeleteSale(ctx context.Context, saleID string) error
}

type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	crm    SaleDeleter
	log    *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, crm SaleDeleter, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server: server,
		mux:    mux,
		crm:    crm,
		log:    log,
	}

	mux.HandleFunc(TaskSaleDeleteSync, w.handleSaleDeleteSync)

	return w, nil
}

func (w *Worker) handleSaleDeleteSync(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseSaleDeleteSyncPayload(task)
	if err != nil {
		return err
	}
	if payload.SaleID == "" {
		return nil
	}

	if err := w.crm.DeleteSale(ctx, payload.SaleID); err != nil {
		w.log.SyncEvent("sale delete sync", payload.SaleID, err)
		return err
	}

	w.log.SyncEvent("sale delete sync", payload.SaleID, nil)
	return nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
