package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskSaleDeleteSync = "crm.sale.delete_sync"

type SaleDeleteSyncPayload struct {
	SaleID string `json:"saleId"`
}

func NewSaleDeleteSyncTask(payload SaleDeleteSyncPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSaleDeleteSync, data), nil
}

func ParseSaleDeleteSyncPayload(task *asynq.Task) (SaleDeleteSyncPayload, error) {
	var payload SaleDeleteSyncPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return SaleDeleteSyncPayload{}, err
	}
	return payload, nil
}
