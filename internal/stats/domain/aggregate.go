// Package domain computes dashboard aggregates over a reconciled record set.
package domain

import (
	"math"

	sales "contratos_backend/internal/sales/domain"
)

// Stats summarizes one record set. ByStage always carries every known stage,
// zeroed when empty, and its counts sum to Total.
type Stats struct {
	Total        int              `json:"total"`
	ByStage      map[string]int   `json:"byStage"`
	TotalValue   int64            `json:"totalValue"`
	ApprovalRate float64          `json:"approvalRate"`
}

// Aggregate computes the stats for a record set. Pure: the input is never
// mutated and equal inputs yield equal outputs.
//
// A rejected raw status lowers the approval rate but does not move the record
// out of its canonical stage, so rejections stay visible in the pipeline.
func Aggregate(records []sales.SaleRecord) Stats {
	byStage := make(map[string]int, len(sales.Stages))
	for _, stage := range sales.Stages {
		byStage[string(stage)] = 0
	}

	var totalValue int64
	rejected := 0
	for _, r := range records {
		byStage[string(r.Stage)]++
		totalValue += r.TotalValue
		if sales.IsRejectedStatus(r.RawStatus) {
			rejected++
		}
	}

	total := len(records)
	rate := 0.0
	if total > 0 {
		rate = math.Round(float64(total-rejected)/float64(total)*1000) / 10
	}

	return Stats{
		Total:        total,
		ByStage:      byStage,
		TotalValue:   totalValue,
		ApprovalRate: rate,
	}
}
