// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"contratos_backend/platform/events"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
	InMemoryBus = events.InMemoryBus
)

// Re-export platform functions
var (
	NewBaseEvent   = events.NewBaseEvent
	NewInMemoryBus = events.NewInMemoryBus
)

// =============================================================================
// Sales Domain Events
// =============================================================================

// FeedRefreshed is published after a CRM feed was reconciled and swapped in.
type FeedRefreshed struct {
	BaseEvent
	Generation  uint64 `json:"generation"`
	RecordCount int    `json:"recordCount"`
	DateStart   string `json:"dateStart,omitempty"`
	DateEnd     string `json:"dateEnd,omitempty"`
}

func (e FeedRefreshed) EventName() string { return "sales.feed.refreshed" }

// SaleDeleted is published once the local tombstone is durably written.
// Remote propagation happens independently.
type SaleDeleted struct {
	BaseEvent
	SaleID string `json:"saleId"`
	Reason string `json:"reason,omitempty"`
}

func (e SaleDeleted) EventName() string { return "sales.sale.deleted" }

// SaleRestored is published when a tombstone is explicitly removed.
type SaleRestored struct {
	BaseEvent
	SaleID string `json:"saleId"`
}

func (e SaleRestored) EventName() string { return "sales.sale.restored" }

// =============================================================================
// Contracts Domain Events
// =============================================================================

// ContractGenerated is published after the CRM accepted a contract creation.
type ContractGenerated struct {
	BaseEvent
	SaleID         string `json:"saleId"`
	ContractNumber string `json:"contractNumber"`
	ClientName     string `json:"clientName"`
	ClientEmail    string `json:"clientEmail,omitempty"`
	ExecutiveName  string `json:"executiveName,omitempty"`
}

func (e ContractGenerated) EventName() string { return "contracts.contract.generated" }

// ContractNumberRejected is published when the CRM rejected a number as
// duplicate, before the allocator retries.
type ContractNumberRejected struct {
	BaseEvent
	SaleID         string `json:"saleId"`
	ContractNumber string `json:"contractNumber"`
}

func (e ContractNumberRejected) EventName() string { return "contracts.number.rejected" }
