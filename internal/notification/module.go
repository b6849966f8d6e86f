// Package notification sends email notifications in response to domain
// events. Delivery is best effort: a failed email never fails the operation
// that triggered it.
package notification

import (
	"context"

	"contratos_backend/internal/events"
	"contratos_backend/platform/logger"
)

// ContractEmailSender delivers the contract-generated email.
type ContractEmailSender interface {
	SendContractGeneratedEmail(ctx context.Context, toEmail, clientName, contractNumber string) error
}

// Module subscribes to domain events and dispatches emails.
type Module struct {
	sender ContractEmailSender
	log    *logger.Logger
}

// NewModule creates the notification module. sender may be nil when email is
// disabled; events are then acknowledged without sending.
func NewModule(sender ContractEmailSender, log *logger.Logger) *Module {
	return &Module{sender: sender, log: log}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "notification"
}

// RegisterHandlers subscribes to the events this module reacts to.
func (m *Module) RegisterHandlers(bus *events.InMemoryBus) {
	bus.Subscribe(events.ContractGenerated{}.EventName(), m)
}

// Handle routes events to the appropriate sender.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	e, ok := event.(events.ContractGenerated)
	if !ok {
		return nil
	}
	if m.sender == nil || e.ClientEmail == "" {
		return nil
	}

	if err := m.sender.SendContractGeneratedEmail(ctx, e.ClientEmail, e.ClientName, e.ContractNumber); err != nil {
		m.log.Error("contract email failed", "saleId", e.SaleID, "error", err)
		return err
	}

	m.log.Info("contract email sent", "saleId", e.SaleID, "contractNumber", e.ContractNumber)
	return nil
}
