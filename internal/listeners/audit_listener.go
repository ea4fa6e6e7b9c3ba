package listeners

import (
	"context"
	"fmt"

	"lending-system/internal/entities"
	"lending-system/internal/events"
	"lending-system/internal/repositories"
	"lending-system/pkg/eventbus"

	"go.uber.org/zap"
)

// AuditListener пишет события заявок в reservation_audit_log.
type AuditListener struct {
	auditRepo repositories.AuditRepositoryInterface
	logger    *zap.Logger
}

func NewAuditListener(auditRepo repositories.AuditRepositoryInterface, logger *zap.Logger) *AuditListener {
	return &AuditListener{auditRepo: auditRepo, logger: logger}
}

func (l *AuditListener) Register(bus *eventbus.Bus) {
	for _, name := range events.AllReservationEvents {
		bus.Subscribe(name, l.handle)
	}
	l.logger.Info("AuditListener подписан на события заявок", zap.Int("events", len(events.AllReservationEvents)))
}

func (l *AuditListener) handle(ctx context.Context, event eventbus.Event) error {
	e, ok := event.(events.ReservationEvent)
	if !ok {
		return fmt.Errorf("неожиданный тип события %T", event)
	}

	payload := e.Details
	if payload == nil {
		payload = map[string]interface{}{}
	}

	err := l.auditRepo.Create(ctx, entities.AuditEntry{
		ReservationID: e.ReservationID,
		ActorID:       e.ActorID,
		Event:         e.EventName,
		Payload:       payload,
	})
	if err != nil {
		return fmt.Errorf("не удалось записать событие %s заявки %d: %w", e.EventName, e.ReservationID, err)
	}

	l.logger.Debug("Событие заявки записано в журнал",
		zap.String("event", e.EventName),
		zap.Uint64("reservationID", e.ReservationID),
	)
	return nil
}
