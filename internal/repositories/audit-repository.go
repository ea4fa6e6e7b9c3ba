package repositories

import (
	"context"
	"encoding/json"
	"fmt"

	"lending-system/internal/entities"

	"github.com/jackc/pgx/v5/pgxpool"
)

type AuditRepositoryInterface interface {
	Create(ctx context.Context, entry entities.AuditEntry) error
}

type AuditRepository struct {
	storage *pgxpool.Pool
}

func NewAuditRepository(storage *pgxpool.Pool) AuditRepositoryInterface {
	return &AuditRepository{storage: storage}
}

func (r *AuditRepository) Create(ctx context.Context, entry entities.AuditEntry) error {
	payload, err := json.Marshal(entry.Payload)
	if err != nil {
		return fmt.Errorf("не удалось сериализовать событие: %w", err)
	}

	var actorID *uint64
	if entry.ActorID != 0 {
		actorID = &entry.ActorID
	}

	_, err = r.storage.Exec(ctx, `
		INSERT INTO reservation_audit_log (reservation_id, actor_id, event, payload)
		VALUES ($1, $2, $3, $4)`,
		entry.ReservationID, actorID, entry.Event, payload,
	)
	return err
}
