package seeders

import (
	"context"
	"fmt"
	"log"

	"lending-system/pkg/constants"

	"github.com/jackc/pgx/v5/pgxpool"
)

func seedEquipment(ctx context.Context, db *pgxpool.Pool) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var availableID uint64
	if err := tx.QueryRow(ctx, `SELECT id FROM equipment_statuses WHERE code = $1`, constants.EquipmentAvailable).Scan(&availableID); err != nil {
		return fmt.Errorf("не найден статус %s: %w", constants.EquipmentAvailable, err)
	}

	serial := 0
	for _, r := range rackData {
		log.Printf("  - Стойка %s: %d устройств", r.Name, r.Devices)
		if _, err := tx.Exec(ctx,
			`INSERT INTO racks (name, location, total_capacity, functional_capacity) VALUES ($1, $2, $3, $3)
			 ON CONFLICT (name) DO NOTHING`,
			r.Name, r.Location, r.Capacity); err != nil {
			return fmt.Errorf("стойка %s: %w", r.Name, err)
		}
		var rackID uint64
		if err := tx.QueryRow(ctx, `SELECT id FROM racks WHERE name = $1`, r.Name).Scan(&rackID); err != nil {
			return fmt.Errorf("стойка %s: %w", r.Name, err)
		}
		for i := 0; i < r.Devices; i++ {
			serial++
			sn := fmt.Sprintf("CB-%05d", serial)
			if _, err := tx.Exec(ctx,
				`INSERT INTO devices (name, serial_number, model, rack_id, status_id)
				 VALUES ($1, $2, $3, $4, $5) ON CONFLICT (serial_number) DO NOTHING`,
				"Chromebook "+sn, sn, "Lenovo 100e", rackID, availableID); err != nil {
				return fmt.Errorf("устройство %s: %w", sn, err)
			}
		}
	}
	return tx.Commit(ctx)
}
