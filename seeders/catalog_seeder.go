package seeders

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// upsertID вставляет строку или возвращает id существующей.
func upsertID(ctx context.Context, tx pgx.Tx, insert, selectQuery string, args ...interface{}) (uint64, error) {
	if _, err := tx.Exec(ctx, insert, args...); err != nil {
		return 0, err
	}
	var id uint64
	if err := tx.QueryRow(ctx, selectQuery, args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func seedAcademics(ctx context.Context, db *pgxpool.Pool) error {
	log.Println("  - Наполнение факультетов, программ и предметов...")
	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for faculty, programs := range facultyData {
		facultyID, err := upsertID(ctx, tx,
			`INSERT INTO faculties (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`,
			`SELECT id FROM faculties WHERE name = $1`, faculty)
		if err != nil {
			return fmt.Errorf("факультет %s: %w", faculty, err)
		}
		for program, subjects := range programs {
			programID, err := upsertID(ctx, tx,
				`INSERT INTO programs (name, faculty_id) VALUES ($1, $2) ON CONFLICT (name, faculty_id) DO NOTHING`,
				`SELECT id FROM programs WHERE name = $1 AND faculty_id = $2`, program, facultyID)
			if err != nil {
				return fmt.Errorf("программа %s: %w", program, err)
			}
			for _, subject := range subjects {
				if _, err := tx.Exec(ctx,
					`INSERT INTO subjects (name, program_id) VALUES ($1, $2) ON CONFLICT (name, program_id) DO NOTHING`,
					subject, programID); err != nil {
					return fmt.Errorf("предмет %s: %w", subject, err)
				}
			}
		}
	}
	return tx.Commit(ctx)
}

func seedBuildings(ctx context.Context, db *pgxpool.Pool) error {
	log.Println("  - Наполнение корпусов и аудиторий...")
	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for building, rooms := range buildingData {
		buildingID, err := upsertID(ctx, tx,
			`INSERT INTO buildings (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`,
			`SELECT id FROM buildings WHERE name = $1`, building)
		if err != nil {
			return fmt.Errorf("корпус %s: %w", building, err)
		}
		for _, room := range rooms {
			if _, err := tx.Exec(ctx,
				`INSERT INTO rooms (name, building_id) VALUES ($1, $2) ON CONFLICT (name, building_id) DO NOTHING`,
				room, buildingID); err != nil {
				return fmt.Errorf("аудитория %s: %w", room, err)
			}
		}
	}
	return tx.Commit(ctx)
}
