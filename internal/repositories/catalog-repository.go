package repositories

import (
	"context"

	"lending-system/internal/entities"

	"github.com/jackc/pgx/v5/pgxpool"
)

// CatalogRepositoryInterface - справочники, которые наполняются сидерами и только читаются.
type CatalogRepositoryInterface interface {
	ListPrograms(ctx context.Context) ([]entities.Program, error)
	ListSubjectsByProgram(ctx context.Context, programID uint64) ([]entities.Subject, error)
	ListBuildings(ctx context.Context) ([]entities.Building, error)
	ListRoomsByBuilding(ctx context.Context, buildingID uint64) ([]entities.Room, error)
	SubjectInProgram(ctx context.Context, subjectID, programID uint64) (bool, error)
	RoomExists(ctx context.Context, roomID uint64) (bool, error)
}

type CatalogRepository struct {
	storage *pgxpool.Pool
}

func NewCatalogRepository(storage *pgxpool.Pool) CatalogRepositoryInterface {
	return &CatalogRepository{storage: storage}
}

func (r *CatalogRepository) ListPrograms(ctx context.Context) ([]entities.Program, error) {
	rows, err := r.storage.Query(ctx, `
		SELECT p.id, p.name, f.id, f.name
		FROM programs p JOIN faculties f ON f.id = p.faculty_id
		ORDER BY f.name, p.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]entities.Program, 0)
	for rows.Next() {
		var p entities.Program
		if err := rows.Scan(&p.ID, &p.Name, &p.FacultyID, &p.FacultyName); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func (r *CatalogRepository) ListSubjectsByProgram(ctx context.Context, programID uint64) ([]entities.Subject, error) {
	rows, err := r.storage.Query(ctx, `SELECT id, name, program_id FROM subjects WHERE program_id = $1 ORDER BY name`, programID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]entities.Subject, 0)
	for rows.Next() {
		var s entities.Subject
		if err := rows.Scan(&s.ID, &s.Name, &s.ProgramID); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

func (r *CatalogRepository) ListBuildings(ctx context.Context) ([]entities.Building, error) {
	rows, err := r.storage.Query(ctx, `SELECT id, name FROM buildings ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]entities.Building, 0)
	for rows.Next() {
		var b entities.Building
		if err := rows.Scan(&b.ID, &b.Name); err != nil {
			return nil, err
		}
		result = append(result, b)
	}
	return result, rows.Err()
}

func (r *CatalogRepository) ListRoomsByBuilding(ctx context.Context, buildingID uint64) ([]entities.Room, error) {
	rows, err := r.storage.Query(ctx, `SELECT id, name, building_id FROM rooms WHERE building_id = $1 ORDER BY name`, buildingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]entities.Room, 0)
	for rows.Next() {
		var room entities.Room
		if err := rows.Scan(&room.ID, &room.Name, &room.BuildingID); err != nil {
			return nil, err
		}
		result = append(result, room)
	}
	return result, rows.Err()
}

func (r *CatalogRepository) SubjectInProgram(ctx context.Context, subjectID, programID uint64) (bool, error) {
	var exists bool
	err := r.storage.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM subjects WHERE id = $1 AND program_id = $2)`, subjectID, programID,
	).Scan(&exists)
	return exists, err
}

func (r *CatalogRepository) RoomExists(ctx context.Context, roomID uint64) (bool, error) {
	var exists bool
	err := r.storage.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM rooms WHERE id = $1)`, roomID).Scan(&exists)
	return exists, err
}
