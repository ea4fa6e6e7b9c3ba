package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"lending-system/internal/entities"
	apperrors "lending-system/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const userSelectFields = `u.id, u.full_name, u.national_id, u.phone, u.email, u.username, u.password,
	u.role_id, r.code, r.name, u.created_at`

type UserRepositoryInterface interface {
	FindByUsername(ctx context.Context, username string) (*entities.User, error)
	FindByID(ctx context.Context, id uint64) (*entities.User, error)
	ListByRole(ctx context.Context, roleCode string) ([]entities.User, error)
	SuggestFullNames(ctx context.Context, query string, limit int) ([]string, error)
}

type UserRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewUserRepository(storage *pgxpool.Pool, logger *zap.Logger) UserRepositoryInterface {
	return &UserRepository{storage: storage, logger: logger}
}

func scanUser(row scanner) (*entities.User, error) {
	var u entities.User
	err := row.Scan(
		&u.ID, &u.FullName, &u.NationalID, &u.Phone, &u.Email, &u.Username, &u.Password,
		&u.RoleID, &u.RoleCode, &u.RoleName, &u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) findOne(ctx context.Context, where string, arg interface{}) (*entities.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users u JOIN roles r ON r.id = u.role_id WHERE %s`, userSelectFields, where)
	user, err := scanUser(r.storage.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*entities.User, error) {
	return r.findOne(ctx, "LOWER(u.username) = LOWER($1)", strings.TrimSpace(username))
}

func (r *UserRepository) FindByID(ctx context.Context, id uint64) (*entities.User, error) {
	return r.findOne(ctx, "u.id = $1", id)
}

func (r *UserRepository) ListByRole(ctx context.Context, roleCode string) ([]entities.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users u JOIN roles r ON r.id = u.role_id WHERE r.code = $1 ORDER BY u.full_name`, userSelectFields)
	rows, err := r.storage.Query(ctx, query, roleCode)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]entities.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// SuggestFullNames - подсказки для поля "ответственный".
func (r *UserRepository) SuggestFullNames(ctx context.Context, query string, limit int) ([]string, error) {
	rows, err := r.storage.Query(ctx,
		`SELECT DISTINCT full_name FROM users WHERE full_name ILIKE $1 ORDER BY full_name LIMIT $2`,
		"%"+query+"%", limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := make([]string, 0, limit)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
