package seeders

import (
	"context"
	"fmt"
	"log"

	"lending-system/pkg/utils"

	"github.com/jackc/pgx/v5/pgxpool"
)

func seedUsers(ctx context.Context, db *pgxpool.Pool, password string) error {
	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		return fmt.Errorf("не удалось захешировать пароль: %w", err)
	}

	query := `
		INSERT INTO users (full_name, username, password, role_id)
		SELECT $1, $2, $3, id FROM roles WHERE code = $4
		ON CONFLICT (username) DO NOTHING`

	for _, u := range demoUsers {
		tag, err := db.Exec(ctx, query, u.FullName, u.Username, hashedPassword, u.RoleCode)
		if err != nil {
			return fmt.Errorf("пользователь %s: %w", u.Username, err)
		}
		if tag.RowsAffected() == 0 {
			log.Printf("    - Пользователь %s уже существует или нет роли %s. Пропускаем.", u.Username, u.RoleCode)
			continue
		}
		log.Printf("  - Создан пользователь %s (%s)", u.Username, u.RoleCode)
	}
	return nil
}
