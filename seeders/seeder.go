package seeders

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SeedRoles создает роли системы.
func SeedRoles(db *pgxpool.Pool) {
	ctx := context.Background()
	log.Println("▶️  Наполнение ролей...")
	if err := seedRoles(ctx, db); err != nil {
		log.Fatalf("❌ Ошибка наполнения ролей: %v", err)
	}
	log.Println("✅ Роли готовы")
}

// SeedCatalog наполняет факультеты, программы, предметы, корпуса и аудитории.
func SeedCatalog(db *pgxpool.Pool) {
	ctx := context.Background()
	log.Println("▶️  Наполнение справочников...")
	if err := seedAcademics(ctx, db); err != nil {
		log.Fatalf("❌ Ошибка наполнения программ и предметов: %v", err)
	}
	if err := seedBuildings(ctx, db); err != nil {
		log.Fatalf("❌ Ошибка наполнения корпусов и аудиторий: %v", err)
	}
	log.Println("✅ Справочники готовы")
}

// SeedUsers создает администратора и демонстрационных пользователей с одним паролем.
func SeedUsers(db *pgxpool.Pool, password string) {
	ctx := context.Background()
	log.Println("▶️  Создание пользователей...")
	if err := seedUsers(ctx, db, password); err != nil {
		log.Fatalf("❌ Ошибка создания пользователей: %v", err)
	}
	log.Println("✅ Пользователи готовы")
}

// SeedEquipment создает стойки и устройства в статусе AVAILABLE.
func SeedEquipment(db *pgxpool.Pool) {
	ctx := context.Background()
	log.Println("▶️  Наполнение оборудования...")
	if err := seedEquipment(ctx, db); err != nil {
		log.Fatalf("❌ Ошибка наполнения оборудования: %v", err)
	}
	log.Println("✅ Оборудование готово")
}
