package main

import (
	"flag"
	"log"

	"lending-system/pkg/config"
	"lending-system/pkg/database/postgresql"
	"lending-system/seeders"
)

func main() {
	log.Println("======================================================")
	log.Println("       🌱 СИСТЕМА СИДЕРОВ (Наполнение БД)           ")
	log.Println("======================================================")

	runRoles := flag.Bool("roles", false, "Создать роли")
	runCatalog := flag.Bool("catalog", false, "Наполнить факультеты, программы, предметы, корпуса и аудитории")
	runUsers := flag.Bool("users", false, "Создать администратора и демонстрационных пользователей")
	runEquipment := flag.Bool("equipment", false, "Создать стойки и устройства")
	runAll := flag.Bool("all", false, "Запустить все сидеры")
	password := flag.String("password", "changeme123", "Пароль для создаваемых пользователей")

	flag.Parse()

	if !*runRoles && !*runCatalog && !*runUsers && !*runEquipment && !*runAll {
		log.Println("❌ Не выбран ни один сидер для запуска.")
		log.Println("")
		log.Println("Доступные флаги:")
		flag.PrintDefaults()
		log.Println("")
		log.Println("Примеры использования:")
		log.Println("  go run ./seeders/cmd/seed -roles -users")
		log.Println("  go run ./seeders/cmd/seed -all -password=secret123")
		return
	}

	cfg := config.New()
	if err := postgresql.Migrate(cfg.Postgres.DSN); err != nil {
		log.Fatalf("❌ Ошибка миграций: %v", err)
	}
	dbPool := postgresql.ConnectDB(cfg.Postgres.DSN)
	defer dbPool.Close()

	// пользователи зависят от ролей
	if *runAll || *runRoles {
		seeders.SeedRoles(dbPool)
	}
	if *runAll || *runCatalog {
		seeders.SeedCatalog(dbPool)
	}
	if *runAll || *runUsers {
		seeders.SeedUsers(dbPool, *password)
	}
	if *runAll || *runEquipment {
		seeders.SeedEquipment(dbPool)
	}

	log.Println("✅ Все указанные операции сидирования успешно завершены.")
}
