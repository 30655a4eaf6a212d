// lyceum-crm/main.go
package main

import (
	"log/slog"
	"os"

	"lyceum-crm/config"
	"lyceum-crm/internal/routes"
	"lyceum-crm/models"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// .env удобен для локальной разработки; в продакшене переменные
	// приходят из окружения, поэтому отсутствие файла не ошибка.
	if err := godotenv.Load(); err != nil {
		slog.Info("Файл .env не найден, используем переменные окружения")
	}

	config.LoadJWTKey()
	config.ConnectDB()
	config.ConnectRedis()

	if err := config.DB.AutoMigrate(
		&models.Role{},
		&models.Permission{},
		&models.User{},
		&models.Student{},
		&models.Teacher{},
		&models.Payment{},
		&models.Lesson{},
		&models.TeacherRate{},
	); err != nil {
		slog.Error("Ошибка миграции базы данных", "error", err)
		os.Exit(1)
	}

	r := gin.Default()
	routes.SetupRoutes(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	slog.Info("Запуск сервера", "port", port)
	if err := r.Run(":" + port); err != nil {
		slog.Error("Сервер остановлен с ошибкой", "error", err)
		os.Exit(1)
	}
}
