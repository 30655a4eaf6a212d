// lyceum-crm/internal/handlers/handler_utils.go
package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"lyceum-crm/config"
	"lyceum-crm/internal/ledger"

	"github.com/gin-gonic/gin"
)

// service собирает фасад движка сверки поверх глобального подключения к БД.
func service() *ledger.Service {
	return ledger.NewService(ledger.NewStore(config.DB))
}

// actorFromContext восстанавливает вызывающего из данных, которые
// AuthMiddleware положило в контекст запроса.
func actorFromContext(c *gin.Context) ledger.Actor {
	actor := ledger.Actor{}
	if v, ok := c.Get("user_id"); ok {
		if id, ok := v.(uint); ok {
			actor.UserID = id
		}
	}
	if v, ok := c.Get("roles"); ok {
		if roles, ok := v.([]string); ok {
			actor.Roles = roles
		}
	}
	if v, ok := c.Get("student_id"); ok {
		if id, ok := v.(uint); ok {
			actor.StudentID = &id
		}
	}
	if v, ok := c.Get("teacher_id"); ok {
		if id, ok := v.(uint); ok {
			actor.TeacherID = &id
		}
	}
	return actor
}

// respondError транслирует ошибку движка в HTTP-ответ.
// Сбои хранилища логируются, клиенту уходит только сообщение без деталей.
func respondError(c *gin.Context, err error) {
	status := ledger.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		slog.Error("Сбой при обращении к хранилищу", "error", err, "path", c.FullPath())
	}
	c.JSON(status, gin.H{"error": ledger.MessageOf(err)})
}

// parseIDParam читает числовой идентификатор из параметра маршрута.
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректный идентификатор"})
		return 0, false
	}
	return uint(id), true
}

// parsePeriod читает необязательный период из query-параметров from/to (YYYY-MM-DD).
// Правая граница не включается: to=2025-07-01 означает "до 1 июля".
func parsePeriod(c *gin.Context) (ledger.Period, bool) {
	var period ledger.Period
	if from := c.Query("from"); from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат даты 'from'. Ожидается YYYY-MM-DD"})
			return period, false
		}
		period.From = &t
	}
	if to := c.Query("to"); to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат даты 'to'. Ожидается YYYY-MM-DD"})
			return period, false
		}
		period.To = &t
	}
	return period, true
}
