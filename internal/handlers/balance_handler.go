// lyceum-crm/internal/handlers/balance_handler.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetStudentBalanceHandler возвращает остаток занятий ученика по идентификатору.
// Остаток может быть отрицательным (занятий проведено больше, чем подтверждено
// оплатой) - это отображаемое состояние, а не ошибка.
func GetStudentBalanceHandler(c *gin.Context) {
	studentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	balance, err := service().StudentBalance(actorFromContext(c), studentID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, balance)
}

// GetMyBalanceHandler возвращает остаток занятий текущего ученика.
// Идентификатор ученика берется из учетной записи, а не из запроса.
func GetMyBalanceHandler(c *gin.Context) {
	actor := actorFromContext(c)
	if actor.StudentID == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Учетная запись не привязана к профилю ученика"})
		return
	}

	balance, err := service().StudentBalance(actor, *actor.StudentID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, balance)
}
