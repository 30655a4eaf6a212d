// lyceum-crm/internal/handlers/rate_handler.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetTeacherRateHandler возвращает действующую почасовую ставку преподавателя.
// Если индивидуальная ставка не задана, возвращается системная ставка по умолчанию.
func GetTeacherRateHandler(c *gin.Context) {
	teacherID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	rate, err := service().TeacherRate(actorFromContext(c), teacherID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"teacherId": teacherID,
		"rateValue": rate,
	})
}

// UpdateTeacherRateRequest - тело запроса изменения ставки.
type UpdateTeacherRateRequest struct {
	RateValue float64 `json:"rateValue" binding:"required"`
}

// UpdateTeacherRateHandler меняет почасовую ставку преподавателя (только администратор).
// Новая ставка применяется ко всем проведенным занятиям при следующем расчете выплаты.
func UpdateTeacherRateHandler(c *gin.Context) {
	teacherID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateTeacherRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Неверные данные: " + err.Error()})
		return
	}

	rate, err := service().SetTeacherRate(actorFromContext(c), teacherID, req.RateValue)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Ставка успешно обновлена",
		"teacherId": teacherID,
		"rateValue": rate.RateValue,
	})
}
