// lyceum-crm/internal/handlers/webhook_handler.go
package handlers

import (
	"net/http"
	"time"

	"lyceum-crm/internal/ledger"

	"github.com/gin-gonic/gin"
)

// Webhook1CInput определяет структуру входящих данных, которые мы ожидаем от 1С.
type Webhook1CInput struct {
	StudentID   uint    `json:"studentId" binding:"required"`
	LessonsPaid int     `json:"lessonsPaid" binding:"required"`
	Amount      float64 `json:"amount" binding:"required"`
	PaymentDate string  `json:"paymentDate" binding:"required"` // Ожидаем дату в формате "2006-01-02"
	ExternalID  string  `json:"externalId"`                     // Уникальный ID транзакции из 1С, не обязателен, но желателен
	Confirmed   *bool   `json:"confirmed"`                      // По умолчанию платеж создается подтвержденным
	Comment     string  `json:"comment"`
}

// Webhook1CHandler обрабатывает входящие данные о платежах от 1С.
// Аутентификацию интеграции выполняет транспортный слой (auth middleware +
// право payments_create у сервисной учетной записи). Повторная доставка
// с тем же externalId не создает дубликат.
func Webhook1CHandler(c *gin.Context) {
	var input Webhook1CInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	paymentTime, err := time.Parse("2006-01-02", input.PaymentDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат даты. Ожидается YYYY-MM-DD"})
		return
	}

	confirmed := true
	if input.Confirmed != nil {
		confirmed = *input.Confirmed
	}

	payment, err := service().RecordExternalPayment(ledger.ExternalPaymentInput{
		StudentID:   input.StudentID,
		LessonsPaid: input.LessonsPaid,
		Amount:      input.Amount,
		PaidAt:      paymentTime,
		ExternalID:  input.ExternalID,
		Confirmed:   confirmed,
		Comment:     input.Comment,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"message":   "Платеж успешно обработан",
		"paymentId": payment.ID,
	})
}
