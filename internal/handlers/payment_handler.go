// lyceum-crm/internal/handlers/payment_handler.go
package handlers

import (
	"net/http"
	"strings"
	"time"

	"lyceum-crm/config"
	"lyceum-crm/internal/ledger"
	"lyceum-crm/models"

	"github.com/gin-gonic/gin"
)

// RecordPaymentRequest определяет структуру для входящих данных ручного ввода платежа.
type RecordPaymentRequest struct {
	StudentID   uint    `json:"studentId" binding:"required"`
	LessonsPaid int     `json:"lessonsPaid" binding:"required"`
	Amount      float64 `json:"amount" binding:"required"`
	PaidAt      string  `json:"paidAt"`
	Comment     string  `json:"comment"`
}

// RecordPaymentHandler обрабатывает запрос администратора на регистрацию оплаты пакета занятий.
func RecordPaymentHandler(c *gin.Context) {
	var req RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Неверные данные: " + err.Error()})
		return
	}

	var paidAt time.Time
	if req.PaidAt != "" {
		var err error
		paidAt, err = time.Parse("2006-01-02", req.PaidAt)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат даты. Используйте YYYY-MM-DD."})
			return
		}
	}

	payment, err := service().RecordPayment(actorFromContext(c), ledger.RecordPaymentInput{
		StudentID:   req.StudentID,
		LessonsPaid: req.LessonsPaid,
		Amount:      req.Amount,
		PaidAt:      paidAt,
		Comment:     req.Comment,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":   "Оплата успешно добавлена",
		"paymentId": payment.ID,
	})
}

// ConfirmPaymentRequest - тело запроса подтверждения. Отсутствующее поле
// confirmed трактуется как true (подтвердить).
type ConfirmPaymentRequest struct {
	Confirmed *bool `json:"confirmed"`
}

// ConfirmPaymentHandler выставляет или снимает подтверждение платежа администратором.
// Операция идемпотентна: повторное подтверждение не меняет баланс ученика.
func ConfirmPaymentHandler(c *gin.Context) {
	paymentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Неверные данные: " + err.Error()})
		return
	}
	confirmed := true
	if req.Confirmed != nil {
		confirmed = *req.Confirmed
	}

	payment, err := service().ConfirmPayment(actorFromContext(c), paymentID, confirmed)
	if err != nil {
		respondError(c, err)
		return
	}

	message := "Платеж подтвержден"
	if !confirmed {
		message = "Подтверждение платежа снято"
	}
	c.JSON(http.StatusOK, gin.H{
		"message":   message,
		"paymentId": payment.ID,
		"confirmed": confirmed,
	})
}

// StudentPaymentRow - строка истории платежей для отображения.
type StudentPaymentRow struct {
	ID               uint      `json:"id"`
	LessonsPaid      int       `json:"lessonsPaid"`
	Amount           float64   `json:"amount"`
	PaidAt           time.Time `json:"paidAt"`
	ConfirmedByAdmin bool      `json:"confirmedByAdmin"`
	Comment          string    `json:"comment"`
}

// ListStudentPaymentsHandler возвращает историю платежей ученика с пагинацией,
// новые платежи сверху.
func ListStudentPaymentsHandler(c *gin.Context) {
	studentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := service().AuthorizeStudentRead(actorFromContext(c), studentID); err != nil {
		respondError(c, err)
		return
	}

	var totalRows int64
	baseQuery := config.DB.Model(&models.Payment{}).Where("student_id = ?", studentID)

	if search := c.Query("search"); search != "" {
		baseQuery = baseQuery.Where("LOWER(comment) LIKE ?", "%"+strings.ToLower(search)+"%")
	}

	if err := baseQuery.Count(&totalRows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Не удалось посчитать платежи"})
		return
	}

	var payments []models.Payment
	if err := baseQuery.Scopes(Paginate(c)).Order("paid_at DESC").Find(&payments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Не удалось загрузить платежи"})
		return
	}

	rows := make([]StudentPaymentRow, 0, len(payments))
	for _, p := range payments {
		confirmed := p.ConfirmedByAdmin != nil && *p.ConfirmedByAdmin
		rows = append(rows, StudentPaymentRow{
			ID:               p.ID,
			LessonsPaid:      p.LessonsPaid,
			Amount:           p.Amount,
			PaidAt:           p.PaidAt,
			ConfirmedByAdmin: confirmed,
			Comment:          p.Comment,
		})
	}

	c.JSON(http.StatusOK, CreatePaginatedResponse(c, rows, totalRows))
}
