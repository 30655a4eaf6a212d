// lyceum-crm/internal/handlers/payout_handler.go
package handlers

import (
	"fmt"
	"math"
	"net/http"
	"time"

	"lyceum-crm/config"

	"github.com/divan/num2words"
	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

// GetTeacherPayoutHandler возвращает выплату преподавателя за период.
// Сумма всегда пересчитывается по текущей ставке: изменение ставки видно
// при следующем чтении без изменения записей занятий.
func GetTeacherPayoutHandler(c *gin.Context) {
	teacherID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	period, ok := parsePeriod(c)
	if !ok {
		return
	}

	payout, err := service().TeacherPayout(actorFromContext(c), teacherID, period)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, payout)
}

// GetMyPayoutHandler возвращает выплату текущего преподавателя.
func GetMyPayoutHandler(c *gin.Context) {
	actor := actorFromContext(c)
	if actor.TeacherID == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Учетная запись не привязана к профилю преподавателя"})
		return
	}
	period, ok := parsePeriod(c)
	if !ok {
		return
	}

	payout, err := service().TeacherPayout(actor, *actor.TeacherID, period)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, payout)
}

type payoutExportRow struct {
	ScheduledAt     time.Time `json:"scheduledAt"`
	Subject         string    `json:"subject"`
	StudentFullName string    `json:"studentFullName"`
}

// ExportTeacherPayoutHandler выгружает ведомость выплаты преподавателя в Excel:
// строки проведенных занятий, итоговая сумма и сумма прописью.
func ExportTeacherPayoutHandler(c *gin.Context) {
	teacherID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	period, ok := parsePeriod(c)
	if !ok {
		return
	}

	actor := actorFromContext(c)
	payout, err := service().TeacherPayout(actor, teacherID, period)
	if err != nil {
		respondError(c, err)
		return
	}

	var rows []payoutExportRow
	query := config.DB.Table("lessons l").
		Joins("LEFT JOIN students s ON l.student_id = s.id").
		Where("l.teacher_id = ? AND l.is_completed = ? AND l.deleted_at IS NULL", teacherID, true).
		Select(`
			l.scheduled_at AS "ScheduledAt",
			l.subject AS "Subject",
			(s.last_name || ' ' || s.first_name) AS "StudentFullName"
		`).
		Order("l.scheduled_at ASC")
	if period.From != nil {
		query = query.Where("l.scheduled_at >= ?", *period.From)
	}
	if period.To != nil {
		query = query.Where("l.scheduled_at < ?", *period.To)
	}

	if err := query.Scan(&rows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Не удалось загрузить занятия для ведомости"})
		return
	}

	f := excelize.NewFile()
	sheetName := "Ведомость выплат"
	index, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{"Дата занятия", "Предмет", "ФИО ученика", "Ставка"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, header)
	}

	for i, row := range rows {
		line := i + 2
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", line), row.ScheduledAt.Format("02.01.2006 15:04"))
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", line), row.Subject)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", line), row.StudentFullName)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", line), payout.Rate)
	}

	totalLine := len(rows) + 3
	f.SetCellValue(sheetName, fmt.Sprintf("A%d", totalLine), "Проведено занятий:")
	f.SetCellValue(sheetName, fmt.Sprintf("B%d", totalLine), payout.CompletedLessonCount)
	f.SetCellValue(sheetName, fmt.Sprintf("A%d", totalLine+1), "Итого к выплате:")
	f.SetCellValue(sheetName, fmt.Sprintf("B%d", totalLine+1), payout.Amount)
	f.SetCellValue(sheetName, fmt.Sprintf("A%d", totalLine+2), "Сумма прописью:")
	f.SetCellValue(sheetName, fmt.Sprintf("B%d", totalLine+2), amountToWords(payout.Amount))

	fileName := fmt.Sprintf("payout_%d_%s.xlsx", teacherID, time.Now().Format("20060102_150405"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename="+fileName)
	if err := f.Write(c.Writer); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Не удалось записать Excel-файл"})
	}
}

func amountToWords(amount float64) string {
	tenge := int(amount)
	tiyn := int(math.Round((amount - float64(tenge)) * 100))
	tengeWords := num2words.Convert(tenge)
	return fmt.Sprintf("%s тенге %02d тиын", tengeWords, tiyn)
}
