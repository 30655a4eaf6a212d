// lyceum-crm/internal/handlers/lesson_handler.go
package handlers

import (
	"net/http"

	"lyceum-crm/config"
	"lyceum-crm/models"

	"github.com/gin-gonic/gin"
)

// SetLessonCompletionRequest - тело запроса отметки занятия. Отсутствующее
// поле completed трактуется как true (занятие проведено).
type SetLessonCompletionRequest struct {
	Completed *bool `json:"completed"`
}

// SetLessonCompletionHandler отмечает занятие проведенным или снимает отметку.
// Доступно администратору и преподавателю, которому занятие назначено.
// Операция идемпотентна: повторная отметка не меняет баланс и выплату.
func SetLessonCompletionHandler(c *gin.Context) {
	lessonID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req SetLessonCompletionRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Неверные данные: " + err.Error()})
		return
	}
	completed := true
	if req.Completed != nil {
		completed = *req.Completed
	}

	lesson, err := service().CompleteLesson(actorFromContext(c), lessonID, completed)
	if err != nil {
		respondError(c, err)
		return
	}

	message := "Занятие отмечено как проведенное"
	if !completed {
		message = "Отметка о проведении занятия снята"
	}
	c.JSON(http.StatusOK, gin.H{
		"message":   message,
		"lessonId":  lesson.ID,
		"completed": completed,
	})
}

// LessonRow - строка списка занятий для отображения.
type LessonRow struct {
	ID          uint   `json:"id"`
	StudentID   uint   `json:"studentId"`
	TeacherID   uint   `json:"teacherId"`
	ScheduledAt string `json:"scheduledAt"`
	Subject     string `json:"subject"`
	IsCompleted bool   `json:"isCompleted"`
}

// ListStudentLessonsHandler возвращает занятия ученика за период с пагинацией.
func ListStudentLessonsHandler(c *gin.Context) {
	studentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := service().AuthorizeStudentRead(actorFromContext(c), studentID); err != nil {
		respondError(c, err)
		return
	}
	listLessons(c, "student_id = ?", studentID)
}

// ListTeacherLessonsHandler возвращает занятия преподавателя за период с пагинацией.
func ListTeacherLessonsHandler(c *gin.Context) {
	teacherID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := service().AuthorizeTeacherRead(actorFromContext(c), teacherID); err != nil {
		respondError(c, err)
		return
	}
	listLessons(c, "teacher_id = ?", teacherID)
}

func listLessons(c *gin.Context, ownerCond string, ownerID uint) {
	period, ok := parsePeriod(c)
	if !ok {
		return
	}

	baseQuery := config.DB.Model(&models.Lesson{}).Where(ownerCond, ownerID)
	if period.From != nil {
		baseQuery = baseQuery.Where("scheduled_at >= ?", *period.From)
	}
	if period.To != nil {
		baseQuery = baseQuery.Where("scheduled_at < ?", *period.To)
	}
	if completed := c.Query("completed"); completed == "true" || completed == "false" {
		baseQuery = baseQuery.Where("is_completed = ?", completed == "true")
	}

	var totalRows int64
	if err := baseQuery.Count(&totalRows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Не удалось посчитать занятия"})
		return
	}

	var lessons []models.Lesson
	if err := baseQuery.Scopes(Paginate(c)).Order("scheduled_at DESC").Find(&lessons).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Не удалось загрузить занятия"})
		return
	}

	rows := make([]LessonRow, 0, len(lessons))
	for _, l := range lessons {
		rows = append(rows, LessonRow{
			ID:          l.ID,
			StudentID:   l.StudentID,
			TeacherID:   l.TeacherID,
			ScheduledAt: l.ScheduledAt.Format("2006-01-02 15:04"),
			Subject:     l.Subject,
			IsCompleted: l.IsCompleted != nil && *l.IsCompleted,
		})
	}

	c.JSON(http.StatusOK, CreatePaginatedResponse(c, rows, totalRows))
}
