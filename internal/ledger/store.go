// lyceum-crm/internal/ledger/store.go
package ledger

import (
	"errors"
	"time"

	"lyceum-crm/config"
	"lyceum-crm/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store - источник истины движка сверки: платежи, занятия и ставки.
// Каждая операция записи меняет ровно одну строку; межзаписных транзакций
// не требуется, производные показатели пересчитываются при каждом чтении.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Period - необязательный фильтр по дате занятия (scheduled_at).
type Period struct {
	From *time.Time
	To   *time.Time
}

func (p Period) apply(q *gorm.DB) *gorm.DB {
	if p.From != nil {
		q = q.Where("scheduled_at >= ?", *p.From)
	}
	if p.To != nil {
		q = q.Where("scheduled_at < ?", *p.To)
	}
	return q
}

// CreatePaymentInput - данные нового платежа за пакет занятий.
type CreatePaymentInput struct {
	StudentID   uint
	LessonsPaid int
	Amount      float64
	PaidAt      time.Time
	Confirmed   bool
	ExternalID  *string
	Comment     string
}

// CreatePayment создает запись об оплате пакета занятий.
func (s *Store) CreatePayment(input CreatePaymentInput) (*models.Payment, error) {
	if input.LessonsPaid <= 0 {
		return nil, NewValidation("Количество оплаченных занятий должно быть больше нуля")
	}

	if err := s.studentExists(input.StudentID); err != nil {
		return nil, err
	}

	if input.ExternalID != nil {
		var count int64
		if err := s.db.Model(&models.Payment{}).Where("external_id = ?", *input.ExternalID).Count(&count).Error; err != nil {
			return nil, NewStorage("Не удалось проверить уникальность платежа", err)
		}
		if count > 0 {
			return nil, NewValidation("Платеж с таким externalId уже существует")
		}
	}

	paidAt := input.PaidAt
	if paidAt.IsZero() {
		paidAt = time.Now()
	}

	payment := models.Payment{
		StudentID:        input.StudentID,
		LessonsPaid:      input.LessonsPaid,
		Amount:           input.Amount,
		PaidAt:           paidAt,
		ConfirmedByAdmin: &input.Confirmed,
		ExternalID:       input.ExternalID,
		Comment:          input.Comment,
	}

	if err := s.db.Create(&payment).Error; err != nil {
		return nil, NewStorage("Не удалось сохранить платеж", err)
	}
	return &payment, nil
}

// GetPayment возвращает платеж по идентификатору.
func (s *Store) GetPayment(paymentID uint) (*models.Payment, error) {
	var payment models.Payment
	if err := s.db.First(&payment, paymentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFound("Платеж не найден")
		}
		return nil, NewStorage("Ошибка при поиске платежа", err)
	}
	return &payment, nil
}

// SetPaymentConfirmation выставляет флаг подтверждения платежа.
// Повторная установка того же значения допустима и не меняет производные показатели.
func (s *Store) SetPaymentConfirmation(paymentID uint, confirmed bool) (*models.Payment, error) {
	payment, err := s.GetPayment(paymentID)
	if err != nil {
		return nil, err
	}

	// Атомарное обновление одной строки.
	if err := s.db.Model(payment).Update("confirmed_by_admin", confirmed).Error; err != nil {
		return nil, NewStorage("Не удалось обновить статус платежа", err)
	}
	payment.ConfirmedByAdmin = &confirmed
	return payment, nil
}

// GetLesson возвращает занятие по идентификатору.
func (s *Store) GetLesson(lessonID uint) (*models.Lesson, error) {
	var lesson models.Lesson
	if err := s.db.First(&lesson, lessonID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFound("Занятие не найдено")
		}
		return nil, NewStorage("Ошибка при поиске занятия", err)
	}
	return &lesson, nil
}

// SetLessonCompletion выставляет флаг проведения занятия. Идемпотентна.
func (s *Store) SetLessonCompletion(lessonID uint, completed bool) (*models.Lesson, error) {
	lesson, err := s.GetLesson(lessonID)
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(lesson).Update("is_completed", completed).Error; err != nil {
		return nil, NewStorage("Не удалось обновить статус занятия", err)
	}
	lesson.IsCompleted = &completed
	return lesson, nil
}

// PaymentsForStudent возвращает платежи ученика, новые сверху.
func (s *Store) PaymentsForStudent(studentID uint) ([]models.Payment, error) {
	if err := s.studentExists(studentID); err != nil {
		return nil, err
	}

	var payments []models.Payment
	if err := s.db.Where("student_id = ?", studentID).Order("paid_at DESC").Find(&payments).Error; err != nil {
		return nil, NewStorage("Не удалось загрузить платежи ученика", err)
	}
	return payments, nil
}

// LessonsForStudent возвращает занятия ученика за период.
func (s *Store) LessonsForStudent(studentID uint, period Period) ([]models.Lesson, error) {
	if err := s.studentExists(studentID); err != nil {
		return nil, err
	}

	var lessons []models.Lesson
	q := period.apply(s.db.Where("student_id = ?", studentID)).Order("scheduled_at DESC")
	if err := q.Find(&lessons).Error; err != nil {
		return nil, NewStorage("Не удалось загрузить занятия ученика", err)
	}
	return lessons, nil
}

// LessonsForTeacher возвращает занятия преподавателя за период.
func (s *Store) LessonsForTeacher(teacherID uint, period Period) ([]models.Lesson, error) {
	if err := s.teacherExists(teacherID); err != nil {
		return nil, err
	}

	var lessons []models.Lesson
	q := period.apply(s.db.Where("teacher_id = ?", teacherID)).Order("scheduled_at DESC")
	if err := q.Find(&lessons).Error; err != nil {
		return nil, NewStorage("Не удалось загрузить занятия преподавателя", err)
	}
	return lessons, nil
}

// RateForTeacher возвращает действующую почасовую ставку преподавателя.
// Если индивидуальная ставка не задана, действует системная ставка по умолчанию.
func (s *Store) RateForTeacher(teacherID uint) (float64, error) {
	if err := s.teacherExists(teacherID); err != nil {
		return 0, err
	}

	var rate models.TeacherRate
	if err := s.db.Where("teacher_id = ?", teacherID).First(&rate).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return config.DefaultHourlyRate(), nil
		}
		return 0, NewStorage("Ошибка при поиске ставки преподавателя", err)
	}
	return rate.RateValue, nil
}

// SetRateForTeacher создает или обновляет индивидуальную ставку преподавателя.
// Новая ставка применяется ко всем проведенным занятиям при следующем чтении.
func (s *Store) SetRateForTeacher(teacherID uint, rateValue float64) (*models.TeacherRate, error) {
	if rateValue <= 0 {
		return nil, NewValidation("Ставка должна быть больше нуля")
	}
	if err := s.teacherExists(teacherID); err != nil {
		return nil, err
	}

	rate := models.TeacherRate{TeacherID: teacherID, RateValue: rateValue}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "teacher_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"rate_value", "updated_at"}),
	}).Create(&rate).Error
	if err != nil {
		return nil, NewStorage("Не удалось сохранить ставку преподавателя", err)
	}
	return &rate, nil
}

func (s *Store) studentExists(studentID uint) error {
	var count int64
	if err := s.db.Model(&models.Student{}).Where("id = ?", studentID).Count(&count).Error; err != nil {
		return NewStorage("Ошибка при поиске ученика", err)
	}
	if count == 0 {
		return NewNotFound("Ученик не найден")
	}
	return nil
}

func (s *Store) teacherExists(teacherID uint) error {
	var count int64
	if err := s.db.Model(&models.Teacher{}).Where("id = ?", teacherID).Count(&count).Error; err != nil {
		return NewStorage("Ошибка при поиске преподавателя", err)
	}
	if count == 0 {
		return NewNotFound("Преподаватель не найден")
	}
	return nil
}
