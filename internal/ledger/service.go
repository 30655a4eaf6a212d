// lyceum-crm/internal/ledger/service.go
package ledger

import (
	"time"

	"lyceum-crm/models"

	"github.com/google/uuid"
)

// Service - фасад движка сверки. Авторизует вызывающего (роль + владение)
// ДО обращения к хранилищу, поэтому отказ в доступе и ошибки валидации
// никогда не оставляют частичных записей.
type Service struct {
	store *Store
}

func NewService(store *Store) *Service {
	return &Service{store: store}
}

// ConfirmPayment выставляет флаг подтверждения платежа. Только администратор.
// Подтверждение добавляет оплаченные занятия к балансу ученика при следующем
// чтении, снятие подтверждения - убирает. Переход полностью обратим.
func (s *Service) ConfirmPayment(actor Actor, paymentID uint, confirmed bool) (*models.Payment, error) {
	if !actor.IsAdmin() {
		return nil, NewAuthorization("Подтверждать платежи может только администратор")
	}
	return s.store.SetPaymentConfirmation(paymentID, confirmed)
}

// CompleteLesson выставляет флаг проведения занятия. Разрешено администратору
// и преподавателю, которому занятие назначено: одной роли "teacher" недостаточно,
// владение проверяется по записи занятия.
func (s *Service) CompleteLesson(actor Actor, lessonID uint, completed bool) (*models.Lesson, error) {
	if !actor.IsAdmin() {
		if !actor.IsTeacher() {
			return nil, NewAuthorization("Отмечать занятия может администратор или преподаватель")
		}
		lesson, err := s.store.GetLesson(lessonID)
		if err != nil {
			return nil, err
		}
		if !actor.OwnsTeacher(lesson.TeacherID) {
			return nil, NewAuthorization("Занятие назначено другому преподавателю")
		}
	}
	return s.store.SetLessonCompletion(lessonID, completed)
}

// RecordPaymentInput - данные ручного ввода платежа администратором.
type RecordPaymentInput struct {
	StudentID   uint
	LessonsPaid int
	Amount      float64
	PaidAt      time.Time
	Comment     string
}

// RecordPayment регистрирует оплату пакета занятий. Только администратор.
// Платеж создается подтвержденным; квитанции присваивается внутренний externalId.
func (s *Service) RecordPayment(actor Actor, input RecordPaymentInput) (*models.Payment, error) {
	if !actor.IsAdmin() {
		return nil, NewAuthorization("Регистрировать платежи может только администратор")
	}

	receipt := uuid.NewString()
	return s.store.CreatePayment(CreatePaymentInput{
		StudentID:   input.StudentID,
		LessonsPaid: input.LessonsPaid,
		Amount:      input.Amount,
		PaidAt:      input.PaidAt,
		Confirmed:   true,
		ExternalID:  &receipt,
		Comment:     input.Comment,
	})
}

// ExternalPaymentInput - платеж из внешней системы приема оплат (1С).
type ExternalPaymentInput struct {
	StudentID   uint
	LessonsPaid int
	Amount      float64
	PaidAt      time.Time
	ExternalID  string
	Confirmed   bool
	Comment     string
}

// RecordExternalPayment регистрирует платеж, пришедший от внешнего коллаборатора.
// Аутентификацию интеграции выполняет транспортный слой; externalId защищает
// от дублирования при повторной доставке вебхука.
func (s *Service) RecordExternalPayment(input ExternalPaymentInput) (*models.Payment, error) {
	externalID := input.ExternalID
	if externalID == "" {
		externalID = uuid.NewString()
	}
	return s.store.CreatePayment(CreatePaymentInput{
		StudentID:   input.StudentID,
		LessonsPaid: input.LessonsPaid,
		Amount:      input.Amount,
		PaidAt:      input.PaidAt,
		Confirmed:   input.Confirmed,
		ExternalID:  &externalID,
		Comment:     input.Comment,
	})
}

// StudentBalance возвращает остаток занятий ученика.
// Доступно самому ученику, любому преподавателю и администратору.
func (s *Service) StudentBalance(actor Actor, studentID uint) (*Balance, error) {
	if err := s.authorizeStudentRead(actor, studentID); err != nil {
		return nil, err
	}
	return s.store.StudentBalance(studentID)
}

// PaymentsForStudent возвращает историю платежей ученика, новые сверху.
func (s *Service) PaymentsForStudent(actor Actor, studentID uint) ([]models.Payment, error) {
	if err := s.authorizeStudentRead(actor, studentID); err != nil {
		return nil, err
	}
	return s.store.PaymentsForStudent(studentID)
}

// LessonsForStudent возвращает занятия ученика за период.
func (s *Service) LessonsForStudent(actor Actor, studentID uint, period Period) ([]models.Lesson, error) {
	if err := s.authorizeStudentRead(actor, studentID); err != nil {
		return nil, err
	}
	return s.store.LessonsForStudent(studentID, period)
}

// TeacherPayout возвращает выплату преподавателя за период.
// Доступно самому преподавателю и администратору.
func (s *Service) TeacherPayout(actor Actor, teacherID uint, period Period) (*Payout, error) {
	if err := s.authorizeTeacherRead(actor, teacherID); err != nil {
		return nil, err
	}
	return s.store.TeacherPayout(teacherID, period)
}

// LessonsForTeacher возвращает занятия преподавателя за период.
func (s *Service) LessonsForTeacher(actor Actor, teacherID uint, period Period) ([]models.Lesson, error) {
	if err := s.authorizeTeacherRead(actor, teacherID); err != nil {
		return nil, err
	}
	return s.store.LessonsForTeacher(teacherID, period)
}

// TeacherRate возвращает действующую ставку преподавателя.
func (s *Service) TeacherRate(actor Actor, teacherID uint) (float64, error) {
	if err := s.authorizeTeacherRead(actor, teacherID); err != nil {
		return 0, err
	}
	return s.store.RateForTeacher(teacherID)
}

// SetTeacherRate меняет почасовую ставку преподавателя. Только администратор.
// Новая ставка видна в выплатах при следующем чтении без пересчета занятий.
func (s *Service) SetTeacherRate(actor Actor, teacherID uint, rateValue float64) (*models.TeacherRate, error) {
	if !actor.IsAdmin() {
		return nil, NewAuthorization("Менять ставку может только администратор")
	}
	return s.store.SetRateForTeacher(teacherID, rateValue)
}

// AuthorizeStudentRead проверяет право чтения данных ученика и его существование.
// Используется транспортным слоем перед собственными запросами списков.
func (s *Service) AuthorizeStudentRead(actor Actor, studentID uint) error {
	if err := s.authorizeStudentRead(actor, studentID); err != nil {
		return err
	}
	return s.store.studentExists(studentID)
}

// AuthorizeTeacherRead проверяет право чтения данных преподавателя и его существование.
func (s *Service) AuthorizeTeacherRead(actor Actor, teacherID uint) error {
	if err := s.authorizeTeacherRead(actor, teacherID); err != nil {
		return err
	}
	return s.store.teacherExists(teacherID)
}

func (s *Service) authorizeStudentRead(actor Actor, studentID uint) error {
	if actor.IsAdmin() || actor.IsTeacher() || actor.OwnsStudent(studentID) {
		return nil
	}
	return NewAuthorization("Нет доступа к данным этого ученика")
}

func (s *Service) authorizeTeacherRead(actor Actor, teacherID uint) error {
	if actor.IsAdmin() || actor.OwnsTeacher(teacherID) {
		return nil
	}
	return NewAuthorization("Нет доступа к данным этого преподавателя")
}
