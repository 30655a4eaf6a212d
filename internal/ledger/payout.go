// lyceum-crm/internal/ledger/payout.go
package ledger

import (
	"time"

	"lyceum-crm/models"
)

// Payout - производная сумма к выплате преподавателю за период. Не хранится.
type Payout struct {
	TeacherID            uint       `json:"teacherId"`
	CompletedLessonCount int        `json:"completedLessonCount"`
	Rate                 float64    `json:"rate"`
	Amount               float64    `json:"payout"`
	PeriodFrom           *time.Time `json:"periodFrom,omitempty"`
	PeriodTo             *time.Time `json:"periodTo,omitempty"`
}

// TeacherPayout считает выплату как count(проведенных занятий за период) x текущая ставка.
// Ставка на момент проведения занятия не фиксируется: изменение ставки меняет
// выплату за прошлые периоды при следующем чтении, записи занятий не трогаются.
func (s *Store) TeacherPayout(teacherID uint, period Period) (*Payout, error) {
	rate, err := s.RateForTeacher(teacherID)
	if err != nil {
		return nil, err
	}

	var completed int64
	q := period.apply(s.db.Model(&models.Lesson{}).
		Where("teacher_id = ? AND is_completed = ?", teacherID, true))
	if err := q.Count(&completed).Error; err != nil {
		return nil, NewStorage("Не удалось посчитать проведенные занятия преподавателя", err)
	}

	return &Payout{
		TeacherID:            teacherID,
		CompletedLessonCount: int(completed),
		Rate:                 rate,
		Amount:               float64(completed) * rate,
		PeriodFrom:           period.From,
		PeriodTo:             period.To,
	}, nil
}
