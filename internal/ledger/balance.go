// lyceum-crm/internal/ledger/balance.go
package ledger

import "lyceum-crm/models"

// Баланс считается "низким", когда осталось от 1 до lowBalanceThreshold занятий.
// Нулевой и отрицательный остаток - более сильное состояние "исчерпан/перерасход",
// оно отображается самим значением остатка и предупреждением не помечается.
const lowBalanceThreshold = 2

// Balance - производный остаток занятий ученика. Не хранится:
// пересчитывается из платежей и занятий при каждом чтении.
type Balance struct {
	StudentID             uint `json:"studentId"`
	TotalLessonsPaid      int  `json:"totalLessonsPaid"`
	TotalCompletedClasses int  `json:"totalCompletedClasses"`
	RemainingLessons      int  `json:"remainingLessons"`
	ShowWarning           bool `json:"showWarning"`
}

// StudentBalance пересчитывает остаток занятий ученика по текущему состоянию журнала.
// В оплаченные попадают только подтвержденные администратором платежи; проведенные
// занятия списываются независимо от подтверждения оплаты, поэтому остаток может
// быть отрицательным - это допустимое отображаемое состояние, а не ошибка.
func (s *Store) StudentBalance(studentID uint) (*Balance, error) {
	if err := s.studentExists(studentID); err != nil {
		return nil, err
	}

	var totalPaid int64
	err := s.db.Model(&models.Payment{}).
		Where("student_id = ? AND confirmed_by_admin = ?", studentID, true).
		Select("COALESCE(SUM(lessons_paid), 0)").
		Scan(&totalPaid).Error
	if err != nil {
		return nil, NewStorage("Не удалось посчитать оплаченные занятия", err)
	}

	var completed int64
	err = s.db.Model(&models.Lesson{}).
		Where("student_id = ? AND is_completed = ?", studentID, true).
		Count(&completed).Error
	if err != nil {
		return nil, NewStorage("Не удалось посчитать проведенные занятия", err)
	}

	remaining := int(totalPaid) - int(completed)
	return &Balance{
		StudentID:             studentID,
		TotalLessonsPaid:      int(totalPaid),
		TotalCompletedClasses: int(completed),
		RemainingLessons:      remaining,
		ShowWarning:           remaining > 0 && remaining <= lowBalanceThreshold,
	}, nil
}
