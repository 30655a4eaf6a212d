// lyceum-crm/models/lesson.go
package models

import (
	"time"

	"gorm.io/gorm"
)

// Lesson представляет одно занятие в расписании.
// Ученик и преподаватель фиксируются при создании; для движка сверки
// изменяемым является только флаг проведения занятия.
type Lesson struct {
	gorm.Model
	StudentID uint    `json:"studentId" gorm:"not null;index"`
	Student   Student `json:"-"`
	TeacherID uint    `json:"teacherId" gorm:"not null;index"`
	Teacher   Teacher `json:"-"`

	// ScheduledAt - дата и время занятия по расписанию.
	ScheduledAt time.Time `json:"scheduledAt"`

	Subject string `json:"subject"`

	// IsCompleted - проведено ли занятие. Проведенное занятие списывает
	// одно оплаченное занятие с баланса ученика и учитывается в выплате преподавателю.
	IsCompleted *bool `json:"isCompleted" gorm:"default:false"`
}
