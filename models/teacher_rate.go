// lyceum-crm/models/teacher_rate.go
package models

import "gorm.io/gorm"

// TeacherRate хранит индивидуальную почасовую ставку преподавателя.
// Если записи нет, используется системная ставка по умолчанию (config.DefaultHourlyRate).
// Текущая ставка применяется ко ВСЕМ проведенным занятиям, включая прошлые периоды, -
// история изменений ставки не ведется.
type TeacherRate struct {
	gorm.Model
	TeacherID uint    `json:"teacherId" gorm:"uniqueIndex;not null"`
	Teacher   Teacher `json:"-"`
	RateValue float64 `json:"rateValue" gorm:"type:numeric(12,2);not null"`
}
