// lyceum-crm/models/payment.go
package models

import (
	"time"

	"gorm.io/gorm"
)

// Payment представляет оплату пакета занятий учеником.
// Запись создается один раз (вручную администратором или вебхуком из 1С),
// после создания меняется только флаг подтверждения.
type Payment struct {
	gorm.Model
	StudentID uint    `json:"studentId" gorm:"not null;index"`
	Student   Student `json:"-"`

	// LessonsPaid - количество оплаченных занятий в пакете. Всегда > 0.
	LessonsPaid int `json:"lessonsPaid" gorm:"not null"`

	// Amount - сумма оплаты.
	Amount float64 `json:"amount" gorm:"type:numeric(12,2)"`

	// PaidAt - дата поступления оплаты.
	PaidAt time.Time `json:"paidAt"`

	// ConfirmedByAdmin - учитывается ли оплата в балансе ученика.
	// Новые оплаты считаются подтвержденными, администратор может снять подтверждение.
	ConfirmedByAdmin *bool `json:"confirmedByAdmin" gorm:"default:true"`

	// ExternalID - уникальный идентификатор транзакции из внешней системы (1С).
	// Используется для предотвращения дублирования платежей при синхронизации.
	ExternalID *string `json:"externalId" gorm:"uniqueIndex"`

	Comment string `json:"comment"`
}
