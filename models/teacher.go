// lyceum-crm/models/teacher.go
package models

import "gorm.io/gorm"

// Teacher представляет преподавателя школы.
type Teacher struct {
	gorm.Model
	IsActive   *bool  `json:"isActive" gorm:"default:true"`
	LastName   string `json:"lastName" gorm:"not null"`
	FirstName  string `json:"firstName" gorm:"not null"`
	MiddleName string `json:"middleName"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
	Subject    string `json:"subject"` // Основной предмет, например "Математика"

	// --- GORM RELATIONSHIPS ---
	Lessons []Lesson `gorm:"foreignKey:TeacherID" json:"lessons,omitempty"`
}
