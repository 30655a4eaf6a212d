// lyceum-crm/models/student.go

package models

import (
	"time"

	"gorm.io/gorm"
)

// Student represents the student model in the database.
type Student struct {
	gorm.Model
	IsStudying   *bool      `json:"isStudying" gorm:"default:true"`
	LastName     string     `json:"lastName" gorm:"not null"`
	FirstName    string     `json:"firstName" gorm:"not null"`
	MiddleName   string     `json:"middleName"`
	BirthDate    *time.Time `json:"birthDate"`
	StudentPhone string     `json:"studentPhone"`
	Email        string     `json:"email"`
	ParentName   string     `json:"parentName"`
	ParentPhone  string     `json:"parentPhone"`
	Comments     string     `json:"comments"`

	// --- GORM RELATIONSHIPS ---
	Payments []Payment `gorm:"foreignKey:StudentID" json:"payments,omitempty"`
	Lessons  []Lesson  `gorm:"foreignKey:StudentID" json:"lessons,omitempty"`
}
