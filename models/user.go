// lyceum-crm/models/user.go
package models

import "gorm.io/gorm"

// User определяет учетную запись портала.
// Через StudentID/TeacherID учетная запись привязывается к профилю ученика
// или преподавателя - так внешняя сессия транслируется во внутренние идентификаторы.
type User struct {
	gorm.Model
	Login    string `json:"login" gorm:"unique;not null"`
	Password string `json:"-" gorm:"not null"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`

	StudentID *uint    `json:"studentId"`
	Student   *Student `json:"-" gorm:"foreignKey:StudentID"`
	TeacherID *uint    `json:"teacherId"`
	Teacher   *Teacher `json:"-" gorm:"foreignKey:TeacherID"`

	Roles []Role `json:"roles" gorm:"many2many:user_roles;"`
}
