// lyceum-crm/internal/ledger/actor.go
package ledger

// Роли портала. Роль "admin" дает полный доступ ко всем операциям движка.
const (
	RoleAdmin   = "admin"
	RoleTeacher = "teacher"
	RoleStudent = "student"
)

// Actor - явное представление вызывающего для авторизации операций.
// Заполняется транспортным слоем (middleware) из данных сессии;
// сам движок к cookie и токенам не обращается.
type Actor struct {
	UserID    uint
	Roles     []string
	StudentID *uint // профиль ученика, привязанный к учетной записи
	TeacherID *uint // профиль преподавателя, привязанный к учетной записи
}

func (a Actor) HasRole(name string) bool {
	for _, r := range a.Roles {
		if r == name {
			return true
		}
	}
	return false
}

func (a Actor) IsAdmin() bool   { return a.HasRole(RoleAdmin) }
func (a Actor) IsTeacher() bool { return a.HasRole(RoleTeacher) }
func (a Actor) IsStudent() bool { return a.HasRole(RoleStudent) }

// OwnsStudent - является ли вызывающий учеником с данным идентификатором.
func (a Actor) OwnsStudent(studentID uint) bool {
	return a.StudentID != nil && *a.StudentID == studentID
}

// OwnsTeacher - является ли вызывающий преподавателем с данным идентификатором.
func (a Actor) OwnsTeacher(teacherID uint) bool {
	return a.TeacherID != nil && *a.TeacherID == teacherID
}
