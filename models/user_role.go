package models

type UserRole string

const (
	EmployeeRole UserRole = "EMPLOYEE"
	ApproverRole UserRole = "APPROVER"
	AdminRole    UserRole = "ADMIN"
)

var roleHumanName = map[UserRole]string{
	EmployeeRole: "Сотрудник",
	ApproverRole: "Согласующий",
	AdminRole:    "Администратор",
}

func (r UserRole) ToHuman() string {
	if human, exist := roleHumanName[r]; exist {
		return human
	}
	return string(r)
}

// IsApprover согласующий или администратор
func (r UserRole) IsApprover() bool {
	return r == ApproverRole || r == AdminRole
}

const SystemUser = "Система"

// Actor пользователь, от имени которого выполняется операция
type Actor struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Email      string   `json:"email"`
	Department string   `json:"department"`
	Role       UserRole `json:"role"`
}

func (a Actor) IsApprover() bool {
	return a.Role.IsApprover()
}

func (a Actor) IsEmpty() bool {
	return a.ID == ""
}

func (a Actor) GetName() string {
	if a.Name != "" {
		return a.Name
	}
	return a.ID
}
