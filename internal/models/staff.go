package models

// StaffRole of a team member
type StaffRole string

const (
	RoleManager StaffRole = "manager"
	RoleCashier StaffRole = "cashier"
	RoleChef    StaffRole = "chef"
	RoleWaiter  StaffRole = "waiter"
	RoleCleaner StaffRole = "cleaner"
)

// StaffStatus is the shift state of a team member
type StaffStatus string

const (
	StaffActive  StaffStatus = "active"
	StaffOnBreak StaffStatus = "on-break"
	StaffOffDuty StaffStatus = "off-duty"
)

// Valid reports whether r is a known role
func (r StaffRole) Valid() bool {
	switch r {
	case RoleManager, RoleCashier, RoleChef, RoleWaiter, RoleCleaner:
		return true
	}
	return false
}

// StaffMember is a row of the staff roster
type StaffMember struct {
	ID     int64       `json:"id"`
	Name   string      `json:"name"`
	Role   StaffRole   `json:"role"`
	Email  string      `json:"email"`
	Phone  string      `json:"phone"`
	Status StaffStatus `json:"status"`
	Avatar string      `json:"avatar"`
}
