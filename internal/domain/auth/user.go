package auth

import "time"

type Role string

const (
	RoleStudent Role = "student"
	RoleManager Role = "manager"
	RoleStaff   Role = "staff"
	RoleAdmin   Role = "admin"
)

func ParseRole(s string) (Role, bool) {
	switch r := Role(s); r {
	case RoleStudent, RoleManager, RoleStaff, RoleAdmin:
		return r, true
	}
	return "", false
}

// IsElevated reports whether the role may override any resource status.
func (r Role) IsElevated() bool {
	return r == RoleStaff || r == RoleAdmin
}

type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	Name         string    `json:"name"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Principal is the authenticated caller of a request.
type Principal struct {
	UserID int64
	Role   Role
}
