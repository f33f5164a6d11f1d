package model

import "time"

type UserRole string

const (
	RoleAdmin      UserRole = "admin"
	RoleSuperAdmin UserRole = "super_admin"
)

type User struct {
	ID             int       `db:"id"`
	Email          string    `db:"email"`
	HashedPassword string    `db:"hashed_password"`
	Name           *string   `db:"name"`
	CompanyID      int       `db:"company_id"`
	Role           UserRole  `db:"role"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

// IsSuperAdmin reports whether the user may operate across companies.
func (u *User) IsSuperAdmin() bool {
	return u.Role == RoleSuperAdmin
}
