package domain

import "time"

type Role string

const (
	RoleAdmin Role = "admin"
	RoleBuyer Role = "buyer"
)

func (r Role) Valid() bool { return r == RoleAdmin || r == RoleBuyer }

type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Caller is the authenticated identity behind a request, as currently stored.
type Caller struct {
	ID    string
	Name  string
	Email string
	Role  Role
}

func (c *Caller) IsAdmin() bool { return c != nil && c.Role == RoleAdmin }

func CallerFromUser(u *User) *Caller {
	return &Caller{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}
