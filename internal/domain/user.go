package domain

import "time"

type UserRole string

const (
	RoleCustomer UserRole = "customer"
	RoleAdmin    UserRole = "admin"
)

type Customer struct {
	ID           string    `json:"id"`
	Phone        string    `json:"phone" validate:"required"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name,omitempty"`
	Email        string    `json:"email,omitempty" validate:"omitempty,email"`
	CreatedAt    time.Time `json:"created_at"`
}

// AdminUser is the identity provider's credential record.
type AdminUser struct {
	ID                  string     `json:"id"`
	Email               string     `json:"email" validate:"required,email"`
	PasswordHash        string     `json:"-"`
	FailedLoginAttempts int        `json:"-"`
	LockedUntil         *time.Time `json:"-"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// AdminIdentity is the projection of a provider session seen by the console.
// Role is always RoleAdmin.
type AdminIdentity struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      UserRole  `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *AdminUser) Identity() AdminIdentity {
	return AdminIdentity{
		ID:        u.ID,
		Email:     u.Email,
		Role:      RoleAdmin,
		CreatedAt: u.CreatedAt,
	}
}

// Actor is whoever is calling a protected operation.
type Actor struct {
	ID   string
	Role UserRole
}

func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }
