package model

import "time"

type Role string

const (
	RoleCustomer  Role = "customer"
	RoleCraftsman Role = "craftsman"
	RoleAdmin     Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleCraftsman, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID           string    `json:"id,omitempty" bson:"_id,omitempty"`
	Name         string    `json:"name" bson:"name"`
	Email        string    `json:"email" bson:"email"`
	PasswordHash string    `json:"-" bson:"password_hash"`
	Phone        string    `json:"phone" bson:"phone"`
	Role         Role      `json:"role" bson:"role"`
	Avatar       string    `json:"avatar,omitempty" bson:"avatar"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" bson:"updated_at"`
}

// UserSummary is the public slice of a user joined onto other documents.
type UserSummary struct {
	ID     string `json:"id" bson:"_id"`
	Name   string `json:"name" bson:"name"`
	Email  string `json:"email,omitempty" bson:"email,omitempty"`
	Phone  string `json:"phone,omitempty" bson:"phone,omitempty"`
	Avatar string `json:"avatar,omitempty" bson:"avatar,omitempty"`
}

// Principal is the authenticated caller of a request.
type Principal struct {
	UserID string
	Role   Role
}

func (p Principal) Is(role Role) bool {
	return p.Role == role
}

type RegisterRequest struct {
	Name      string                 `json:"name" validate:"required,min=2,max=100"`
	Email     string                 `json:"email" validate:"required,email"`
	Password  string                 `json:"password" validate:"required,min=6,max=72"`
	Phone     string                 `json:"phone" validate:"required,e164"`
	Role      Role                   `json:"role" validate:"required,oneof=customer craftsman"`
	Craftsman *CraftsmanRegistration `json:"craftsman,omitempty" validate:"required_if=Role craftsman"`
}

type CraftsmanRegistration struct {
	Specialty  string   `json:"specialty" validate:"required,specialty"`
	Bio        string   `json:"bio" validate:"max=500"`
	Experience int      `json:"experience" validate:"min=0,max=80"`
	HourlyRate float64  `json:"hourly_rate" validate:"min=0"`
	Location   Location `json:"location" validate:"required"`
}

// CreateUserRequest is the admin variant of registration; any role is allowed.
type CreateUserRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Phone    string `json:"phone" validate:"required,e164"`
	Role     Role   `json:"role" validate:"omitempty,role"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      *User     `json:"user"`
}
