package model

import (
	"time"

	"github.com/davranaff/coffee/internal/validation"
)

type Role string

const (
	RoleAdmin Role = "admin"
	RoleStaff Role = "staff"
	RoleUser  Role = "user"
)

type User struct {
	Base
	Email                     string     `json:"email" db:"email"`
	PasswordHash              string     `json:"-" db:"password_hash"`
	FirstName                 string     `json:"first_name" db:"first_name"`
	LastName                  string     `json:"last_name" db:"last_name"`
	Phone                     *string    `json:"phone" db:"phone"`
	IsActive                  bool       `json:"is_active" db:"is_active"`
	IsVerified                bool       `json:"is_verified" db:"is_verified"`
	VerificationCode          *string    `json:"-" db:"verification_code"`
	VerificationCodeExpiresAt *time.Time `json:"-" db:"verification_code_expires_at"`
	Role                      Role       `json:"role" db:"role"`
}

// IsStaff is true for staff members and admins.
func (u *User) IsStaff() bool {
	return u.Role == RoleStaff || u.Role == RoleAdmin
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) FullName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	default:
		return u.Email
	}
}

// ---- auth ----

type RegisterRequest struct {
	Email     string  `json:"email" validate:"required,email,max=255"`
	Password  string  `json:"password" validate:"required,min=8,max=72,maxbytes=72,password"`
	FirstName string  `json:"first_name" validate:"required,max=100"`
	LastName  string  `json:"last_name" validate:"required,max=100"`
	Phone     *string `json:"phone" validate:"omitempty,max=32"`
}

func (r *RegisterRequest) Validate() error {
	return validation.Validator().Struct(r)
}

type RegisterResponse struct {
	Message string `json:"message"`
	Email   string `json:"email"`
}

// LoginRequest accepts a JSON body or an OAuth2 password form where the
// email travels as "username".
type LoginRequest struct {
	Email    string `json:"email" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

func (r *LoginRequest) Validate() error {
	return validation.Validator().Struct(r)
}

type VerifyEmailRequest struct {
	Email            string `json:"email" validate:"required,email"`
	VerificationCode string `json:"verification_code" validate:"required,len=6,numeric"`
}

func (r *VerifyEmailRequest) Validate() error {
	return validation.Validator().Struct(r)
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

func (r *RefreshTokenRequest) Validate() error {
	return validation.Validator().Struct(r)
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// ---- users ----

type UpdateMeRequest struct {
	FirstName *string `json:"first_name" validate:"omitempty,min=1,max=100"`
	LastName  *string `json:"last_name" validate:"omitempty,min=1,max=100"`
	Phone     *string `json:"phone" validate:"omitempty,max=32"`
	Password  *string `json:"password" validate:"omitempty,min=8,max=72,maxbytes=72,password"`
}

func (r *UpdateMeRequest) Validate() error {
	return validation.Validator().Struct(r)
}

type GetUserRequest struct {
	UserID int64 `param:"user_id" json:"-" validate:"required,gt=0"`
}

func (r *GetUserRequest) Validate() error {
	return validation.Validator().Struct(r)
}

type ListUsersRequest struct {
	Pagination
}

func (r *ListUsersRequest) Validate() error {
	return validation.Validator().Struct(r)
}

// UserUpdate is the set of columns a user update may touch.
type UserUpdate struct {
	FirstName    *string
	LastName     *string
	Phone        *string
	PasswordHash *string
}
