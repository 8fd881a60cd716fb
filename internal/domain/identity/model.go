package identity

import (
	"time"

	"github.com/google/uuid"

	"github.com/sanatorium/sanatorium/internal/platform/auth"
)

// User is a login account. Every patient and staff member has one; the role
// determines what the account may do.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         auth.Role `json:"role"`
	FirstName    string    `json:"first_name"`
	SecondName   string    `json:"second_name"`
	ThirdName    string    `json:"third_name"`
	Phone        string    `json:"phone"`
	PhotoURL     string    `json:"photo_url"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RegisterInput is the payload for account creation.
type RegisterInput struct {
	Email      string `json:"email"`
	Username   string `json:"username"`
	Password   string `json:"password"`
	Role       string `json:"role"`
	FirstName  string `json:"first_name"`
	SecondName string `json:"second_name"`
	ThirdName  string `json:"third_name"`
	Phone      string `json:"phone"`
	PhotoURL   string `json:"photo_url"`
}

// UpdateInput carries a partial account update; nil fields are left as-is.
type UpdateInput struct {
	Email      *string `json:"email"`
	Username   *string `json:"username"`
	Password   *string `json:"password"`
	FirstName  *string `json:"first_name"`
	SecondName *string `json:"second_name"`
	ThirdName  *string `json:"third_name"`
	Phone      *string `json:"phone"`
	PhotoURL   *string `json:"photo_url"`
}

// LoginInput is the credential payload for token issuance.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult carries the issued token and the account it belongs to.
type LoginResult struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}
