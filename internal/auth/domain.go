package auth

import (
	"time"

	"github.com/partnerhub/partner-crm/internal/rbac"
)

// User represents an authenticated user account.
type User struct {
	ID           int64
	Email        string
	Name         string
	PasswordHash string
	Role         rbac.Role
	PartnerID    *int64
	IsActive     bool
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Principal returns the identity carried in tokens for u.
func (u *User) Principal() rbac.Principal {
	return rbac.Principal{UserID: u.ID, Email: u.Email, Role: u.Role}
}

// TokenPair is returned by login and refresh.
type TokenPair struct {
	AccessToken      string    `json:"access_token"`
	RefreshToken     string    `json:"refresh_token"`
	TokenType        string    `json:"token_type"`
	ExpiresIn        int64     `json:"expires_in"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

// UserView is the public projection of a user.
type UserView struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      rbac.Role `json:"role"`
	PartnerID *int64    `json:"partner_id,omitempty"`
}

// View projects u for responses.
func (u *User) View() UserView {
	return UserView{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role, PartnerID: u.PartnerID}
}

// Session is the result of a successful login or refresh.
type Session struct {
	User   UserView  `json:"user"`
	Tokens TokenPair `json:"tokens"`
}

// Profile describes the caller for GET /auth/me.
type Profile struct {
	User        UserView  `json:"user"`
	Role        rbac.Role `json:"role"`
	Level       int       `json:"level"`
	Permissions []string  `json:"permissions"`
}
