package domain

import (
	"context"
	"time"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type SubscriptionStatus string

const (
	SubscriptionFree    SubscriptionStatus = "free"
	SubscriptionPremium SubscriptionStatus = "premium"
)

type User struct {
	ID                 string             `json:"id"`
	Email              string             `json:"email"`
	PasswordHash       string             `json:"-"`
	Name               string             `json:"name"`
	Role               Role               `json:"role"`
	Phone              string             `json:"phone,omitempty"`
	SubscriptionStatus SubscriptionStatus `json:"subscriptionStatus"`
	CreatedAt          time.Time          `json:"createdAt"`
	UpdatedAt          time.Time          `json:"updatedAt"`
}

// Session is the authenticated caller as carried in the session token.
type Session struct {
	UserID             string             `json:"id"`
	Email              string             `json:"email"`
	Name               string             `json:"name"`
	Role               Role               `json:"role"`
	SubscriptionStatus SubscriptionStatus `json:"subscriptionStatus"`
}

func (s *Session) IsAdmin() bool {
	return s != nil && s.Role == RoleAdmin
}

func (u *User) Session() *Session {
	return &Session{
		UserID:             u.ID,
		Email:              u.Email,
		Name:               u.Name,
		Role:               u.Role,
		SubscriptionStatus: u.SubscriptionStatus,
	}
}

type UserRepository interface {
	CreateUser(ctx context.Context, user *User) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByID(ctx context.Context, id string) (*User, error)
}

type UserUseCase interface {
	Register(ctx context.Context, name, email, password string) (*User, string, error)
	Login(ctx context.Context, email, password string) (*User, string, error)
	Me(ctx context.Context, session *Session) (*User, error)
}

// SessionTokens issues and verifies the signed session token.
type SessionTokens interface {
	Issue(user *User) (string, error)
	// Parse returns ErrUnauthorized for any invalid or expired token.
	Parse(token string) (*Session, error)
}
