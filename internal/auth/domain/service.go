package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	CreateUser(ctx context.Context, req CreateUserRequest) (*User, error)
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
	Logout(ctx context.Context, rawToken string) error
	Authenticate(ctx context.Context, rawToken string) (*Session, error)
	ChangePassword(ctx context.Context, userID snowflake.ID, currentPassword, newPassword string) error
	GetUser(ctx context.Context, id snowflake.ID) (*User, error)
}

type CreateUserRequest struct {
	Email       string
	Password    string
	FirstName   string
	LastName    string
	IsSuperuser bool
}

type LoginRequest struct {
	Email     string
	Password  string
	UserAgent string
	IPAddress string
}

type LoginResult struct {
	User      *User
	RawToken  string
	SessionID snowflake.ID
	ExpiresAt time.Time
}
