package user

import (
	"errors"
	"time"
)

var (
	ErrUserDoesNotExist    = errors.New("user does not exist")
	ErrAuthorizationFailed = errors.New("wrong email or password")
	ErrRegistrationFailed  = errors.New("username or email already registered")
)

type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
