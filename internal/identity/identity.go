package identity

import (
	"context"
	"errors"
	"time"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrDuplicateEmail     = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	Nickname  *string   `json:"nickname"`
	AvatarURL *string   `json:"avatar_url"`
	Major     *string   `json:"major"`
	Grade     *string   `json:"grade"`
	Bio       *string   `json:"bio"`
	Skills    *string   `json:"skills"`
	CreatedAt time.Time `json:"created_at"`
}

type RegisterRequest struct {
	Username string
	Email    string
	Password string
	Nickname *string
}

// ProfileUpdate carries one optional value per mutable profile field.
// Nil means "leave unchanged". Username, email and password are not
// editable through profile updates.
type ProfileUpdate struct {
	Nickname  *string
	AvatarURL *string
	Major     *string
	Grade     *string
	Bio       *string
	Skills    *string
}

type Store interface {
	Register(ctx context.Context, req RegisterRequest) (*User, error)
	Authenticate(ctx context.Context, identifier, password string) (*User, error)
	Find(ctx context.Context, id int64) (*User, error)
	UpdateProfile(ctx context.Context, id int64, upd ProfileUpdate) (*User, error)
}
