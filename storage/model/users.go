package model

import (
	"time"
)

// User is an account of the blog. Admin users write posts; all others are
// readers who may like and comment.
type User struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Username string `gorm:"uniqueIndex;size:255" json:"username"`
	Admin    bool   `json:"admin"`

	// PasswordHash is a PHC encoded argon2id hash; stores clear it before
	// handing a user out
	PasswordHash string `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UsersStore is the credential store
type UsersStore interface {
	Count() (int64, error)
	List() ([]User, error)
	Get(username string) (*User, error)
	GetByID(id uint) (*User, error)
	Exists(username string) (bool, error)
	// Create hashes password and stores a new user. A taken username gives an
	// AlreadyExistsError.
	Create(username, password string, admin bool) (*User, error)
	Delete(username string) error
	// Authenticate returns the user if password matches
	Authenticate(username, password string) (*User, error)
}
