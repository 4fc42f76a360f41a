package entity

import (
	"time"
)

// User is the aggregate root for the accounts domain.
// Passwords are stored as bcrypt hashes in Password field.
//
// Email is optional: a user may register with username only, in which case
// Email stays empty. When present it is unique across users.
type User struct {
	ID        string
	Email     string
	Username  string
	Password  string
	FirstName string
	LastName  string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
