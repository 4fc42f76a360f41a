package entity

import "time"

// AuthToken is the opaque bearer credential issued on first successful login
// and reused on subsequent logins. One token per user, never rotated here.
type AuthToken struct {
	Key       string
	UserID    string
	CreatedAt time.Time
}
