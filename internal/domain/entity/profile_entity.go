package entity

import "time"

// Profile is a 1:1 extension of User carrying clinic-side attributes.
// It is created together with the user during registration.
type Profile struct {
	ID               string
	UserID           string
	Gender           string
	AvatarURL        string
	HasEmailVerified bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
