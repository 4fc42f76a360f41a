package entity

import "time"

// Doctor is a 1:1 extension of Profile for medical staff.
type Doctor struct {
	ID        string
	ProfileID string
	Specialty string
	CreatedAt time.Time
	UpdatedAt time.Time
}
