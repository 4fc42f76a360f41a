package entity

import "time"

// Pulse is a single vitals reading taken for a patient.
type Pulse struct {
	ID          int64
	PatientName string
	Rate        int // beats per minute
	RecordedAt  time.Time
}
