package appointment

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	StatusScheduled AppointmentStatus = "scheduled"
	StatusCancelled AppointmentStatus = "cancelled"
)

// Priority levels are stored as small integers, urgent first.
type Priority int

const (
	PriorityUrgent Priority = 1
	PriorityMedium Priority = 2
	PriorityLow    Priority = 3
)

func (p Priority) Valid() bool {
	return p >= PriorityUrgent && p <= PriorityLow
}

type ReminderKind string

const (
	// KindAdvance fires strictly before the appointment moment.
	KindAdvance ReminderKind = "advance"
	// KindAtTime fires at the appointment moment itself.
	KindAtTime ReminderKind = "at-time"
)

type Appointment struct {
	ID          uuid.UUID
	OwnerID     int64 // messenger chat id of the owner
	Title       string
	Description string
	Moment      time.Time // absolute, second precision
	Priority    Priority
	Language    string // ar, fr or en
	Status      AppointmentStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Reminder references its appointment by id only: its lifetime is tied to
// the appointment, but the pair is created without a transaction and
// orphans are removed by periodic cleanup.
type Reminder struct {
	ID            uuid.UUID
	AppointmentID uuid.UUID
	FireAt        time.Time // always <= the appointment moment
	Kind          ReminderKind
	Sent          bool // flips false->true exactly once, never back
	CustomMessage *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type EventLog struct {
	ID            int64
	EventType     string
	AppointmentID *uuid.UUID
	Payload       []byte
	CreatedAt     time.Time
}
