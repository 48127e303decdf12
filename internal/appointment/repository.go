package appointment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrReminderNotFound    = errors.New("reminder not found")
)

// Repository contains all DB interactions needed by the service and the
// reminder dispatcher.
type Repository interface {
	CreateAppointment(ctx context.Context, a *Appointment) (*Appointment, error)
	GetAppointmentByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	ListAppointmentsByOwner(ctx context.Context, ownerID int64, limit, offset int) ([]Appointment, error)

	// CancelAppointment flips a scheduled appointment to cancelled and
	// removes its reminders.
	CancelAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error)

	CreateReminders(ctx context.Context, reminders []Reminder) error
	ListRemindersByAppointment(ctx context.Context, appointmentID uuid.UUID) ([]Reminder, error)

	// Dispatcher side
	FindDueReminders(ctx context.Context, now time.Time, limit int) ([]Reminder, error)

	// MarkReminderSent flips sent from false to true. It reports false when
	// the flag was already set, which is what makes redelivery idempotent.
	MarkReminderSent(ctx context.Context, id uuid.UUID) (bool, error)

	// DeleteOrphanReminders removes reminders whose appointment is gone or
	// cancelled. Orphans are an accepted state, cleaned periodically.
	DeleteOrphanReminders(ctx context.Context) (int64, error)

	// Event logging
	InsertEvent(ctx context.Context, ev EventLog) error
}
