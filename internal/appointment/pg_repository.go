package appointment

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

// Helpers

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment

	err := row.Scan(
		&a.ID,
		&a.OwnerID,
		&a.Title,
		&a.Description,
		&a.Moment,
		&a.Priority,
		&a.Language,
		&a.Status,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	return &a, nil
}

func scanReminder(row pgx.Row) (*Reminder, error) {
	var r Reminder
	var custom *string

	err := row.Scan(
		&r.ID,
		&r.AppointmentID,
		&r.FireAt,
		&r.Kind,
		&r.Sent,
		&custom,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrReminderNotFound
		}
		return nil, err
	}

	r.CustomMessage = custom
	return &r, nil
}

const appointmentColumns = `id, owner_id, title, description, moment, priority, language, status, created_at, updated_at`
const reminderColumns = `id, appointment_id, fire_at, kind, sent, custom_message, created_at, updated_at`

// Interface methods

func (r *PgRepository) CreateAppointment(ctx context.Context, a *Appointment) (*Appointment, error) {
	id := a.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO appointments (id, owner_id, title, description, moment, priority, language, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())
		RETURNING `+appointmentColumns+`
	`, id, a.OwnerID, a.Title, a.Description, a.Moment, a.Priority, a.Language, a.Status)

	return scanAppointment(row)
}

func (r *PgRepository) GetAppointmentByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE id = $1
	`, id)
	return scanAppointment(row)
}

func (r *PgRepository) ListAppointmentsByOwner(ctx context.Context, ownerID int64, limit, offset int) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE owner_id = $1
		ORDER BY moment ASC
		LIMIT $2 OFFSET $3
	`, ownerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}

	return result, rows.Err()
}

func (r *PgRepository) CancelAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE appointments
		SET status = $2,
		    updated_at = now()
		WHERE id = $1
		  AND status = $3
		RETURNING `+appointmentColumns+`
	`, id, StatusCancelled, StatusScheduled)

	a, err := scanAppointment(row)
	if err != nil {
		return nil, err
	}

	// Cascade by hand. If this fails the leftover reminders are orphans of
	// a cancelled appointment and the periodic cleanup removes them.
	if _, err := r.pool.Exec(ctx, `
		DELETE FROM reminders WHERE appointment_id = $1
	`, id); err != nil {
		log.Printf("failed to delete reminders of cancelled appointment %s: %v", id, err)
	}

	return a, nil
}

func (r *PgRepository) CreateReminders(ctx context.Context, reminders []Reminder) error {
	for i := range reminders {
		rem := &reminders[i]
		if rem.ID == uuid.Nil {
			rem.ID = uuid.New()
		}

		_, err := r.pool.Exec(ctx, `
			INSERT INTO reminders (id, appointment_id, fire_at, kind, sent, custom_message, created_at, updated_at)
			VALUES ($1, $2, $3, $4, FALSE, $5, now(), now())
		`, rem.ID, rem.AppointmentID, rem.FireAt, rem.Kind, rem.CustomMessage)
		if err != nil {
			return fmt.Errorf("insert reminder %d of %d: %w", i+1, len(reminders), err)
		}
	}
	return nil
}

func (r *PgRepository) ListRemindersByAppointment(ctx context.Context, appointmentID uuid.UUID) ([]Reminder, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+reminderColumns+`
		FROM reminders
		WHERE appointment_id = $1
		ORDER BY fire_at ASC
	`, appointmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectReminders(rows)
}

func (r *PgRepository) FindDueReminders(ctx context.Context, now time.Time, limit int) ([]Reminder, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+reminderColumns+`
		FROM reminders
		WHERE fire_at <= $1
		  AND sent = FALSE
		ORDER BY fire_at ASC
		LIMIT $2
	`, now, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectReminders(rows)
}

// collectReminders skips rows that fail to scan: one corrupt record must not
// keep every other reminder from being delivered.
func collectReminders(rows pgx.Rows) ([]Reminder, error) {
	var result []Reminder
	for rows.Next() {
		rem, err := scanReminder(rows)
		if err != nil {
			log.Printf("skipping unreadable reminder row: %v", err)
			continue
		}
		result = append(result, *rem)
	}
	return result, rows.Err()
}

func (r *PgRepository) MarkReminderSent(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE reminders
		SET sent = TRUE,
		    updated_at = now()
		WHERE id = $1
		  AND sent = FALSE
	`, id)
	if err != nil {
		return false, fmt.Errorf("mark reminder sent: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PgRepository) DeleteOrphanReminders(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM reminders rem
		WHERE NOT EXISTS (
			SELECT 1 FROM appointments a
			WHERE a.id = rem.appointment_id
			  AND a.status = $1
		)
	`, StatusScheduled)
	if err != nil {
		return 0, fmt.Errorf("delete orphan reminders: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *PgRepository) InsertEvent(ctx context.Context, ev EventLog) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO event_logs (event_type, appointment_id, payload, created_at)
		VALUES ($1, $2, $3, COALESCE($4, now()))
	`, ev.EventType, ev.AppointmentID, ev.Payload, nullableTime(ev.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert event log: %w", err)
	}

	return nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
