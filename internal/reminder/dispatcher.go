package reminder

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/aymounosbedoui82-commits/lamis/internal/appointment"
	redisclient "github.com/aymounosbedoui82-commits/lamis/internal/redis"
)

// Store is the slice of the appointment repository the dispatcher needs.
type Store interface {
	FindDueReminders(ctx context.Context, now time.Time, limit int) ([]appointment.Reminder, error)
	GetAppointmentByID(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error)
	MarkReminderSent(ctx context.Context, id uuid.UUID) (bool, error)
	DeleteOrphanReminders(ctx context.Context) (int64, error)
	InsertEvent(ctx context.Context, ev appointment.EventLog) error
}

// Sender delivers one notification. In production this is the notify
// bridge, so every call from here is a bounded cross-context handoff into
// the gateway's own goroutine.
type Sender interface {
	Send(ctx context.Context, chatID int64, text string) error
}

// cleanupEveryCycles spaces the orphan-reminder sweep, roughly hourly at
// the default poll interval.
const cleanupEveryCycles = 60

type Options struct {
	PollInterval   time.Duration // default 60s
	HandoffTimeout time.Duration // max wait per notification send, default 10s
	BatchLimit     int           // max due reminders per cycle, default 100
}

// Dispatcher is the perpetual background loop that turns due reminder rows
// into notifications. It never runs on the gateway's goroutine; all sends
// go through the Sender handoff.
type Dispatcher struct {
	store   Store
	sender  Sender
	claimer redisclient.Claimer // nil when running a single replica
	opts    Options

	cycles uint64
	now    func() time.Time // swapped in tests
}

func NewDispatcher(store Store, sender Sender, claimer redisclient.Claimer, opts Options) *Dispatcher {
	if opts.PollInterval <= 0 {
		opts.PollInterval = time.Minute
	}
	if opts.HandoffTimeout <= 0 {
		opts.HandoffTimeout = 10 * time.Second
	}
	if opts.BatchLimit <= 0 {
		opts.BatchLimit = 100
	}
	return &Dispatcher{
		store:   store,
		sender:  sender,
		claimer: claimer,
		opts:    opts,
		now:     time.Now,
	}
}

// Run polls until ctx is cancelled. The stop signal is honored between
// cycles, never mid-send. Store outages fail a single cycle and the next
// tick retries; they are never fatal.
func (d *Dispatcher) Run(ctx context.Context) error {
	log.Printf("reminder dispatcher running interval=%s", d.opts.PollInterval)

	// one cycle at startup, same as the ticker would eventually do
	d.RunCycle(ctx)

	ticker := time.NewTicker(d.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("stop signal received, reminder dispatcher exiting")
			return nil
		case <-ticker.C:
			d.RunCycle(ctx)
		}
	}
}

// RunCycle processes every currently due reminder. A failure on one
// reminder is logged and must not abort the rest of the batch.
func (d *Dispatcher) RunCycle(ctx context.Context) {
	d.cycles++

	now := d.now()
	due, err := d.store.FindDueReminders(ctx, now, d.opts.BatchLimit)
	if err != nil {
		log.Printf("due reminder query failed, retrying next cycle: %v", err)
		return
	}

	for i := range due {
		d.deliver(ctx, &due[i])
	}

	if d.cycles%cleanupEveryCycles == 0 {
		if n, err := d.store.DeleteOrphanReminders(ctx); err != nil {
			log.Printf("orphan reminder cleanup failed: %v", err)
		} else if n > 0 {
			log.Printf("removed %d orphan reminders", n)
		}
	}
}

// deliver sends one reminder, claiming it first so a second dispatcher
// replica polling the same store skips it.
func (d *Dispatcher) deliver(ctx context.Context, rem *appointment.Reminder) {
	if d.claimer == nil {
		d.deliverClaimed(ctx, rem)
		return
	}

	err := d.claimer.WithReminderClaim(ctx, rem.ID, func(ctx context.Context) error {
		d.deliverClaimed(ctx, rem)
		return nil
	})
	if err != nil {
		if errors.Is(err, redisclient.ErrClaimNotAcquired) {
			return // another replica has it
		}
		log.Printf("reminder %s claim failed, retrying next cycle: %v", rem.ID, err)
	}
}

func (d *Dispatcher) deliverClaimed(ctx context.Context, rem *appointment.Reminder) {
	appt, err := d.store.GetAppointmentByID(ctx, rem.AppointmentID)
	if err != nil {
		if errors.Is(err, appointment.ErrAppointmentNotFound) {
			// orphan; the periodic cleanup removes it
			log.Printf("reminder %s references missing appointment %s, skipping", rem.ID, rem.AppointmentID)
			return
		}
		log.Printf("reminder %s appointment load failed: %v", rem.ID, err)
		return
	}

	if appt.Status != appointment.StatusScheduled {
		return
	}

	text := RenderMessage(appt, rem)

	// A handoff timeout and a gateway failure are handled the same way:
	// sent stays false and the next poll retries.
	sendCtx, cancel := context.WithTimeout(ctx, d.opts.HandoffTimeout)
	err = d.sender.Send(sendCtx, appt.OwnerID, text)
	cancel()
	if err != nil {
		log.Printf("reminder %s send to owner %d failed, will retry: %v", rem.ID, appt.OwnerID, err)
		return
	}

	// only a confirmed gateway success flips the flag
	flipped, err := d.store.MarkReminderSent(ctx, rem.ID)
	if err != nil {
		log.Printf("reminder %s delivered but not marked sent: %v", rem.ID, err)
		return
	}
	if !flipped {
		// someone else marked it between our query and now
		return
	}

	d.logSent(ctx, appt, rem)
}

func (d *Dispatcher) logSent(ctx context.Context, appt *appointment.Appointment, rem *appointment.Reminder) {
	payload, err := json.Marshal(map[string]any{
		"reminder_id": rem.ID.String(),
		"kind":        rem.Kind,
		"owner_id":    appt.OwnerID,
	})
	if err != nil {
		payload = nil
	}

	apptID := appt.ID
	ev := appointment.EventLog{
		EventType:     appointment.EventReminderSent,
		AppointmentID: &apptID,
		Payload:       payload,
		CreatedAt:     time.Now(),
	}
	if err := d.store.InsertEvent(ctx, ev); err != nil {
		log.Printf("failed to insert %s event for reminder %s: %v", appointment.EventReminderSent, rem.ID, err)
	}
}
