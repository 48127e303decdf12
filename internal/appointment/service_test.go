package appointment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/aymounosbedoui82-commits/lamis/internal/temporal"
)

type memRepo struct {
	appts     map[uuid.UUID]*Appointment
	reminders map[uuid.UUID][]Reminder
	events    []EventLog

	createRemindersErr error
}

func newMemRepo() *memRepo {
	return &memRepo{
		appts:     make(map[uuid.UUID]*Appointment),
		reminders: make(map[uuid.UUID][]Reminder),
	}
}

func (r *memRepo) CreateAppointment(_ context.Context, a *Appointment) (*Appointment, error) {
	cp := *a
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	r.appts[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r *memRepo) GetAppointmentByID(_ context.Context, id uuid.UUID) (*Appointment, error) {
	a, ok := r.appts[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *memRepo) ListAppointmentsByOwner(_ context.Context, ownerID int64, limit, _ int) ([]Appointment, error) {
	var out []Appointment
	for _, a := range r.appts {
		if a.OwnerID == ownerID && len(out) < limit {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *memRepo) CancelAppointment(_ context.Context, id uuid.UUID) (*Appointment, error) {
	a, ok := r.appts[id]
	if !ok || a.Status != StatusScheduled {
		return nil, ErrAppointmentNotFound
	}
	a.Status = StatusCancelled
	delete(r.reminders, id)
	cp := *a
	return &cp, nil
}

func (r *memRepo) CreateReminders(_ context.Context, reminders []Reminder) error {
	if r.createRemindersErr != nil {
		return r.createRemindersErr
	}
	for _, rem := range reminders {
		r.reminders[rem.AppointmentID] = append(r.reminders[rem.AppointmentID], rem)
	}
	return nil
}

func (r *memRepo) ListRemindersByAppointment(_ context.Context, appointmentID uuid.UUID) ([]Reminder, error) {
	return r.reminders[appointmentID], nil
}

func (r *memRepo) FindDueReminders(_ context.Context, _ time.Time, _ int) ([]Reminder, error) {
	return nil, nil
}

func (r *memRepo) MarkReminderSent(context.Context, uuid.UUID) (bool, error) {
	return false, nil
}

func (r *memRepo) DeleteOrphanReminders(context.Context) (int64, error) {
	return 0, nil
}

func (r *memRepo) InsertEvent(_ context.Context, ev EventLog) error {
	r.events = append(r.events, ev)
	return nil
}

// stubPlan keeps the service tests independent of the planner: one advance
// reminder an hour ahead plus one at the moment itself.
func stubPlan(moment, now time.Time) []Reminder {
	var out []Reminder
	if at := moment.Add(-time.Hour); at.After(now) {
		out = append(out, Reminder{FireAt: at, Kind: KindAdvance})
	}
	out = append(out, Reminder{FireAt: moment, Kind: KindAtTime})
	return out
}

func newTestService(repo Repository, now time.Time) *Service {
	svc := NewService(repo, temporal.NewExtractor(), stubPlan)
	svc.now = func() time.Time { return now }
	return svc
}

func TestScheduleResolvesFragment(t *testing.T) {
	repo := newMemRepo()
	now := time.Date(2026, time.August, 24, 10, 0, 0, 0, time.Local)
	svc := newTestService(repo, now)

	appt, reminders, err := svc.Schedule(context.Background(), ScheduleRequest{
		OwnerID:  7001,
		Title:    "Dentiste",
		When:     "demain à 16h30",
		Language: "fr",
	})
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}

	want := time.Date(2026, time.August, 25, 16, 30, 0, 0, time.Local)
	if !appt.Moment.Equal(want) {
		t.Fatalf("moment = %v, want %v", appt.Moment, want)
	}
	if appt.Status != StatusScheduled {
		t.Fatalf("status = %s, want scheduled", appt.Status)
	}
	if appt.Priority != PriorityMedium {
		t.Fatalf("priority = %d, want default medium", appt.Priority)
	}

	if len(reminders) != 2 {
		t.Fatalf("planned %d reminders, want 2", len(reminders))
	}
	for _, rem := range reminders {
		if rem.ID == uuid.Nil {
			t.Fatal("reminder persisted without an id")
		}
		if rem.AppointmentID != appt.ID {
			t.Fatalf("reminder linked to %s, want %s", rem.AppointmentID, appt.ID)
		}
	}

	stored, err := repo.ListRemindersByAppointment(context.Background(), appt.ID)
	if err != nil || len(stored) != 2 {
		t.Fatalf("stored reminders = %d (%v), want 2", len(stored), err)
	}
	if len(repo.events) != 1 || repo.events[0].EventType != EventAppointmentScheduled {
		t.Fatalf("events = %+v, want one APPOINTMENT_SCHEDULED", repo.events)
	}
}

func TestScheduleTruncatesToSecond(t *testing.T) {
	repo := newMemRepo()
	now := time.Date(2026, time.August, 24, 10, 0, 0, 123456789, time.Local)
	svc := newTestService(repo, now)

	appt, _, err := svc.Schedule(context.Background(), ScheduleRequest{
		OwnerID:  7001,
		Title:    "Check-up",
		When:     "in two hours",
		Language: "en",
	})
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if appt.Moment.Nanosecond() != 0 {
		t.Fatalf("moment %v keeps sub-second precision", appt.Moment)
	}
	if !appt.Moment.After(now) {
		t.Fatalf("moment %v not after now %v", appt.Moment, now)
	}
}

func TestScheduleValidation(t *testing.T) {
	repo := newMemRepo()
	now := time.Date(2026, time.August, 24, 10, 0, 0, 0, time.Local)
	svc := newTestService(repo, now)

	cases := []struct {
		name    string
		req     ScheduleRequest
		wantErr error
	}{
		{
			name:    "empty title",
			req:     ScheduleRequest{OwnerID: 1, When: "demain", Language: "fr"},
			wantErr: ErrEmptyTitle,
		},
		{
			name:    "priority out of range",
			req:     ScheduleRequest{OwnerID: 1, Title: "x", When: "demain", Language: "fr", Priority: 9},
			wantErr: ErrInvalidPriority,
		},
		{
			name:    "no temporal expression",
			req:     ScheduleRequest{OwnerID: 1, Title: "x", When: "see you around", Language: "en"},
			wantErr: temporal.ErrNoExpression,
		},
		{
			name:    "invalid calendar date",
			req:     ScheduleRequest{OwnerID: 1, Title: "x", When: "31/02", Language: "en"},
			wantErr: temporal.ErrInvalidDate,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := svc.Schedule(context.Background(), tc.req)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("Schedule error = %v, want %v", err, tc.wantErr)
			}
		})
	}

	if len(repo.appts) != 0 {
		t.Fatalf("rejected requests persisted %d appointments", len(repo.appts))
	}
}

func TestScheduleRejectsPastMoment(t *testing.T) {
	repo := newMemRepo()
	// at 23:50 a bare "à 16h30" resolves to tomorrow, so pin a clock where a
	// same-day time lands in the past
	now := time.Date(2026, time.August, 24, 18, 0, 0, 0, time.Local)
	svc := newTestService(repo, now)

	_, _, err := svc.Schedule(context.Background(), ScheduleRequest{
		OwnerID:  1,
		Title:    "x",
		When:     "24/08 at 10:00",
		Language: "en",
	})
	if !errors.Is(err, ErrMomentInPast) {
		t.Fatalf("Schedule error = %v, want ErrMomentInPast", err)
	}
}

func TestScheduleReminderWriteFailureKeepsAppointment(t *testing.T) {
	repo := newMemRepo()
	repo.createRemindersErr = errors.New("connection reset")
	now := time.Date(2026, time.August, 24, 10, 0, 0, 0, time.Local)
	svc := newTestService(repo, now)

	appt, reminders, err := svc.Schedule(context.Background(), ScheduleRequest{
		OwnerID:  1,
		Title:    "x",
		When:     "demain à 16h30",
		Language: "fr",
	})
	if err == nil {
		t.Fatal("Schedule succeeded despite reminder write failure")
	}
	if appt == nil {
		t.Fatal("appointment row discarded on reminder write failure")
	}
	if reminders != nil {
		t.Fatalf("got reminders %v on reminder write failure", reminders)
	}
	if _, ok := repo.appts[appt.ID]; !ok {
		t.Fatal("appointment not persisted")
	}
}

func TestCancel(t *testing.T) {
	repo := newMemRepo()
	now := time.Date(2026, time.August, 24, 10, 0, 0, 0, time.Local)
	svc := newTestService(repo, now)

	appt, _, err := svc.Schedule(context.Background(), ScheduleRequest{
		OwnerID:  1,
		Title:    "x",
		When:     "demain à 16h30",
		Language: "fr",
	})
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}

	cancelled, err := svc.Cancel(context.Background(), appt.ID)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if cancelled.Status != StatusCancelled {
		t.Fatalf("status = %s, want cancelled", cancelled.Status)
	}

	rems, _ := repo.ListRemindersByAppointment(context.Background(), appt.ID)
	if len(rems) != 0 {
		t.Fatalf("cancel left %d reminders behind", len(rems))
	}

	if _, err := svc.Cancel(context.Background(), appt.ID); !errors.Is(err, ErrAlreadyCancelled) {
		t.Fatalf("second Cancel error = %v, want ErrAlreadyCancelled", err)
	}

	if _, err := svc.Cancel(context.Background(), uuid.New()); !errors.Is(err, ErrAppointmentNotFound) {
		t.Fatalf("Cancel of unknown id error = %v, want ErrAppointmentNotFound", err)
	}
}

func TestListByOwnerClampsLimit(t *testing.T) {
	repo := newMemRepo()
	now := time.Date(2026, time.August, 24, 10, 0, 0, 0, time.Local)
	svc := newTestService(repo, now)

	for i := 0; i < 30; i++ {
		if _, _, err := svc.Schedule(context.Background(), ScheduleRequest{
			OwnerID:  1,
			Title:    "x",
			When:     "demain à 16h30",
			Language: "fr",
		}); err != nil {
			t.Fatalf("Schedule: %v", err)
		}
	}

	got, err := svc.ListByOwner(context.Background(), 1, 0, 0)
	if err != nil {
		t.Fatalf("ListByOwner: %v", err)
	}
	if len(got) != 20 {
		t.Fatalf("default limit returned %d rows, want 20", len(got))
	}
}
