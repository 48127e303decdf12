package appointment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/aymounosbedoui82-commits/lamis/internal/temporal"
)

const (
	EventAppointmentScheduled = "APPOINTMENT_SCHEDULED"
	EventAppointmentCancelled = "APPOINTMENT_CANCELLED"
	EventReminderSent         = "REMINDER_SENT"
)

var (
	ErrMomentInPast     = errors.New("appointment moment is not in the future")
	ErrInvalidPriority  = errors.New("priority must be urgent, medium or low")
	ErrAlreadyCancelled = errors.New("appointment is already cancelled")
	ErrEmptyTitle       = errors.New("appointment title must not be empty")
)

// PlanFunc computes the reminder sequence for an appointment moment.
// The reminder package provides the production implementation.
type PlanFunc func(moment, now time.Time) []Reminder

// ScheduleRequest carries everything the upstream dialogue layer resolved:
// the owner, a title, the raw temporal fragment and its language hint.
type ScheduleRequest struct {
	OwnerID     int64
	Title       string
	Description string
	When        string // free-form temporal fragment, e.g. "demain à 16h30"
	Language    string // ar, fr or en
	Priority    Priority
}

type Service struct {
	repo      Repository
	extractor *temporal.Extractor
	plan      PlanFunc

	now func() time.Time // swapped in tests
}

func NewService(repo Repository, extractor *temporal.Extractor, plan PlanFunc) *Service {
	return &Service{
		repo:      repo,
		extractor: extractor,
		plan:      plan,
		now:       time.Now,
	}
}

// Schedule resolves the temporal fragment into an absolute moment, persists
// the appointment and then its planned reminders. The two writes are
// deliberately not one transaction: an appointment without reminders, or a
// reminder that outlives its appointment, is a recoverable state handled by
// periodic cleanup.
func (s *Service) Schedule(ctx context.Context, req ScheduleRequest) (*Appointment, []Reminder, error) {
	if req.Title == "" {
		return nil, nil, ErrEmptyTitle
	}

	priority := req.Priority
	if priority == 0 {
		priority = PriorityMedium
	}
	if !priority.Valid() {
		return nil, nil, ErrInvalidPriority
	}

	now := s.now()

	moment, err := s.extractor.Resolve(req.When, req.Language, now)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve %q: %w", req.When, err)
	}
	if !moment.After(now) {
		return nil, nil, ErrMomentInPast
	}

	appt := &Appointment{
		ID:          uuid.New(),
		OwnerID:     req.OwnerID,
		Title:       req.Title,
		Description: req.Description,
		Moment:      moment.Truncate(time.Second),
		Priority:    priority,
		Language:    req.Language,
		Status:      StatusScheduled,
	}

	created, err := s.repo.CreateAppointment(ctx, appt)
	if err != nil {
		return nil, nil, fmt.Errorf("create appointment: %w", err)
	}

	reminders := s.plan(created.Moment, now)
	for i := range reminders {
		reminders[i].ID = uuid.New()
		reminders[i].AppointmentID = created.ID
	}

	if len(reminders) > 0 {
		if err := s.repo.CreateReminders(ctx, reminders); err != nil {
			// the appointment row stays; the caller may retry planning
			return created, nil, fmt.Errorf("create reminders: %w", err)
		}
	}

	s.logEvent(ctx, created.ID, EventAppointmentScheduled, map[string]any{
		"owner_id":  created.OwnerID,
		"moment":    created.Moment,
		"reminders": len(reminders),
	})

	return created, reminders, nil
}

// Cancel removes a scheduled appointment together with its reminders.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	appt, err := s.repo.CancelAppointment(ctx, id)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			// distinguish "never existed" from "already cancelled"
			if existing, getErr := s.repo.GetAppointmentByID(ctx, id); getErr == nil && existing.Status == StatusCancelled {
				return nil, ErrAlreadyCancelled
			}
		}
		return nil, err
	}

	s.logEvent(ctx, appt.ID, EventAppointmentCancelled, map[string]any{})

	return appt, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.repo.GetAppointmentByID(ctx, id)
}

func (s *Service) Reminders(ctx context.Context, appointmentID uuid.UUID) ([]Reminder, error) {
	return s.repo.ListRemindersByAppointment(ctx, appointmentID)
}

func (s *Service) ListByOwner(ctx context.Context, ownerID int64, limit, offset int) ([]Appointment, error) {
	if limit <= 0 {
		limit = 20 // default
	}
	if limit > 100 {
		limit = 100 // max
	}
	if offset < 0 {
		offset = 0
	}

	return s.repo.ListAppointmentsByOwner(ctx, ownerID, limit, offset)
}

func (s *Service) logEvent(ctx context.Context, appointmentID uuid.UUID, eventType string, payload map[string]any) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("failed to marshal event payload for %s: %v", eventType, err)
		data = nil
	}

	apptID := appointmentID

	ev := EventLog{
		EventType:     eventType,
		AppointmentID: &apptID,
		Payload:       data,
		CreatedAt:     time.Now(),
	}

	if err := s.repo.InsertEvent(ctx, ev); err != nil {
		log.Printf("failed to insert event log %s for appointment %s: %v", eventType, appointmentID, err)
	}
}
