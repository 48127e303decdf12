package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/aymounosbedoui82-commits/lamis/internal/appointment"
)

type ScheduleAppointmentRequest struct {
	OwnerID     int64  `json:"owner_id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	When        string `json:"when"`     // free-form temporal fragment
	Language    string `json:"language"` // ar, fr or en
	Priority    string `json:"priority,omitempty"`
}

type ReminderResponse struct {
	ID     uuid.UUID `json:"id"`
	FireAt time.Time `json:"fire_at"`
	Kind   string    `json:"kind"`
	Sent   bool      `json:"sent"`
}

type AppointmentResponse struct {
	ID        uuid.UUID          `json:"id"`
	OwnerID   int64              `json:"owner_id"`
	Title     string             `json:"title"`
	Moment    time.Time          `json:"moment"`
	Priority  string             `json:"priority"`
	Language  string             `json:"language"`
	Status    string             `json:"status"`
	Reminders []ReminderResponse `json:"reminders,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

var priorityNames = map[appointment.Priority]string{
	appointment.PriorityUrgent: "urgent",
	appointment.PriorityMedium: "medium",
	appointment.PriorityLow:    "low",
}

func parsePriority(s string) (appointment.Priority, bool) {
	switch s {
	case "", "medium":
		return appointment.PriorityMedium, true
	case "urgent":
		return appointment.PriorityUrgent, true
	case "low":
		return appointment.PriorityLow, true
	default:
		return 0, false
	}
}

func appointmentResponse(a *appointment.Appointment, reminders []appointment.Reminder) AppointmentResponse {
	resp := AppointmentResponse{
		ID:       a.ID,
		OwnerID:  a.OwnerID,
		Title:    a.Title,
		Moment:   a.Moment,
		Priority: priorityNames[a.Priority],
		Language: a.Language,
		Status:   string(a.Status),
	}
	for _, r := range reminders {
		resp.Reminders = append(resp.Reminders, ReminderResponse{
			ID:     r.ID,
			FireAt: r.FireAt,
			Kind:   string(r.Kind),
			Sent:   r.Sent,
		})
	}
	return resp
}
