package reminder

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/aymounosbedoui82-commits/lamis/internal/appointment"
)

func sampleAppointment(lang string) *appointment.Appointment {
	return &appointment.Appointment{
		ID:       uuid.New(),
		OwnerID:  42,
		Title:    "Dentist",
		Moment:   time.Date(2026, time.August, 25, 16, 30, 0, 0, time.UTC),
		Language: lang,
		Status:   appointment.StatusScheduled,
	}
}

func TestRenderMessageWordingDiffersByKind(t *testing.T) {
	for _, lang := range []string{"en", "fr", "ar"} {
		appt := sampleAppointment(lang)

		advance := RenderMessage(appt, &appointment.Reminder{
			Kind:   appointment.KindAdvance,
			FireAt: appt.Moment.Add(-time.Hour),
		})
		atTime := RenderMessage(appt, &appointment.Reminder{
			Kind:   appointment.KindAtTime,
			FireAt: appt.Moment,
		})

		if advance == atTime {
			t.Errorf("lang %s: advance and at-time wording identical: %q", lang, advance)
		}
		if !strings.Contains(advance, appt.Title) || !strings.Contains(atTime, appt.Title) {
			t.Errorf("lang %s: title missing from rendered text", lang)
		}
	}
}

func TestRenderMessageLeads(t *testing.T) {
	appt := sampleAppointment("en")

	cases := []struct {
		lead time.Duration
		want string
	}{
		{24 * time.Hour, "24 hours"},
		{time.Hour, "1 hour"},
		{15 * time.Minute, "15 minutes"},
	}

	for _, tc := range cases {
		got := RenderMessage(appt, &appointment.Reminder{
			Kind:   appointment.KindAdvance,
			FireAt: appt.Moment.Add(-tc.lead),
		})
		if !strings.Contains(got, tc.want) {
			t.Errorf("lead %s: %q does not mention %q", tc.lead, got, tc.want)
		}
	}
}

func TestRenderMessageCustomWins(t *testing.T) {
	appt := sampleAppointment("fr")
	custom := "N'oublie pas les documents"

	got := RenderMessage(appt, &appointment.Reminder{
		Kind:          appointment.KindAdvance,
		FireAt:        appt.Moment.Add(-time.Hour),
		CustomMessage: &custom,
	})
	if got != custom {
		t.Fatalf("got %q, want the custom message verbatim", got)
	}
}
