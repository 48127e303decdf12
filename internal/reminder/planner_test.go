package reminder

import (
	"testing"
	"time"

	"github.com/aymounosbedoui82-commits/lamis/internal/appointment"
)

var planNow = time.Date(2026, time.August, 24, 10, 0, 0, 0, time.UTC)

func kinds(reminders []appointment.Reminder) []appointment.ReminderKind {
	out := make([]appointment.ReminderKind, 0, len(reminders))
	for _, r := range reminders {
		out = append(out, r.Kind)
	}
	return out
}

func TestPlanFarFuture(t *testing.T) {
	moment := planNow.Add(30 * time.Hour)
	got := Plan(moment, planNow)

	if len(got) != 4 {
		t.Fatalf("got %d reminders (%v), want 4", len(got), kinds(got))
	}

	wantFireAt := []time.Time{
		moment.Add(-24 * time.Hour),
		moment.Add(-time.Hour),
		moment.Add(-15 * time.Minute),
		moment,
	}
	for i, r := range got {
		if !r.FireAt.Equal(wantFireAt[i]) {
			t.Errorf("reminder %d fires at %s, want %s", i, r.FireAt, wantFireAt[i])
		}
	}

	for i, r := range got[:3] {
		if r.Kind != appointment.KindAdvance {
			t.Errorf("reminder %d kind = %s, want advance", i, r.Kind)
		}
	}
	if got[3].Kind != appointment.KindAtTime {
		t.Errorf("last reminder kind = %s, want at-time", got[3].Kind)
	}
}

func TestPlanThirtyMinutesOut(t *testing.T) {
	moment := planNow.Add(30 * time.Minute)
	got := Plan(moment, planNow)

	if len(got) != 2 {
		t.Fatalf("got %d reminders (%v), want 2", len(got), kinds(got))
	}
	if got[0].Kind != appointment.KindAdvance || !got[0].FireAt.Equal(moment.Add(-15*time.Minute)) {
		t.Errorf("first reminder = %s at %s, want advance at %s", got[0].Kind, got[0].FireAt, moment.Add(-15*time.Minute))
	}
	if got[1].Kind != appointment.KindAtTime || !got[1].FireAt.Equal(moment) {
		t.Errorf("second reminder = %s at %s, want at-time at %s", got[1].Kind, got[1].FireAt, moment)
	}
}

func TestPlanInsideGuardWindow(t *testing.T) {
	got := Plan(planNow.Add(30*time.Second), planNow)
	if len(got) != 0 {
		t.Fatalf("got %d reminders (%v), want none inside the guard window", len(got), kinds(got))
	}
}

func TestPlanBetweenGuardAndFifteenMinutes(t *testing.T) {
	got := Plan(planNow.Add(5*time.Minute), planNow)
	if len(got) != 1 || got[0].Kind != appointment.KindAtTime {
		t.Fatalf("got %v, want only the at-time reminder", kinds(got))
	}
}

func TestPlanPastMomentYieldsNothing(t *testing.T) {
	got := Plan(planNow.Add(-time.Hour), planNow)
	if len(got) != 0 {
		t.Fatalf("got %d reminders for a past moment, want 0", len(got))
	}
}

// Every fire-at must be at or before the appointment moment, and the plan
// must come out ordered.
func TestPlanInvariants(t *testing.T) {
	horizons := []time.Duration{
		50 * time.Hour, 30 * time.Hour, 2 * time.Hour, 40 * time.Minute,
		10 * time.Minute, 50 * time.Second, 10 * time.Second,
	}

	for _, h := range horizons {
		moment := planNow.Add(h)
		got := Plan(moment, planNow)

		for i, r := range got {
			if r.FireAt.After(moment) {
				t.Errorf("horizon %s: reminder %d fires after the moment", h, i)
			}
			if !r.FireAt.After(planNow) {
				t.Errorf("horizon %s: reminder %d not strictly in the future", h, i)
			}
			if i > 0 && got[i-1].FireAt.After(r.FireAt) {
				t.Errorf("horizon %s: plan out of order at %d", h, i)
			}
		}
	}
}
