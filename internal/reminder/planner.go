package reminder

import (
	"time"

	"github.com/aymounosbedoui82-commits/lamis/internal/appointment"
)

// GuardWindow suppresses the at-time reminder for appointments created
// almost exactly at their own moment: without it, clock granularity makes a
// freshly created appointment fire a notification immediately.
const GuardWindow = 45 * time.Second

// advanceOffsets are the candidate lead times, largest first, so the
// resulting plan comes out ordered by fire-at ascending.
var advanceOffsets = []time.Duration{
	24 * time.Hour,
	time.Hour,
	15 * time.Minute,
}

// Plan computes the reminder sequence for an appointment moment. An advance
// offset is included only when its fire-at is still strictly in the future;
// the at-time reminder is included unless the moment lies inside the guard
// window. An appointment far enough out gets four reminders, one inside the
// guard window gets none.
func Plan(moment, now time.Time) []appointment.Reminder {
	var out []appointment.Reminder

	for _, offset := range advanceOffsets {
		fireAt := moment.Add(-offset)
		if fireAt.After(now) {
			out = append(out, appointment.Reminder{
				FireAt: fireAt,
				Kind:   appointment.KindAdvance,
			})
		}
	}

	if moment.Sub(now) > GuardWindow {
		out = append(out, appointment.Reminder{
			FireAt: moment,
			Kind:   appointment.KindAtTime,
		})
	}

	return out
}
