package reminder

import (
	"fmt"
	"time"

	"github.com/aymounosbedoui82-commits/lamis/internal/appointment"
)

// RenderMessage builds the notification text for a reminder in the owner's
// language. Advance and at-time reminders use different wording; a custom
// message on the reminder wins over both.
func RenderMessage(appt *appointment.Appointment, rem *appointment.Reminder) string {
	if rem.CustomMessage != nil && *rem.CustomMessage != "" {
		return *rem.CustomMessage
	}

	clock := appt.Moment.Format("15:04")

	if rem.Kind == appointment.KindAtTime {
		switch appt.Language {
		case "ar":
			return fmt.Sprintf("حان الآن موعد \"%s\".", appt.Title)
		case "fr":
			return fmt.Sprintf("C'est l'heure : « %s » commence maintenant.", appt.Title)
		default:
			return fmt.Sprintf("It's time: %q is starting now.", appt.Title)
		}
	}

	lead := leadPhrase(appt.Language, appt.Moment.Sub(rem.FireAt))

	switch appt.Language {
	case "ar":
		return fmt.Sprintf("تذكير: موعد \"%s\" بعد %s، على الساعة %s.", appt.Title, lead, clock)
	case "fr":
		return fmt.Sprintf("Rappel : « %s » commence dans %s, à %s.", appt.Title, lead, clock)
	default:
		return fmt.Sprintf("Reminder: %q is coming up in %s, at %s.", appt.Title, lead, clock)
	}
}

// leadPhrase renders a lead duration in whole hours or minutes; the planner
// only produces offsets on those grains.
func leadPhrase(lang string, lead time.Duration) string {
	if lead >= time.Hour {
		n := int(lead.Round(time.Hour) / time.Hour)
		switch lang {
		case "ar":
			if n == 1 {
				return "ساعة واحدة"
			}
			return fmt.Sprintf("%d ساعة", n)
		case "fr":
			if n == 1 {
				return "1 heure"
			}
			return fmt.Sprintf("%d heures", n)
		default:
			if n == 1 {
				return "1 hour"
			}
			return fmt.Sprintf("%d hours", n)
		}
	}

	n := int(lead.Round(time.Minute) / time.Minute)
	switch lang {
	case "ar":
		return fmt.Sprintf("%d دقيقة", n)
	case "fr":
		return fmt.Sprintf("%d minutes", n)
	default:
		return fmt.Sprintf("%d minutes", n)
	}
}
