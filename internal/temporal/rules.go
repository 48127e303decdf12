package temporal

import (
	"regexp"
	"strings"
	"time"
)

// languageRules is the immutable rule table for one language. Tables are
// built once by NewExtractor and never mutated afterwards; every parsing
// rule is a first-class entry here rather than scattered string handling.
type languageRules struct {
	// time of day cascade, in priority order
	hourMinute  *regexp.Regexp // 16:30
	hourHMinute *regexp.Regexp // 16h30, nil when the language does not use it
	hourH       *regexp.Regexp // 16h, nil when the language does not use it
	keywordHour *regexp.Regexp // "at 16": bare hour gated by a mandatory keyword
	markedHour  *regexp.Regexp // "4pm": bare hour allowed only with an AM/PM marker

	// AM/PM marker scan over the whole fragment
	amMarker *regexp.Regexp
	pmMarker *regexp.Regexp

	// relative expressions
	relative *regexp.Regexp // "in N minutes/hours/days", groups: quantity, unit
	idioms   []idiom        // numberless forms, checked only when relative misses

	// dates
	numericDate *regexp.Regexp // DD/MM or DD/MM/YYYY
	monthDate   *regexp.Regexp // "25 december", "december 25, 2026"
	months      map[string]time.Month
	dayKeywords []dayKeyword
	weekdays    []weekdayName
	nextWeek    []string
}

type idiom struct {
	phrase string
	d      time.Duration
}

type dayKeyword struct {
	phrase string
	offset int // days from today
}

type weekdayName struct {
	phrase string
	day    time.Weekday
}

const (
	hourGroup   = `([01]?[0-9]|2[0-3])`
	twelveGroup = `(1[0-2]|[0-9])`
)

var (
	reHourMinute   = regexp.MustCompile(`\b` + hourGroup + `:([0-5][0-9])\b`)
	reHourHMinute  = regexp.MustCompile(`\b` + hourGroup + `h([0-5][0-9])\b`)
	reHourH        = regexp.MustCompile(`\b` + hourGroup + `h\b`)
	reNumericDate  = regexp.MustCompile(`\b([0-9]{1,2})/([0-9]{1,2})(?:/([0-9]{2,4}))?\b`)
	reArabicDigits = strings.NewReplacer(
		"٠", "0", "١", "1", "٢", "2", "٣", "3", "٤", "4",
		"٥", "5", "٦", "6", "٧", "7", "٨", "8", "٩", "9",
		"۰", "0", "۱", "1", "۲", "2", "۳", "3", "۴", "4",
		"۵", "5", "۶", "6", "۷", "7", "۸", "8", "۹", "9",
	)
	arabicNormalizer = strings.NewReplacer(
		"أ", "ا", "إ", "ا", "آ", "ا", "ى", "ي", "ـ", "",
		"ً", "", "ٌ", "", "ٍ", "", "َ", "",
		"ُ", "", "ِ", "", "ّ", "", "ْ", "",
	)
)

// normalize lowercases the fragment, maps Arabic-Indic digits to ASCII and
// strips Arabic diacritics and hamza variants, so lexicon entries and user
// input compare in one canonical form. Rule tables are normalized with the
// same function at build time.
func normalize(text string) string {
	return arabicNormalizer.Replace(reArabicDigits.Replace(strings.ToLower(text)))
}

// monthDatePattern builds the month-name date regexp from an alternation of
// normalized month aliases: optional day before, the month, optional day
// after, optional year. The caller still has to verify the month is not a
// prefix of a longer word, RE2 has no lookahead for that.
func monthDatePattern(alternation string) *regexp.Regexp {
	return regexp.MustCompile(
		`(?:^|[\s,.])(?:([0-9]{1,2})(?:st|nd|rd|th|er)?\s+(?:of\s+|de\s+|من\s+)?)?` +
			`(` + alternation + `)\.?` +
			`(?:[\s,]+([0-9]{1,2})\b)?` +
			`(?:[\s,]+([0-9]{4})\b)?`)
}

func monthAlternation(months map[string]time.Month) string {
	// longest alias first so "janvier" is not shadowed by "janv"
	keys := make([]string, 0, len(months))
	for k := range months {
		keys = append(keys, regexp.QuoteMeta(k))
	}
	for i := 0; i < len(keys); i++ {
		for j := i + 1; j < len(keys); j++ {
			if len(keys[j]) > len(keys[i]) {
				keys[i], keys[j] = keys[j], keys[i]
			}
		}
	}
	return strings.Join(keys, "|")
}

func normalizeMonths(in map[string]time.Month) map[string]time.Month {
	out := make(map[string]time.Month, len(in))
	for k, v := range in {
		out[normalize(k)] = v
	}
	return out
}

func newEnglishRules() *languageRules {
	months := normalizeMonths(map[string]time.Month{
		// full names
		"january": time.January, "february": time.February, "march": time.March,
		"april": time.April, "may": time.May, "june": time.June,
		"july": time.July, "august": time.August, "september": time.September,
		"october": time.October, "november": time.November, "december": time.December,
		// abbreviated family
		"jan": time.January, "feb": time.February, "mar": time.March,
		"apr": time.April, "jun": time.June, "jul": time.July,
		"aug": time.August, "sep": time.September, "sept": time.September,
		"oct": time.October, "nov": time.November, "dec": time.December,
	})

	return &languageRules{
		hourMinute:  reHourMinute,
		keywordHour: regexp.MustCompile(`(?:^|\s)(?:at|on)\s+` + hourGroup + `\b`),
		markedHour:  regexp.MustCompile(`\b` + twelveGroup + `\s*(a\.m\.|p\.m\.|am\b|pm\b)`),
		amMarker:    regexp.MustCompile(`\b(?:a\.m\.|am\b|in the morning|this morning)`),
		pmMarker:    regexp.MustCompile(`\b(?:p\.m\.|pm\b|in the afternoon|in the evening|tonight\b)`),
		relative:    regexp.MustCompile(`\bin\s+([0-9]+)\s*(minutes?|mins?|hours?|hrs?|days?)\b`),
		idioms: []idiom{
			{"in half an hour", 30 * time.Minute},
			{"in a quarter of an hour", 15 * time.Minute},
			{"in a couple of hours", 2 * time.Hour},
			{"in two hours", 2 * time.Hour},
			{"in an hour", time.Hour},
			{"in a day", 24 * time.Hour},
		},
		numericDate: reNumericDate,
		monthDate:   monthDatePattern(monthAlternation(months)),
		months:      months,
		dayKeywords: []dayKeyword{
			{"day after tomorrow", 2},
			{"tomorrow", 1},
			{"today", 0},
			{"tonight", 0},
		},
		weekdays: []weekdayName{
			{"monday", time.Monday}, {"tuesday", time.Tuesday},
			{"wednesday", time.Wednesday}, {"thursday", time.Thursday},
			{"friday", time.Friday}, {"saturday", time.Saturday},
			{"sunday", time.Sunday},
		},
		nextWeek: []string{"next week"},
	}
}

func newFrenchRules() *languageRules {
	months := normalizeMonths(map[string]time.Month{
		// full names
		"janvier": time.January, "février": time.February, "fevrier": time.February,
		"mars": time.March, "avril": time.April, "mai": time.May,
		"juin": time.June, "juillet": time.July, "août": time.August,
		"aout": time.August, "septembre": time.September, "octobre": time.October,
		"novembre": time.November, "décembre": time.December, "decembre": time.December,
		// abbreviated family
		"janv": time.January, "févr": time.February, "fevr": time.February,
		"avr": time.April, "juil": time.July, "sept": time.September,
		"oct": time.October, "nov": time.November, "déc": time.December,
		"dec": time.December,
	})

	return &languageRules{
		hourMinute:  reHourMinute,
		hourHMinute: reHourHMinute,
		hourH:       reHourH,
		keywordHour: regexp.MustCompile(`(?:^|\s)(?:à|a|vers)\s+` + hourGroup + `\b`),
		markedHour:  regexp.MustCompile(`(?:^|\s)` + twelveGroup + `\s*h?\s*(du matin|du soir|de l'après-midi|de l'apres-midi)`),
		amMarker:    regexp.MustCompile(`\b(?:du matin|le matin|ce matin)\b`),
		pmMarker:    regexp.MustCompile(`\b(?:du soir|le soir|ce soir|de l'après-midi|de l'apres-midi|l'après-midi|l'apres-midi)`),
		relative:    regexp.MustCompile(`\bdans\s+([0-9]+)\s*(minutes?|min\b|heures?|jours?)`),
		idioms: []idiom{
			{"dans une demi-heure", 30 * time.Minute},
			{"dans une demi heure", 30 * time.Minute},
			{"dans un quart d'heure", 15 * time.Minute},
			{"dans deux heures", 2 * time.Hour},
			{"dans une heure", time.Hour},
			{"dans un jour", 24 * time.Hour},
		},
		numericDate: reNumericDate,
		monthDate:   monthDatePattern(monthAlternation(months)),
		months:      months,
		dayKeywords: []dayKeyword{
			{"après-demain", 2},
			{"apres-demain", 2},
			{"après demain", 2},
			{"apres demain", 2},
			{"demain", 1},
			{"aujourd'hui", 0},
			{"ce soir", 0},
		},
		weekdays: []weekdayName{
			{"lundi", time.Monday}, {"mardi", time.Tuesday},
			{"mercredi", time.Wednesday}, {"jeudi", time.Thursday},
			{"vendredi", time.Friday}, {"samedi", time.Saturday},
			{"dimanche", time.Sunday},
		},
		nextWeek: []string{"la semaine prochaine", "semaine prochaine"},
	}
}

func newArabicRules() *languageRules {
	// Two alias families map to the same canonical month: Modern Standard
	// Arabic names and the Maghrebi (French-derived) names users in the
	// dialect actually type.
	months := normalizeMonths(map[string]time.Month{
		// MSA family
		"يناير": time.January, "فبراير": time.February, "مارس": time.March,
		"أبريل": time.April, "ابريل": time.April, "مايو": time.May,
		"يونيو": time.June, "يوليو": time.July, "أغسطس": time.August,
		"اغسطس": time.August, "سبتمبر": time.September, "أكتوبر": time.October,
		"اكتوبر": time.October, "نوفمبر": time.November, "ديسمبر": time.December,
		// Maghrebi family
		"جانفي": time.January, "فيفري": time.February, "أفريل": time.April,
		"افريل": time.April, "ماي": time.May, "جوان": time.June,
		"جويلية": time.July, "جويليه": time.July, "أوت": time.August,
		"اوت": time.August,
	})

	rules := &languageRules{
		hourMinute:  reHourMinute,
		keywordHour: regexp.MustCompile(`(?:^|\s)(?:على الساعه|على الساعة|الساعة|الساعه|على|عند|في)\s*` + hourGroup + `\b`),
		markedHour:  regexp.MustCompile(`(?:^|\s)` + twelveGroup + `\s*(صباحا|مساء|بعد الظهر|في الصباح|في المساء)`),
		amMarker:    regexp.MustCompile(`(?:^|\s)(?:صباحا|الصبح|في الصباح|صباح)`),
		pmMarker:    regexp.MustCompile(`(?:^|\s)(?:مساء|بعد الظهر|في المساء|العشيه|العشية|الليل|ليلا)`),
		relative:    regexp.MustCompile(`(?:^|\s)بعد\s+([0-9]+)\s*(دقيقه|دقيقة|دقائق|دقايق|ساعه|ساعة|ساعات|يوم|أيام|ايام)`),
		idioms: []idiom{
			{"بعد نصف ساعة", 30 * time.Minute},
			{"بعد نص ساعة", 30 * time.Minute},
			{"بعد ربع ساعة", 15 * time.Minute},
			{"بعد ساعتين", 2 * time.Hour},
			{"بعد ساعة", time.Hour},
			{"بعد يومين", 48 * time.Hour},
			{"بعد يوم", 24 * time.Hour},
		},
		numericDate: reNumericDate,
		monthDate:   monthDatePattern(monthAlternation(months)),
		months:      months,
		dayKeywords: []dayKeyword{
			{"بعد غد", 2},
			{"بعد غدا", 2},
			{"غدوة", 1},
			{"غدا", 1},
			{"اليوم", 0},
			{"الليلة", 0},
		},
		weekdays: []weekdayName{
			{"الاثنين", time.Monday}, {"الإثنين", time.Monday},
			{"الثلاثاء", time.Tuesday}, {"الأربعاء", time.Wednesday},
			{"الاربعاء", time.Wednesday}, {"الخميس", time.Thursday},
			{"الجمعة", time.Friday}, {"السبت", time.Saturday},
			{"الأحد", time.Sunday}, {"الاحد", time.Sunday},
		},
		nextWeek: []string{"الأسبوع القادم", "الاسبوع القادم", "الأسبوع الجاي", "الاسبوع الجاي"},
	}

	normalizeRules(rules)
	return rules
}

// normalizeRules canonicalizes phrase tables so they match normalized input.
func normalizeRules(r *languageRules) {
	for i := range r.idioms {
		r.idioms[i].phrase = normalize(r.idioms[i].phrase)
	}
	for i := range r.dayKeywords {
		r.dayKeywords[i].phrase = normalize(r.dayKeywords[i].phrase)
	}
	for i := range r.weekdays {
		r.weekdays[i].phrase = normalize(r.weekdays[i].phrase)
	}
	for i := range r.nextWeek {
		r.nextWeek[i] = normalize(r.nextWeek[i])
	}
}
