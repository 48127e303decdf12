package temporal

import (
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

type marker int

const (
	markerNone marker = iota
	markerAM
	markerPM
)

// Extractor turns free-form text in Arabic, French or English into partial
// date/time values. All rule tables are built once and never mutated, so a
// single Extractor is safe for concurrent use.
type Extractor struct {
	rules map[string]*languageRules
}

func NewExtractor() *Extractor {
	return &Extractor{
		rules: map[string]*languageRules{
			"en": newEnglishRules(),
			"fr": newFrenchRules(),
			"ar": newArabicRules(),
		},
	}
}

// rulesFor falls back to English for unknown language tags.
func (e *Extractor) rulesFor(lang string) *languageRules {
	if r, ok := e.rules[strings.ToLower(lang)]; ok {
		return r
	}
	return e.rules["en"]
}

// ExtractTime runs an ordered cascade over the fragment and returns the first
// match, or nil when nothing matches. The cascade order is load-bearing: the
// explicit forms go first, and a bare number is only ever read as an hour when
// gated by a keyword or an AM/PM marker, so a free-standing day-of-month digit
// elsewhere in the sentence cannot be misread as a time.
func (e *Extractor) ExtractTime(text, lang string, now time.Time) *ClockTime {
	r := e.rulesFor(lang)
	norm := normalize(text)
	mk := r.findMarker(norm)

	// 1. explicit HH:MM
	if m := r.hourMinute.FindStringSubmatch(norm); m != nil {
		return &ClockTime{Hour: applyMarker(atoi(m[1]), mk), Minute: atoi(m[2])}
	}

	// 2. HHhMM, where the language uses it
	if r.hourHMinute != nil {
		if m := r.hourHMinute.FindStringSubmatch(norm); m != nil {
			return &ClockTime{Hour: applyMarker(atoi(m[1]), mk), Minute: atoi(m[2])}
		}
	}

	// 3. HHh without minutes
	if r.hourH != nil {
		if m := r.hourH.FindStringSubmatch(norm); m != nil {
			return &ClockTime{Hour: applyMarker(atoi(m[1]), mk)}
		}
	}

	// 4. keyword-gated bare hour ("at 16")
	if m := r.keywordHour.FindStringSubmatch(norm); m != nil {
		h := atoi(m[1])
		if mk == markerNone {
			return &ClockTime{Hour: assumeAfternoon(h, now)}
		}
		return &ClockTime{Hour: applyMarker(h, mk)}
	}

	// 5. bare hour with an attached AM/PM marker ("4pm")
	if m := r.markedHour.FindStringSubmatch(norm); m != nil {
		return &ClockTime{Hour: applyMarker(atoi(m[1]), r.classifyMarker(m[2]))}
	}

	return nil
}

// findMarker scans the whole fragment for an AM/PM marker.
func (r *languageRules) findMarker(norm string) marker {
	if r.pmMarker.MatchString(norm) {
		return markerPM
	}
	if r.amMarker.MatchString(norm) {
		return markerAM
	}
	return markerNone
}

// classifyMarker decides which family a captured marker token belongs to.
func (r *languageRules) classifyMarker(token string) marker {
	return r.findMarker(" " + token)
}

// applyMarker converts a 12-hour reading to 24-hour when an explicit marker
// is present. Hours of 13 and above are taken literally.
func applyMarker(h int, mk marker) int {
	switch {
	case mk == markerPM && h >= 1 && h <= 11:
		return h + 12
	case mk == markerAM && h == 12:
		return 0
	default:
		return h
	}
}

// assumeAfternoon is the inherited disambiguation policy for a marker-less
// hour between 1 and 11: assume the afternoon reading, unless the morning
// reading is still ahead of the current wall-clock hour. The policy is
// arguably wrong for some inputs and is kept as a single named decision so
// it can be revisited in one place.
func assumeAfternoon(h int, now time.Time) int {
	if h < 1 || h > 11 {
		return h
	}
	if now.Hour() < 12 && h > now.Hour() {
		return h
	}
	return h + 12
}

// ExtractRelative recognizes "in N minutes/hours/days" forms. The numeral
// form is evaluated first; the small numberless idiom lexicon is consulted
// only when no numeral form matched, so it can never mask an explicit
// quantity.
func (e *Extractor) ExtractRelative(text, lang string) (time.Duration, bool) {
	r := e.rulesFor(lang)
	norm := normalize(text)

	if m := r.relative.FindStringSubmatch(norm); m != nil {
		return time.Duration(atoi(m[1])) * unitDuration(m[2]), true
	}

	for _, id := range r.idioms {
		if containsPhrase(norm, id.phrase) {
			return id.d, true
		}
	}

	return 0, false
}

func unitDuration(unit string) time.Duration {
	switch {
	case strings.HasPrefix(unit, "min") || strings.HasPrefix(unit, "دق"):
		return time.Minute
	case strings.HasPrefix(unit, "h") || strings.HasPrefix(unit, "ساع"):
		return time.Hour
	default:
		return 24 * time.Hour
	}
}

// ExtractDate recognizes numeric dates, day keywords, weekday names,
// next-week phrases and month-name dates, in that order. A match that names
// a day which does not exist in its month is a construction error, never
// clamped. No match at all returns (nil, nil).
func (e *Extractor) ExtractDate(text, lang string, now time.Time) (*Date, error) {
	r := e.rulesFor(lang)
	norm := normalize(text)

	// explicit DD/MM or DD/MM/YYYY
	if m := r.numericDate.FindStringSubmatch(norm); m != nil {
		year := now.Year()
		if m[3] != "" {
			year = atoi(m[3])
			if year < 100 {
				year += 2000
			}
		}
		d, err := NewDate(year, time.Month(atoi(m[2])), atoi(m[1]))
		if err != nil {
			return nil, err
		}
		return &d, nil
	}

	// today / tomorrow / day after tomorrow
	for _, kw := range r.dayKeywords {
		if containsPhrase(norm, kw.phrase) {
			return dateFrom(now.AddDate(0, 0, kw.offset)), nil
		}
	}

	// explicit weekday name resolves to the next upcoming one
	for _, wd := range r.weekdays {
		if containsPhrase(norm, wd.phrase) {
			ahead := (int(wd.day) - int(now.Weekday()) + 7) % 7
			if ahead == 0 {
				ahead = 7
			}
			return dateFrom(now.AddDate(0, 0, ahead)), nil
		}
	}

	for _, phrase := range r.nextWeek {
		if containsPhrase(norm, phrase) {
			return dateFrom(now.AddDate(0, 0, 7)), nil
		}
	}

	return e.extractMonthDate(r, norm, now)
}

func (e *Extractor) extractMonthDate(r *languageRules, norm string, now time.Time) (*Date, error) {
	for _, idx := range r.monthDate.FindAllStringSubmatchIndex(norm, -1) {
		// the month alias must end at a word boundary
		if end := idx[5]; end < len(norm) {
			if next, _ := utf8.DecodeRuneInString(norm[end:]); unicode.IsLetter(next) {
				continue
			}
		}

		month, ok := r.months[norm[idx[4]:idx[5]]]
		if !ok {
			continue
		}

		day := 0
		if idx[2] >= 0 {
			day = atoi(norm[idx[2]:idx[3]])
		} else if idx[6] >= 0 {
			day = atoi(norm[idx[6]:idx[7]])
		}
		if day == 0 {
			// a month mention with no day is not a date
			continue
		}

		year := now.Year()
		explicitYear := idx[8] >= 0
		if explicitYear {
			year = atoi(norm[idx[8]:idx[9]])
		}

		d, err := NewDate(year, month, day)
		if err != nil {
			return nil, err
		}

		// without an explicit year, a date already behind us means the
		// next occurrence
		if !explicitYear && beforeToday(d, now) {
			d, err = NewDate(year+1, month, day)
			if err != nil {
				return nil, err
			}
		}
		return &d, nil
	}

	return nil, nil
}

func beforeToday(d Date, now time.Time) bool {
	moment := time.Date(d.Year, d.Month, d.Day, 23, 59, 59, 0, now.Location())
	return moment.Before(now)
}

func dateFrom(t time.Time) *Date {
	return &Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// Extract combines the time and date cascades into one intermediate result.
func (e *Extractor) Extract(text, lang string, now time.Time) (Expression, error) {
	date, err := e.ExtractDate(text, lang, now)
	if err != nil {
		return Expression{}, err
	}
	return Expression{
		Text:     text,
		Language: lang,
		Time:     e.ExtractTime(text, lang, now),
		Date:     date,
	}, nil
}

// Resolve turns the fragment into a single absolute moment. Relative
// expressions win outright. Otherwise the partial extraction is completed
// with the documented defaults: a missing date becomes the next calendar
// day, a missing time becomes DefaultHour. When neither component matched,
// ErrNoExpression is returned so the caller can ask the user instead of
// guessing.
func (e *Extractor) Resolve(text, lang string, now time.Time) (time.Time, error) {
	if d, ok := e.ExtractRelative(text, lang); ok {
		return now.Add(d).Truncate(time.Second), nil
	}

	expr, err := e.Extract(text, lang, now)
	if err != nil {
		return time.Time{}, err
	}
	if expr.Time == nil && expr.Date == nil {
		return time.Time{}, ErrNoExpression
	}

	date := expr.Date
	if date == nil {
		date = dateFrom(now.AddDate(0, 0, 1))
	}

	ct := expr.Time
	if ct == nil {
		ct = &ClockTime{Hour: DefaultHour}
	}

	return time.Date(date.Year, date.Month, date.Day, ct.Hour, ct.Minute, 0, 0, now.Location()), nil
}

// containsPhrase reports whether phrase occurs in text delimited by
// non-alphanumeric runes. It works uniformly across scripts, which \b in
// RE2 does not.
func containsPhrase(text, phrase string) bool {
	for start := 0; start <= len(text)-len(phrase); {
		i := strings.Index(text[start:], phrase)
		if i < 0 {
			return false
		}
		i += start
		if boundaryAt(text, i, false) && boundaryAt(text, i+len(phrase), true) {
			return true
		}
		start = i + len(phrase)
	}
	return false
}

func boundaryAt(text string, pos int, after bool) bool {
	if pos == 0 || pos >= len(text) {
		return true
	}
	var r rune
	if after {
		r, _ = utf8.DecodeRuneInString(text[pos:])
	} else {
		r, _ = utf8.DecodeLastRuneInString(text[:pos])
	}
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
