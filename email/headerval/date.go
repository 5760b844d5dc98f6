package headerval

import (
	"strconv"
	"time"

	"mimekiln/email/token"
)

// dateDelims is the delimiter set §4.5 specifies for the date tokenizer.
const dateDelims = ",:"

// monthAbbrs maps the first three characters of an English month
// abbreviation (case sensitive, per §4.5) to its 1-based number.
var monthAbbrs = map[string]int{
	"Jan": 1, "Feb": 2, "Mar": 3, "Apr": 4, "May": 5, "Jun": 6,
	"Jul": 7, "Aug": 8, "Sep": 9, "Oct": 10, "Nov": 11, "Dec": 12,
}

// fixedZones is the table of named timezones §4.5 requires, in minutes
// east of UTC.
var fixedZones = map[string]int{
	"UT": 0, "GMT": 0,
	"EST": -5 * 60, "EDT": -4 * 60,
	"CST": -6 * 60, "CDT": -5 * 60,
	"MST": -7 * 60, "MDT": -6 * 60,
	"PST": -8 * 60, "PDT": -7 * 60,
	"AST": -4 * 60, "NST": -3*60 - 30,
	"BST": 1 * 60, "MET": 1 * 60, "EET": 2 * 60,
	"JST": 9 * 60,
}

// DecodeDate implements §4.5: parse an RFC 5322 date header into the instant
// it denotes. The boolean result is false for an irrecoverably malformed
// date (the spec's "invalid date sentinel"); callers should treat that the
// way the spec treats a NaN timestamp.
func DecodeDate(value string) (time.Time, bool) {
	toks := token.Tokenize(value, dateDelims, token.Options{})

	var fields []string
	for _, t := range toks {
		if t.Kind == token.Delimiter {
			continue
		}
		fields = append(fields, t.String())
	}

	// Tolerate an optional leading day-of-week name; it carries no
	// information we use, so just drop it if the token count says it's
	// present (7 fields without it, 8 with it, loosely: a leading
	// alphabetic field that isn't the day-of-month).
	if len(fields) > 0 {
		if _, err := strconv.Atoi(fields[0]); err != nil {
			fields = fields[1:]
		}
	}

	if len(fields) < 6 {
		return time.Time{}, false
	}

	day, err := strconv.Atoi(fields[0])
	if err != nil {
		return time.Time{}, false
	}
	month, ok := monthAbbrs[normalizeMonth(fields[1])]
	if !ok {
		return time.Time{}, false
	}
	year, err := strconv.Atoi(fields[2])
	if err != nil {
		return time.Time{}, false
	}
	if year < 100 {
		if year < 50 {
			year += 2000
		} else {
			year += 1900
		}
	}
	hour, err := strconv.Atoi(fields[3])
	if err != nil {
		return time.Time{}, false
	}
	minute, err := strconv.Atoi(fields[4])
	if err != nil {
		return time.Time{}, false
	}
	sec := 0
	tzField := ""
	if len(fields) >= 7 {
		if s, err := strconv.Atoi(fields[5]); err == nil {
			sec = s
			tzField = safeIndex(fields, 6)
		} else {
			tzField = fields[5]
		}
	}

	offsetMinutes := resolveZone(tzField)

	t := time.Date(year, time.Month(month), day, hour, minute, sec, 0, time.UTC)
	return t.Add(-time.Duration(offsetMinutes) * time.Minute), true
}

func safeIndex(fields []string, i int) string {
	if i < len(fields) {
		return fields[i]
	}
	return ""
}

// normalizeMonth takes the first three characters of a month token, per
// §4.5's "matches the first three characters" rule.
func normalizeMonth(s string) string {
	if len(s) < 3 {
		return s
	}
	return s[:3]
}

// resolveZone resolves a timezone token to minutes east of UTC: the fixed
// table, the "+HHMM"/"-HHMM" numeric form, or +0000 for anything else.
func resolveZone(tz string) int {
	if tz == "" {
		return 0
	}
	if z, ok := fixedZones[tz]; ok {
		return z
	}
	if len(tz) == 5 && (tz[0] == '+' || tz[0] == '-') {
		hh, err1 := strconv.Atoi(tz[1:3])
		mm, err2 := strconv.Atoi(tz[3:5])
		if err1 == nil && err2 == nil {
			total := hh*60 + mm
			if tz[0] == '-' {
				total = -total
			}
			return total
		}
	}
	return 0
}
