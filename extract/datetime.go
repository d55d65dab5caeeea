package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// Canonical render layouts for normalized datetimes.
const (
	datetimeLayout   = "2006-01-02T15:04:05"
	datetimeLayoutTZ = "2006-01-02T15:04:05-07:00"
)

// spacedOffsetRe matches the "YYYY-MM-DD HH:MM:SS ±ZZZZ" shape some sites
// emit instead of compact ISO-8601.
var spacedOffsetRe = regexp.MustCompile(`\d{4}-\d{2}-\d{2}\s\d{2}:\d{2}:\d{2}\s[+-]\d{4}`)

// NormalizeDatetime parses a free-form date string into a canonical
// ISO-8601 string, rendered as 2006-01-02T15:04:05 or, when wantTimezone is
// set, with the numeric offset appended.
//
// dateFormat is an optional expected format using YYYY-style tokens
// ("DD/MM/YYYY", "MMMM D, YYYY h:mm A"), or "unix"/"unix_milliseconds" for
// epoch values. Parsing is two-tier: a strict pass on the hint (or ISO-8601
// auto-detection when there is no hint), then a permissive pass that retries
// 2-digit-year hints with their 4-digit variant and, hintless, hands the
// string to a free-form parser.
//
// Both tiers swallow parse failures: total failure returns ("", false),
// never an error — a bad date must not sink article extraction.
func NormalizeDatetime(dateString, dateFormat string, wantTimezone, simplifiedFormats bool) (string, bool) {
	if dateString == "" {
		return "", false
	}

	// Lower-case meridiem markers defeat strict parsing.
	dateString = strings.ReplaceAll(dateString, "am", "AM")
	dateString = strings.ReplaceAll(dateString, "pm", "PM")

	// Rewrite "2019-01-30 09:39:19 -0500" to "2019-01-30T09:39:19-0500".
	if spacedOffsetRe.MatchString(dateString) {
		dateString = strings.ReplaceAll(dateString, " -", "-")
		dateString = strings.ReplaceAll(dateString, " +", "+")
		dateString = strings.ReplaceAll(dateString, " ", "T")
	}

	// "Sept" is not a parseable month abbreviation.
	for _, next := range []string{",", ".", " "} {
		dateString = strings.ReplaceAll(dateString, "Sept"+next, "Sep"+next)
	}

	// Sites with wildly variable separator usage drop separators from both
	// the date string and the format hint before parsing.
	if simplifiedFormats {
		for _, sep := range []string{",", ".", " "} {
			dateString = strings.ReplaceAll(dateString, sep, "")
			dateFormat = strings.ReplaceAll(dateFormat, sep, "")
		}
	}

	t, ok := strictDatetimeParse(dateString, dateFormat)
	if !ok {
		t, ok = permissiveDatetimeParse(dateString, dateFormat)
	}
	if !ok {
		return "", false
	}

	if wantTimezone {
		return t.Format(datetimeLayoutTZ), true
	}
	return t.Format(datetimeLayout), true
}

// isoLayouts are tried in order for ISO-8601 auto-detection.
var isoLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05-0700",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"20060102T150405Z0700",
}

// strictDatetimeParse is the first tier: epoch modes, then an exact match of
// the format hint, then ISO-8601 auto-detection when no hint is configured.
func strictDatetimeParse(dateString, dateFormat string) (time.Time, bool) {
	if dateFormat == "" {
		for _, layout := range isoLayouts {
			if t, err := time.Parse(layout, dateString); err == nil {
				return t, true
			}
		}
		return time.Time{}, false
	}

	if strings.Contains(dateFormat, "unix") {
		s := strings.TrimSpace(dateString)
		if strings.Contains(dateFormat, "milliseconds") {
			if len(s) <= 3 {
				return time.Time{}, false
			}
			s = s[:len(s)-3]
		}
		secs, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return time.Time{}, false
		}
		return time.Unix(secs, 0).UTC(), true
	}

	if t, err := time.Parse(convertLayout(dateFormat), dateString); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// yearSeparators are the separators that sit next to a year token.
const yearSeparators = "-/."

// permissiveDatetimeParse is the second tier. A 2-digit-year hint at the
// start or end of the format, adjacent to a separator, will happily match
// the first or last digits of a 4-digit year — so the 4-digit variant of
// the same format is tried first. Without a hint the string goes to the
// free-form parser, which can dig a date out of surrounding text.
func permissiveDatetimeParse(dateString, dateFormat string) (time.Time, bool) {
	if dateFormat != "" {
		if strings.HasPrefix(dateFormat, "YY") && !strings.HasPrefix(dateFormat, "YYYY") &&
			len(dateFormat) > 2 && strings.ContainsRune(yearSeparators, rune(dateFormat[2])) {
			if t, ok := permissiveDatetimeParse(dateString, "YY"+dateFormat); ok {
				return t, true
			}
		}
		if strings.HasSuffix(dateFormat, "YY") && !strings.HasSuffix(dateFormat, "YYYY") &&
			len(dateFormat) > 2 && strings.ContainsRune(yearSeparators, rune(dateFormat[len(dateFormat)-3])) {
			if t, ok := permissiveDatetimeParse(dateString, dateFormat+"YY"); ok {
				return t, true
			}
		}
		if t, err := time.Parse(convertLayout(dateFormat), dateString); err == nil {
			return t, true
		}
		return time.Time{}, false
	}

	if t, err := dateparse.ParseAny(dateString); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// layoutTokens maps YYYY-style format tokens to Go reference-time layout
// fragments. Ordered longest-first so the scanner never splits a token.
var layoutTokens = []struct{ from, to string }{
	{"YYYY", "2006"},
	{"MMMM", "January"},
	{"dddd", "Monday"},
	{"MMM", "Jan"},
	{"ddd", "Mon"},
	{"YY", "06"},
	{"MM", "01"},
	{"DD", "02"},
	{"Do", "2"},
	{"HH", "15"},
	{"hh", "03"},
	{"mm", "04"},
	{"ss", "05"},
	{"ZZ", "-0700"},
	{"D", "2"},
	{"H", "15"},
	{"h", "3"},
	{"m", "4"},
	{"s", "5"},
	{"A", "PM"},
	{"a", "pm"},
	{"Z", "-07:00"},
	{"M", "1"},
}

// convertLayout translates a YYYY-style format hint into a Go time layout.
// Unrecognized characters pass through as literals.
func convertLayout(format string) string {
	var b strings.Builder
	for i := 0; i < len(format); {
		matched := false
		for _, tok := range layoutTokens {
			if strings.HasPrefix(format[i:], tok.from) {
				b.WriteString(tok.to)
				i += len(tok.from)
				matched = true
				break
			}
		}
		if !matched {
			b.WriteByte(format[i])
			i++
		}
	}
	return b.String()
}
