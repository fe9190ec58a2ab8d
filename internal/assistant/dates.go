package assistant

import (
	"regexp"
	"strconv"
	"time"

	"wealthpulse/internal/core"
)

// Month vocabulary: full names and the standard abbreviations. Longer
// alternatives come first so the regexp engine picks "september" over "sep".
const monthAlt = `january|february|march|april|may|june|july|august|september|october|november|december|sept|jan|feb|mar|apr|jun|jul|aug|sep|oct|nov|dec`

var months = map[string]int{
	"january": 1, "jan": 1,
	"february": 2, "feb": 2,
	"march": 3, "mar": 3,
	"april": 4, "apr": 4,
	"may": 5,
	"june": 6, "jun": 6,
	"july": 7, "jul": 7,
	"august": 8, "aug": 8,
	"september": 9, "sept": 9, "sep": 9,
	"october": 10, "oct": 10,
	"november": 11, "nov": 11,
	"december": 12, "dec": 12,
}

var (
	// "from X to Y" / "between X and Y"; each side is parsed as a
	// single-date expression of its own.
	connectorRe = regexp.MustCompile(`\b(?:from|between)\s+(.+?)\s+(?:to|and)\s+(.+)$`)

	// "dec 1-15": hyphenated shorthand within one stated month.
	hyphenRe = regexp.MustCompile(`\b(` + monthAlt + `)\s+(\d{1,2})\s*-\s*(\d{1,2})\b`)

	// "dec 28 - jan 3": a hyphen range naming two months. When the months
	// differ the expression is deliberately unsupported.
	twoMonthHyphenRe = regexp.MustCompile(`\b(` + monthAlt + `)\s+(\d{1,2})\s*-\s*(` + monthAlt + `)\s+(\d{1,2})\b`)

	// Month name, optional day, optional 4-digit year.
	singleRe = regexp.MustCompile(`\b(` + monthAlt + `)\b(?:\s+(\d{1,2})\b)?(?:(?:\s*,\s*|\s+)(\d{4})\b)?`)

	yearRe = regexp.MustCompile(`\b(20\d{2})\b`)
)

// monthExpr is the lexical shape of a single-date expression: a month,
// optionally qualified by a day and/or a year.
type monthExpr struct {
	month   int
	day     int
	year    int
	hasDay  bool
	hasYear bool
}

// ParseDateExpression scans normalized text for a date expression and
// resolves it against ref, the injected "now". Absence of any expression is
// not an error: the second return is false and the caller applies
// intent-specific defaults. A date-like fragment that is present but
// inconsistent (inverted endpoints, a cross-month hyphen shorthand, an
// invalid day) is recovered the same way, by dropping the range rather
// than guessing.
//
// Forms are tried in descending priority; the first match wins:
// explicit connector ranges, hyphenated same-month shorthand, relative
// period keywords, a single month/day/year mention, and finally a bare
// 4-digit year covering that whole year.
func ParseDateExpression(text string, ref time.Time) (DateRange, bool) {
	if m := connectorRe.FindStringSubmatch(text); m != nil {
		r, status := resolveEndpoints(m[1], m[2], ref)
		switch status {
		case endpointsOK:
			return r, true
		case endpointsInverted:
			// A date-like fragment was present but inconsistent: recover
			// to "no date range" rather than guessing.
			return DateRange{}, false
		}
		// Connector words without date endpoints: not this form at all.
	}

	// An invalid hyphen shorthand still claims the expression: only the
	// relative-period keywords below are tried after it.
	hyphenClaimed := false
	if m := twoMonthHyphenRe.FindStringSubmatch(text); m != nil {
		if months[m[1]] != months[m[3]] {
			// Cross-month hyphen ranges have no defined meaning here.
			return DateRange{}, false
		}
		if r, ok := hyphenRange(months[m[1]], m[2], m[4], text, ref); ok {
			return r, true
		}
		hyphenClaimed = true
	} else if m := hyphenRe.FindStringSubmatch(text); m != nil {
		if r, ok := hyphenRange(months[m[1]], m[2], m[3], text, ref); ok {
			return r, true
		}
		hyphenClaimed = true
	}

	if containsWord(text, "this month") {
		return MonthRange(ref), true
	}
	if containsWord(text, "this year") {
		return YearRange(ref), true
	}
	if containsWord(text, "all time") {
		return AllTime(), true
	}

	if hyphenClaimed {
		return DateRange{}, false
	}

	if expr, ok := parseMonthExpr(text); ok {
		year := expr.year
		if !expr.hasYear {
			year = findYear(text, ref)
		}
		if expr.hasDay {
			d := core.NewDate(year, expr.month, expr.day)
			return NewRange(d, d), true
		}
		return NewRange(
			core.NewDate(year, expr.month, 1),
			core.NewDate(year, expr.month, daysInMonth(year, expr.month)),
		), true
	}

	// A bare year ("expenses for 2025") selects that whole year. Plain
	// day numbers without a month are never dates.
	if m := yearRe.FindStringSubmatch(text); m != nil {
		year, _ := strconv.Atoi(m[1])
		return NewRange(core.NewDate(year, 1, 1), core.NewDate(year, 12, 31)), true
	}

	return DateRange{}, false
}

// parseMonthExpr extracts the first single-date expression from text.
func parseMonthExpr(text string) (monthExpr, bool) {
	m := singleRe.FindStringSubmatch(text)
	if m == nil {
		return monthExpr{}, false
	}
	expr := monthExpr{month: months[m[1]]}
	if m[2] != "" {
		day, _ := strconv.Atoi(m[2])
		if day < 1 || day > 31 {
			return monthExpr{}, false
		}
		expr.day = day
		expr.hasDay = true
	}
	if m[3] != "" {
		year, _ := strconv.Atoi(m[3])
		expr.year = year
		expr.hasYear = true
	}
	return expr, true
}

type endpointStatus int

const (
	endpointsOK endpointStatus = iota
	endpointsInverted
	endpointsNotDates
)

// resolveEndpoints parses both sides of a connector range. When only one
// side states a year the other inherits it; when neither does, both take
// the reference year.
func resolveEndpoints(startText, endText string, ref time.Time) (DateRange, endpointStatus) {
	x, okX := parseMonthExpr(startText)
	y, okY := parseMonthExpr(endText)
	if !okX || !okY {
		return DateRange{}, endpointsNotDates
	}
	switch {
	case x.hasYear && !y.hasYear:
		y.year = x.year
	case y.hasYear && !x.hasYear:
		x.year = y.year
	case !x.hasYear && !y.hasYear:
		x.year = ref.Year()
		y.year = ref.Year()
	}

	start := core.NewDate(x.year, x.month, 1)
	if x.hasDay {
		start = core.NewDate(x.year, x.month, x.day)
	}
	end := core.NewDate(y.year, y.month, daysInMonth(y.year, y.month))
	if y.hasDay {
		end = core.NewDate(y.year, y.month, y.day)
	}
	if start.After(end) {
		return DateRange{}, endpointsInverted
	}
	return NewRange(start, end), endpointsOK
}

// hyphenRange resolves "month d1-d2". Both endpoints share the stated
// month; the end day must not precede the start day.
func hyphenRange(month int, startDay, endDay, text string, ref time.Time) (DateRange, bool) {
	d1, _ := strconv.Atoi(startDay)
	d2, _ := strconv.Atoi(endDay)
	if d1 < 1 || d1 > 31 || d2 < 1 || d2 > 31 || d2 < d1 {
		return DateRange{}, false
	}
	year := findYear(text, ref)
	return NewRange(core.NewDate(year, month, d1), core.NewDate(year, month, d2)), true
}

// findYear picks an explicit 4-digit year anywhere in the text, falling
// back to the reference year.
func findYear(text string, ref time.Time) int {
	if m := yearRe.FindStringSubmatch(text); m != nil {
		year, _ := strconv.Atoi(m[1])
		return year
	}
	return ref.Year()
}

var wordRe = map[string]*regexp.Regexp{}

func init() {
	for _, phrase := range []string{"this month", "this year", "all time"} {
		wordRe[phrase] = regexp.MustCompile(`\b` + phrase + `\b`)
	}
}

func containsWord(text, phrase string) bool {
	return wordRe[phrase].MatchString(text)
}
