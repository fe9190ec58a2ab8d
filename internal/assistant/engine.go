package assistant

import (
	"regexp"
	"strconv"
)

// Counts stop at three digits so a year ("2025 expenses") is never read
// as a limit; the date parser owns 4-digit numbers.
var (
	lastNRe  = regexp.MustCompile(`\blast (\d{1,3})\b`)
	nItemsRe = regexp.MustCompile(`\b(\d{1,3}) (?:expenses|entries|items)\b`)
)

// Interpret runs the whole pipeline on one message: normalize, resolve the
// date expression, classify the intent and build the command. The message's
// arrival timestamp is the reference date for relative and year-less
// expressions; nothing reads a global clock.
//
// The only possible error is a *ParseError with KindValidation. A message
// matching no rule still yields a Command with IntentUnknown.
func Interpret(msg Message) (Command, error) {
	text := Normalize(msg.Text)

	var rng *DateRange
	if r, ok := ParseDateExpression(text, msg.ReceivedAt); ok {
		rng = &r
	}

	intent, kind := Classify(text)
	limit, hasLimit := extractLimit(text)

	return Build(intent, kind, rng, limit, hasLimit, msg.UserID, msg.ReceivedAt)
}

// extractLimit picks an explicit result count out of phrases like
// "last 5" or "20 expenses".
func extractLimit(text string) (int, bool) {
	for _, re := range []*regexp.Regexp{lastNRe, nItemsRe} {
		if m := re.FindStringSubmatch(text); m != nil {
			n, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			return n, true
		}
	}
	return 0, false
}
