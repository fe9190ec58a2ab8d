// Package assistant turns a free-text chat message into a structured,
// executable command: an intent, an optional date range and auxiliary
// parameters. Interpretation is purely lexical (ordered keyword rules plus
// date-expression resolution) and fully deterministic: every function is
// referentially transparent given the text and an injected reference date.
package assistant

import (
	"fmt"
	"time"
)

// Message is one incoming chat message. ReceivedAt is injected by the
// caller and serves as the reference date for relative expressions;
// the engine never reads a global clock.
type Message struct {
	Text       string
	UserID     int64
	ReceivedAt time.Time
}

// ErrorKind discriminates the failures the engine can surface.
type ErrorKind int

const (
	// KindValidation marks an out-of-bounds parameter rejected by the
	// command builder, e.g. a non-positive limit or an inverted range.
	KindValidation ErrorKind = iota
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	default:
		return "unknown"
	}
}

// ParseError is the structured failure handed to callers. The response
// layer renders Detail as the user-facing reason.
type ParseError struct {
	Kind   ErrorKind
	Detail string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func validationErr(format string, args ...any) *ParseError {
	return &ParseError{Kind: KindValidation, Detail: fmt.Sprintf(format, args...)}
}
