package core

import (
	"errors"
	"strings"
	"time"
)

type (
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// User carries the per-account settings the assistant needs when
	// formatting replies and computing budget status.
	User struct {
		ID            int64
		Username      string
		Currency      string
		MonthlyBudget Money
	}

	Expense struct {
		ID            int64
		UserID        int64
		Title         string
		Description   string
		Amount        Money
		Date          Date
		Category      string
		PaymentMethod string
	}

	Category struct {
		ID          int64
		UserID      int64
		Name        string
		Description string
	}

	Investment struct {
		ID           int64
		UserID       int64
		Name         string
		Type         string
		Amount       Money // amount originally invested
		CurrentValue Money
		CreatedAt    time.Time
	}

	// ChatMessage is one stored exchange: the user's text and the reply
	// produced for it. ImagePNG is set only for chart replies.
	ChatMessage struct {
		ID        int64
		UserID    int64
		Message   string
		Response  string
		ImagePNG  []byte
		CreatedAt time.Time
	}
)

var (
	ErrInvalidDay     = errors.New("invalid day")
	ErrInvalidMonth   = errors.New("invalid month")
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrEmptyTitle     = errors.New("empty title")
	ErrEmptyName      = errors.New("empty name")
	ErrEmptyCategory  = errors.New("empty category")
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEntry = errors.New("duplicate entry")
)

// NewDate creates a new Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates a time.Time to its calendar date in UTC.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	_, month, day := d.Date()
	if day < 1 || day > 31 {
		return ErrInvalidDay
	}
	if month < 1 || month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

// Before reports whether d is strictly before other.
func (d Date) Before(other Date) bool {
	return d.Time.Before(other.Time)
}

// After reports whether d is strictly after other.
func (d Date) After(other Date) bool {
	return d.Time.After(other.Time)
}

// IsEmpty returns true if the date is zero (optional dates).
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (e Expense) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(e.Title)) == 0 {
		return ErrEmptyTitle
	}
	if len(e.Title) > 200 {
		return errors.New("title too long (max 200 characters)")
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(e.Category) == "" {
		return ErrEmptyCategory
	}
	return nil
}

func (c Category) Validate() error {
	if len(strings.TrimSpace(c.Name)) == 0 {
		return ErrEmptyName
	}
	if len(c.Name) > 100 {
		return errors.New("name too long (max 100 characters)")
	}
	return nil
}

func (i Investment) Validate() error {
	if len(strings.TrimSpace(i.Name)) == 0 {
		return ErrEmptyName
	}
	if strings.TrimSpace(i.Type) == "" {
		return errors.New("empty investment type")
	}
	if err := i.Amount.Validate(); err != nil {
		return err
	}
	if i.CurrentValue.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Current returns the present valuation, falling back to the invested
// amount when no valuation has been recorded yet.
func (i Investment) Current() Money {
	if i.CurrentValue.Cents == 0 {
		return i.Amount
	}
	return i.CurrentValue
}

// Returns reports the absolute gain (or loss) in cents.
func (i Investment) Returns() Money {
	return Money{Cents: i.Current().Cents - i.Amount.Cents}
}

// ReturnsPercent reports the gain as a percentage of the invested amount.
func (i Investment) ReturnsPercent() float64 {
	if i.Amount.Cents <= 0 {
		return 0
	}
	return float64(i.Returns().Cents) / float64(i.Amount.Cents) * 100
}
