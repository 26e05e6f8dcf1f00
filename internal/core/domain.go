package core

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

const (
	Revenue EntryType = "revenue"
	Expense EntryType = "expense"

	OneOff Recurrence = "one_off"
	Fixed  Recurrence = "fixed"
)

type (
	// EntryType carries the sign of a financial entry; amounts stay positive.
	EntryType string

	// Recurrence distinguishes one-off entries from fixed (repeating) ones.
	Recurrence string

	// Date is a calendar date with no meaningful time component,
	// normalized to midnight UTC.
	Date struct {
		time.Time
	}

	Client struct {
		ID      int64
		OwnerID string
		Name    string
		Phone   string
		Email   string
		Notes   string
	}

	Product struct {
		ID          int64
		OwnerID     string
		Name        string
		Description string
		Price       Money
		Quantity    int
		ImageURL    string
	}

	Professional struct {
		ID      int64
		OwnerID string
		Name    string
	}

	// Appointment references its client and professional by stable
	// identifier, so renames never orphan the reference. Duration is not
	// stored; the calendar assumes one hour.
	Appointment struct {
		ID             int64
		OwnerID        string
		ClientID       int64
		ProfessionalID int64
		Service        string
		Price          Money
		StartsAt       time.Time
		Confirmed      bool
	}

	FinancialEntry struct {
		ID          int64
		OwnerID     string
		Description string
		Amount      Money
		Type        EntryType
		Recurrence  Recurrence
		Date        Date
	}

	// BusinessHours is one weekday row of the opening schedule. Both times
	// empty means closed that day.
	BusinessHours struct {
		OwnerID string
		Weekday int // 0 (Sunday) .. 6 (Saturday)
		Opens   string
		Closes  string
	}

	// BusinessException overrides the schedule for a single calendar date.
	BusinessException struct {
		ID          int64
		OwnerID     string
		Date        Date
		Opens       string
		Closes      string
		Description string
	}
)

var (
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrEmptyName           = errors.New("empty name")
	ErrInvalidEmail        = errors.New("invalid email")
	ErrNegativeQuantity    = errors.New("negative quantity")
	ErrEmptyService        = errors.New("empty service label")
	ErrMissingClient       = errors.New("missing client reference")
	ErrMissingProfessional = errors.New("missing professional reference")
	ErrEmptyDescription    = errors.New("empty description")
	ErrInvalidEntryType    = errors.New("invalid entry type")
	ErrInvalidRecurrence   = errors.New("invalid recurrence")
	ErrInvalidDate         = errors.New("invalid date")
	ErrInvalidWeekday      = errors.New("invalid weekday")
	ErrInvalidTimeRange    = errors.New("invalid time range")
	ErrNoOwner             = errors.New("missing owner id")

	// ErrNotFound marks an update/remove against an identifier absent from
	// the current snapshot; never a silent success.
	ErrNotFound = errors.New("not found")

	// ErrRemote wraps every failure of the sync gateway, whatever the
	// underlying transport cause.
	ErrRemote = errors.New("sync gateway error")
)

// Entity is implemented by every owner-scoped record the entry store and
// the sync gateway move around.
type Entity interface {
	EntityID() int64
	Owner() string
	Validate() error
}

var (
	emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	clockRe = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)
)

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// Key returns the YYYY-MM-DD form, used for grouping and persistence.
func (d Date) Key() string {
	return d.Format("2006-01-02")
}

func (c Client) EntityID() int64 { return c.ID }
func (c Client) Owner() string   { return c.OwnerID }

func (c Client) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if c.Email != "" && !emailRe.MatchString(c.Email) {
		return ErrInvalidEmail
	}
	return nil
}

func (p Product) EntityID() int64 { return p.ID }
func (p Product) Owner() string   { return p.OwnerID }

func (p Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyName
	}
	if err := p.Price.Validate(); err != nil {
		return err
	}
	if p.Quantity < 0 {
		return ErrNegativeQuantity
	}
	return nil
}

// LowStock reports whether the quantity is at or below the threshold.
func (p Product) LowStock(threshold int) bool {
	return p.Quantity <= threshold
}

func (p Professional) EntityID() int64 { return p.ID }
func (p Professional) Owner() string   { return p.OwnerID }

func (p Professional) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

func (a Appointment) EntityID() int64 { return a.ID }
func (a Appointment) Owner() string   { return a.OwnerID }

func (a Appointment) Validate() error {
	if a.ClientID <= 0 {
		return ErrMissingClient
	}
	if a.ProfessionalID <= 0 {
		return ErrMissingProfessional
	}
	if strings.TrimSpace(a.Service) == "" {
		return ErrEmptyService
	}
	if err := a.Price.Validate(); err != nil {
		return err
	}
	if a.StartsAt.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (e FinancialEntry) EntityID() int64 { return e.ID }
func (e FinancialEntry) Owner() string   { return e.OwnerID }

func (e FinancialEntry) Validate() error {
	if strings.TrimSpace(e.Description) == "" {
		return ErrEmptyDescription
	}
	if len(e.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	switch e.Type {
	case Revenue, Expense:
	default:
		return ErrInvalidEntryType
	}
	switch e.Recurrence {
	case OneOff, Fixed:
	default:
		return ErrInvalidRecurrence
	}
	return e.Date.Validate()
}

// Closed reports whether the weekday has no opening interval.
func (h BusinessHours) Closed() bool {
	return h.Opens == "" && h.Closes == ""
}

func (h BusinessHours) Validate() error {
	if h.Weekday < 0 || h.Weekday > 6 {
		return ErrInvalidWeekday
	}
	if h.Closed() {
		return nil
	}
	if !clockRe.MatchString(h.Opens) || !clockRe.MatchString(h.Closes) {
		return ErrInvalidTimeRange
	}
	if h.Opens >= h.Closes {
		return ErrInvalidTimeRange
	}
	return nil
}

func (e BusinessException) EntityID() int64 { return e.ID }
func (e BusinessException) Owner() string   { return e.OwnerID }

// ClosedAllDay reports whether the exception closes the whole date.
func (e BusinessException) ClosedAllDay() bool {
	return e.Opens == "" && e.Closes == ""
}

func (e BusinessException) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if !e.ClosedAllDay() {
		if !clockRe.MatchString(e.Opens) || !clockRe.MatchString(e.Closes) {
			return ErrInvalidTimeRange
		}
		if e.Opens >= e.Closes {
			return ErrInvalidTimeRange
		}
	}
	return nil
}
