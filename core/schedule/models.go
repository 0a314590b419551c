package schedule

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var (
	// errors
	ErrRuleNotFound         = errors.New("timetable rule not found")
	ErrCancellationNotFound = errors.New("cancellation not found")
	ErrNotOwner             = errors.New("record belongs to another owner")
)

// Parity says on which ISO weeks a recurring rule applies.
type Parity string

const (
	ParityEvery Parity = "every"
	ParityOdd   Parity = "odd"
	ParityEven  Parity = "even"
)

// Rule is one recurring or one-off timetable entry.
//
// Exactly one of {recurring via DayOfWeek+WeekParity, one-off via
// SpecificDate, multi-date via SpecificDates} determines occurrence.
// Time and date fields are kept as entered; records that fail to parse are
// skipped during resolution, never fatal.
type Rule struct {
	ID          uuid.UUID    `json:"id"`
	OwnerID     string       `json:"owner_id"` // staff member teaching the subject
	SubjectID   string       `json:"subject_id"`
	SubjectName string       `json:"subject_name"`
	DayOfWeek   time.Weekday `json:"day_of_week"`
	StartTime   string       `json:"start_time"` // "HH:MM"
	EndTime     string       `json:"end_time"`
	WeekParity  Parity       `json:"week_parity"`
	Room        string       `json:"room,omitempty"`
	Note        string       `json:"note,omitempty"`
	// SpecificDate overrides recurrence with a single calendar date.
	SpecificDate string `json:"specific_date,omitempty"`
	// SpecificDates overrides recurrence with a comma-list of dates.
	SpecificDates string `json:"specific_dates,omitempty"`
	// Special marks drop-in/office-hours entries; they never conflict.
	Special   bool      `json:"special"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

// specificDateList splits the comma-list, dropping blanks.
func (r Rule) specificDateList() []string {
	if r.SpecificDates == "" {
		return nil
	}
	parts := strings.Split(r.SpecificDates, ",")
	dates := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			dates = append(dates, p)
		}
	}
	return dates
}

// Cancellation is an owner-scoped "day off": a date range with an optional
// time window that suppresses overlapping rule occurrences.
type Cancellation struct {
	ID       uuid.UUID `json:"id"`
	OwnerID  string    `json:"owner_id"`
	DateFrom string    `json:"date_from"`
	DateTo   string    `json:"date_to,omitempty"` // defaults to DateFrom
	TimeFrom string    `json:"time_from,omitempty"`
	TimeTo   string    `json:"time_to,omitempty"` // both blank = whole day(s)
	Note     string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

// SlotState classifies one occurrence relative to a reference instant.
type SlotState int

const (
	StatePast SlotState = iota
	StateCurrent
	StateNext
	StateFuture
)

func (s SlotState) String() string {
	switch s {
	case StatePast:
		return "past"
	case StateCurrent:
		return "current"
	case StateNext:
		return "next"
	default:
		return "future"
	}
}

func (s SlotState) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Slot is one occurrence of a rule on one date. Derived, never persisted.
type Slot struct {
	Rule        Rule      `json:"rule"`
	Date        time.Time `json:"date"`
	Start       TimeOfDay `json:"start"`
	End         TimeOfDay `json:"end"`
	State       SlotState `json:"state"`
	Cancelled   bool      `json:"cancelled"`
	WrongParity bool      `json:"wrong_parity"`
}

// Eligible reports whether the occurrence is actually happening:
// not cancelled and not on the wrong-parity week.
func (s Slot) Eligible() bool { return !s.Cancelled && !s.WrongParity }

// Snapshot is a read-only view of all records the resolver needs for one
// invocation. Callers assemble it fresh per call; Resolve never reads
// ambient state.
type Snapshot struct {
	Rules         []Rule
	Cancellations []Cancellation
}

type Repository interface {
	CreateRule(r Rule) (Rule, error)
	GetRuleByID(id uuid.UUID) (Rule, error)
	QueryAllRules() ([]Rule, error)
	QueryRulesByOwner(ownerID string) ([]Rule, error)
	UpdateRule(r Rule) (Rule, error)
	DeleteRulesByID(ids ...uuid.UUID) error

	CreateCancellation(c Cancellation) (Cancellation, error)
	GetCancellationByID(id uuid.UUID) (Cancellation, error)
	QueryAllCancellations() ([]Cancellation, error)
	QueryCancellationsByOwner(ownerID string) ([]Cancellation, error)
	UpdateCancellation(c Cancellation) (Cancellation, error)
	DeleteCancellationsByID(ids ...uuid.UUID) error
}
