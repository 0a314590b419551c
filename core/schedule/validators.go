package schedule

import (
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/ratiba/core"
)

var (
	errStartAfterEnd   = "must be before end_time"
	errDateRangeOrder  = "must not be before date_from"
	errBadDateInList   = "contains an unparsable date"
	errBothDateModes   = "cannot be combined with specific_dates"
	errTimeRangeOrder  = "must be before time_to"
)

type (
	// NewRule is the payload to create a timetable rule.
	NewRule struct {
		SubjectID     string `json:"subject_id" validate:"required,keysegment"`
		SubjectName   string `json:"subject_name" validate:"required,max=120"`
		DayOfWeek     int    `json:"day_of_week" validate:"min=0,max=6"`
		StartTime     string `json:"start_time" validate:"required,timehhmm"`
		EndTime       string `json:"end_time" validate:"required,timehhmm"`
		WeekParity    string `json:"week_parity" validate:"omitempty,oneof=every odd even"`
		Room          string `json:"room" validate:"max=60"`
		Note          string `json:"note" validate:"max=250"`
		SpecificDate  string `json:"specific_date" validate:"omitempty,dispdate"`
		SpecificDates string `json:"specific_dates" validate:"max=500"`
		Special       bool   `json:"special"`
	}

	// UpdateRule is the payload to edit a timetable rule. Same shape as
	// NewRule; a full replacement of the editable fields.
	UpdateRule = NewRule

	// NewCancellation is the payload to create or edit a day off.
	NewCancellation struct {
		DateFrom string `json:"date_from" validate:"required,dispdate"`
		DateTo   string `json:"date_to" validate:"omitempty,dispdate"`
		TimeFrom string `json:"time_from" validate:"omitempty,timehhmm"`
		TimeTo   string `json:"time_to" validate:"omitempty,timehhmm"`
		Note     string `json:"note" validate:"max=250"`
	}
)

func (nr NewRule) parity() Parity {
	if nr.WeekParity == "" {
		return ParityEvery
	}
	return Parity(nr.WeekParity)
}

func (nr *NewRule) Validate(validate *validator.Validate) error {
	nr.SubjectID = core.CleanString(nr.SubjectID)
	nr.SubjectName = core.CleanString(nr.SubjectName)
	nr.StartTime = core.CleanString(nr.StartTime)
	nr.EndTime = core.CleanString(nr.EndTime)
	nr.SpecificDate = core.CleanString(nr.SpecificDate)
	nr.SpecificDates = core.CleanString(nr.SpecificDates)
	if err := validate.Struct(nr); err != nil {
		return err
	}

	start, err1 := ParseTimeOfDay(nr.StartTime)
	end, err2 := ParseTimeOfDay(nr.EndTime)
	if err1 == nil && err2 == nil && start >= end {
		return core.NewValidationError(nil, core.FieldError{Field: "start_time", Error: errStartAfterEnd})
	}

	if nr.SpecificDate != "" && nr.SpecificDates != "" {
		return core.NewValidationError(nil, core.FieldError{Field: "specific_date", Error: errBothDateModes})
	}
	if nr.SpecificDates != "" {
		for _, s := range (Rule{SpecificDates: nr.SpecificDates}).specificDateList() {
			if _, err := ParseDate(s); err != nil {
				return core.NewValidationError(
					errors.Wrap(err, "specific_dates"),
					core.FieldError{Field: "specific_dates", Error: errBadDateInList},
				)
			}
		}
	}
	return nil
}

func (nc *NewCancellation) Validate(validate *validator.Validate) error {
	nc.DateFrom = core.CleanString(nc.DateFrom)
	nc.DateTo = core.CleanString(nc.DateTo)
	nc.TimeFrom = core.CleanString(nc.TimeFrom)
	nc.TimeTo = core.CleanString(nc.TimeTo)
	if err := validate.Struct(nc); err != nil {
		return err
	}

	from, _ := ParseDate(nc.DateFrom)
	singleDay := true
	if nc.DateTo != "" {
		if to, err := ParseDate(nc.DateTo); err == nil {
			if to.Before(from) {
				return core.NewValidationError(nil, core.FieldError{Field: "date_to", Error: errDateRangeOrder})
			}
			singleDay = SameDate(from, to)
		}
	}
	// over a multi-day range time_from clips the first day and time_to the
	// last, so an inverted pair is legitimate there
	if singleDay && nc.TimeFrom != "" && nc.TimeTo != "" {
		tf, err1 := ParseTimeOfDay(nc.TimeFrom)
		tt, err2 := ParseTimeOfDay(nc.TimeTo)
		if err1 == nil && err2 == nil && tf >= tt {
			return core.NewValidationError(nil, core.FieldError{Field: "time_from", Error: errTimeRangeOrder})
		}
	}
	return nil
}
