package schedule

import (
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/ratiba/core"
)

func newTestValidate(t *testing.T) *validator.Validate {
	t.Helper()
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")

	validate := validator.New()
	core.InitValidators(validate, translator)
	return validate
}

func validNewRule() NewRule {
	return NewRule{
		SubjectID:   "math",
		SubjectName: "Mathematics",
		DayOfWeek:   1,
		StartTime:   "08:00",
		EndTime:     "08:45",
	}
}

func TestNewRule_Validate(t *testing.T) {
	validate := newTestValidate(t)

	tests := []struct {
		name    string
		mutate  func(*NewRule)
		wantErr bool
	}{
		{name: "valid", mutate: func(nr *NewRule) {}},
		{name: "valid with parity", mutate: func(nr *NewRule) { nr.WeekParity = "odd" }},
		{name: "valid one-off", mutate: func(nr *NewRule) { nr.SpecificDate = "5.1.2026" }},
		{name: "valid date list", mutate: func(nr *NewRule) { nr.SpecificDates = "5.1.2026, 12.1.2026" }},
		{name: "missing subject", mutate: func(nr *NewRule) { nr.SubjectID = "" }, wantErr: true},
		{name: "unsafe subject", mutate: func(nr *NewRule) { nr.SubjectID = "ma|th" }, wantErr: true},
		{name: "bad weekday", mutate: func(nr *NewRule) { nr.DayOfWeek = 7 }, wantErr: true},
		{name: "bad start time", mutate: func(nr *NewRule) { nr.StartTime = "8h00" }, wantErr: true},
		{name: "bad parity", mutate: func(nr *NewRule) { nr.WeekParity = "lol" }, wantErr: true},
		{name: "start after end", mutate: func(nr *NewRule) { nr.StartTime = "09:00" }, wantErr: true},
		{name: "zero length", mutate: func(nr *NewRule) { nr.EndTime = "08:00" }, wantErr: true},
		{name: "both date modes", mutate: func(nr *NewRule) {
			nr.SpecificDate = "5.1.2026"
			nr.SpecificDates = "12.1.2026"
		}, wantErr: true},
		{name: "bad date in list", mutate: func(nr *NewRule) { nr.SpecificDates = "5.1.2026, lol" }, wantErr: true},
		{name: "bad specific date", mutate: func(nr *NewRule) { nr.SpecificDate = "2026/01/05" }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nr := validNewRule()
			tt.mutate(&nr)
			if err := nr.Validate(validate); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewCancellation_Validate(t *testing.T) {
	validate := newTestValidate(t)

	tests := []struct {
		name    string
		nc      NewCancellation
		wantErr bool
	}{
		{name: "whole day", nc: NewCancellation{DateFrom: "5.1.2026"}},
		{name: "range with times", nc: NewCancellation{DateFrom: "5.1.2026", DateTo: "7.1.2026", TimeFrom: "12:00", TimeTo: "10:00"}},
		{name: "missing date_from", nc: NewCancellation{}, wantErr: true},
		{name: "bad date_from", nc: NewCancellation{DateFrom: "lol"}, wantErr: true},
		{name: "date_to before date_from", nc: NewCancellation{DateFrom: "7.1.2026", DateTo: "5.1.2026"}, wantErr: true},
		{name: "bad time", nc: NewCancellation{DateFrom: "5.1.2026", TimeFrom: "8:5"}, wantErr: true},
		{name: "same-day inverted times", nc: NewCancellation{DateFrom: "5.1.2026", TimeFrom: "12:00", TimeTo: "10:00"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nc := tt.nc
			if err := nc.Validate(validate); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
