package core

import (
	"reflect"
	"regexp"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	// custom validation tags & texts
	timeHHMMTag   = "timehhmm"
	timeHHMMText  = "must be a valid time of day (HH:MM)"
	timeHHMMRegex = regexp.MustCompile(`^\d{1,2}:\d{2}$`)

	dispDateTag   = "dispdate"
	dispDateText  = "must be a valid date (day.month.year or YYYY-MM-DD)"
	dispDateRegex = regexp.MustCompile(`^(\d{1,2}\.\d{1,2}\.\d{4}|\d{4}-\d{2}-\d{2})$`)

	keySegmentTag  = "keysegment"
	keySegmentText = "contains forbidden characters"

	requiredTag     = "required"
	requiredWithTag = "required_with"
	requiredText    = "this field is required"
)

// keySegmentSeparators are the structural characters of the shared attendance
// key space; a key segment may contain none of them.
const keySegmentSeparators = "|:/"

// ValidKeySegment reports whether s is safe to embed as one segment of a
// shared-store key: non-blank, bounded length, free of separators and
// control characters.
func ValidKeySegment(s string) bool {
	if s = strings.TrimSpace(s); s == "" || len(s) > 200 {
		return false
	}
	if strings.ContainsAny(s, keySegmentSeparators) {
		return false
	}
	for _, r := range s {
		if r < 0x20 || r == 0x7f {
			return false
		}
	}
	return true
}

// InitValidators instantiates the validator for use.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// register custom validators
	_ = validate.RegisterValidation(timeHHMMTag, timeHHMMValidation)
	RegisterCustomTranslation(validate, translator, timeHHMMTag, timeHHMMText)

	_ = validate.RegisterValidation(dispDateTag, dispDateValidation)
	RegisterCustomTranslation(validate, translator, dispDateTag, dispDateText)

	_ = validate.RegisterValidation(keySegmentTag, keySegmentValidation)
	RegisterCustomTranslation(validate, translator, keySegmentTag, keySegmentText)

	RegisterCustomTranslation(validate, translator, requiredTag, requiredText, true)
	RegisterCustomTranslation(validate, translator, requiredWithTag, requiredText, true)
}

// RegisterCustomTranslation registers a custom translation for the specified validation tag.
func RegisterCustomTranslation(validate *validator.Validate, translator ut.Translator, tag, text string, override ...bool) {
	var ovrd bool
	if len(override) > 0 {
		ovrd = override[0]
	}
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, ovrd) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// Custom Global Validators

func timeHHMMValidation(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return s == "" || timeHHMMRegex.MatchString(s)
}

func dispDateValidation(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return s == "" || dispDateRegex.MatchString(s)
}

func keySegmentValidation(fl validator.FieldLevel) bool {
	return ValidKeySegment(fl.Field().String())
}
