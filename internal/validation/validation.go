// Package validation holds the storefront's shared validator and the field
// rules used by the checkout and support forms.
package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// New returns a validator with the storefront tags registered. now is read
// by the mmyy rule; nil means time.Now.
//
//	trimmin=N   at least N characters after trimming
//	storemail   local@domain.tld
//	gsmphone    11 digits starting with 0, ignoring separators
//	carddigits  16 digits, ignoring separators
//	cvcdigits   3 or 4 digits
//	mmyy        MM/YY that has not expired yet
func New(now func() time.Time) *validator.Validate {
	if now == nil {
		now = time.Now
	}

	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	rules := map[string]validator.Func{
		"trimmin": func(fl validator.FieldLevel) bool {
			n, err := strconv.Atoi(fl.Param())
			if err != nil {
				return false
			}
			return utf8.RuneCountInString(strings.TrimSpace(fl.Field().String())) >= n
		},
		"storemail": func(fl validator.FieldLevel) bool {
			return Email(fl.Field().String())
		},
		"gsmphone": func(fl validator.FieldLevel) bool {
			return Phone(fl.Field().String())
		},
		"carddigits": func(fl validator.FieldLevel) bool {
			return len(Digits(fl.Field().String())) == 16
		},
		"cvcdigits": func(fl validator.FieldLevel) bool {
			n := len(Digits(fl.Field().String()))
			return n == 3 || n == 4
		},
		"mmyy": func(fl validator.FieldLevel) bool {
			return Expiry(fl.Field().String(), now())
		},
	}
	for tag, fn := range rules {
		// registration only fails on an empty tag or nil func
		_ = v.RegisterValidation(tag, fn)
	}
	return v
}

// Digits strips every non-digit character.
func Digits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func Email(s string) bool {
	return emailPattern.MatchString(strings.TrimSpace(s))
}

func Phone(s string) bool {
	d := Digits(s)
	return len(d) == 11 && d[0] == '0'
}

// Expiry accepts MM/YY with month 1-12 that is not before the month of now.
func Expiry(value string, now time.Time) bool {
	if len(value) != 5 || value[2] != '/' {
		return false
	}
	mm, yy := value[:2], value[3:]
	if Digits(mm) != mm || Digits(yy) != yy {
		return false
	}
	month, _ := strconv.Atoi(mm)
	year, _ := strconv.Atoi(yy)
	if month < 1 || month > 12 {
		return false
	}

	curYY := now.Year() % 100
	curMM := int(now.Month())
	if year < curYY {
		return false
	}
	return year > curYY || month >= curMM
}

// FieldErrors turns validator errors into field -> message. messages is
// looked up by "field.tag" first, then "field"; anything else falls back to
// a generic message. A nil map is returned for a nil error.
func FieldErrors(err error, messages map[string]string) map[string]string {
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return map[string]string{"": err.Error()}
	}

	out := make(map[string]string, len(ve))
	for _, fe := range ve {
		field := fe.Field()
		if _, seen := out[field]; seen {
			continue
		}
		if msg, ok := messages[field+"."+fe.Tag()]; ok {
			out[field] = msg
			continue
		}
		if msg, ok := messages[field]; ok {
			out[field] = msg
			continue
		}
		out[field] = "Invalid value."
	}
	return out
}
