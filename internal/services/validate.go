package services

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("form"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// messages maps "field" or "field.tag" to the text shown for a failed rule.
type messages map[string]string

func (m messages) lookup(fe validator.FieldError) string {
	if s, ok := m[fe.Field()+"."+fe.Tag()]; ok {
		return s
	}
	if s, ok := m[fe.Field()]; ok {
		return s
	}
	return "Invalid value"
}

// check validates v and returns one message per failing field.
func check(v any, msgs messages) FieldErrors {
	fe := FieldErrors{}
	err := validate.Struct(v)
	if err == nil {
		return fe
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		fe["_"] = err.Error()
		return fe
	}
	for _, e := range verrs {
		if _, seen := fe[e.Field()]; !seen {
			fe[e.Field()] = msgs.lookup(e)
		}
	}
	return fe
}

func trimAll(ps ...*string) {
	for _, p := range ps {
		*p = strings.TrimSpace(*p)
	}
}
