package models

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/desertthunder/midias/internal/shared"
	"github.com/go-playground/validator/v10"
)

// DateLayout is the layout of every calendar date the API accepts and stores.
const DateLayout = "2006-01-02"

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// FieldError describes one invalid member of a request payload.
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			switch name {
			case "-":
				return ""
			case "":
				return f.Name
			}
			return name
		})
	})
	return validate
}

// fieldErrors accumulates failures so a payload reports every bad member at once.
type fieldErrors []FieldError

func (fe *fieldErrors) add(field, rule, message string) {
	*fe = append(*fe, FieldError{Field: field, Rule: rule, Message: message})
}

// check validates a single value against a validator tag under the given field name.
func (fe *fieldErrors) check(field string, value any, tag string) {
	err := validatorInstance().Var(value, tag)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, v := range verrs {
			fe.add(field, v.Tag(), describe(field, v))
		}
	}
}

// checkStruct validates a struct and prefixes reported field paths.
func (fe *fieldErrors) checkStruct(prefix string, v any) {
	err := validatorInstance().Struct(v)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return
	}
	for _, e := range verrs {
		field := fieldPath(e.Namespace())
		if prefix != "" {
			field = prefix + "." + field
		}
		fe.add(field, e.Tag(), describe(field, e))
	}
}

func (fe fieldErrors) err() error {
	if len(fe) == 0 {
		return nil
	}
	return shared.Invalid("request validation failed", []FieldError(fe))
}

// ValidateStruct checks v against its validate tags.
func ValidateStruct(v any) error {
	var fe fieldErrors
	fe.checkStruct("", v)
	return fe.err()
}

// fieldPath drops the root struct name from a validator namespace ("MediaInput.people[0].role").
func fieldPath(namespace string) string {
	if _, rest, ok := strings.Cut(namespace, "."); ok {
		return rest
	}
	return namespace
}

func describe(field string, e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", field, e.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "max":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", field, e.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, e.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, e.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "http_url":
		return fmt.Sprintf("%s must be an http or https URL", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(e.Param(), " ", ", "))
	case "datetime":
		return fmt.Sprintf("%s must be a date in YYYY-MM-DD format", field)
	}
	return fmt.Sprintf("%s failed the %s rule", field, e.Tag())
}

// trimmedOrNil trims s and maps blank strings to nil.
func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
