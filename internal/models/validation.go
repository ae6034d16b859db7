package models

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Field names as they appear in forms and tool arguments
const (
	FieldName        = "name"
	FieldEmail       = "email"
	FieldPhoneNumber = "phoneNumber"
)

var mobilePattern = regexp.MustCompile(`^04\d{8}$`)

type fieldRule struct {
	tag     string
	message string
}

var fieldRules = map[string]fieldRule{
	FieldName:        {tag: "min=2", message: "Name must be at least 2 characters"},
	FieldEmail:       {tag: "required,email", message: "Invalid email format"},
	FieldPhoneNumber: {tag: "aumobile", message: "Phone number must be in format 04XXXXXXXX"},
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Registration only fails for empty tags or nil funcs
	_ = v.RegisterValidation("aumobile", func(fl validator.FieldLevel) bool {
		return mobilePattern.MatchString(fl.Field().String())
	})
	return v
}

type fieldCheck struct {
	field string
	value string
}

func check(checks ...fieldCheck) error {
	var fields []FieldError
	for _, c := range checks {
		rule := fieldRules[c.field]
		if err := validate.Var(c.value, rule.tag); err != nil {
			fields = append(fields, FieldError{Field: c.field, Message: rule.message})
		}
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// Normalize trims surrounding whitespace from every field
func (in PersonInput) Normalize() PersonInput {
	return PersonInput{
		Name:        strings.TrimSpace(in.Name),
		Email:       strings.TrimSpace(in.Email),
		PhoneNumber: strings.TrimSpace(in.PhoneNumber),
	}
}

// Validate checks all three fields and reports every failure at once
func (in PersonInput) Validate() error {
	return check(
		fieldCheck{FieldName, in.Name},
		fieldCheck{FieldEmail, in.Email},
		fieldCheck{FieldPhoneNumber, in.PhoneNumber},
	)
}

// Normalize trims surrounding whitespace from every supplied field
func (p PersonPatch) Normalize() PersonPatch {
	trim := func(s *string) *string {
		if s == nil {
			return nil
		}
		v := strings.TrimSpace(*s)
		return &v
	}
	return PersonPatch{
		Name:        trim(p.Name),
		Email:       trim(p.Email),
		PhoneNumber: trim(p.PhoneNumber),
	}
}

// Validate checks only the fields the patch supplies
func (p PersonPatch) Validate() error {
	var checks []fieldCheck
	if p.Name != nil {
		checks = append(checks, fieldCheck{FieldName, *p.Name})
	}
	if p.Email != nil {
		checks = append(checks, fieldCheck{FieldEmail, *p.Email})
	}
	if p.PhoneNumber != nil {
		checks = append(checks, fieldCheck{FieldPhoneNumber, *p.PhoneNumber})
	}
	return check(checks...)
}
