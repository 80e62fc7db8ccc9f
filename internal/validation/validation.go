// Package validation wraps go-playground/validator with the field messages
// the hostel forms show to users.
package validation

import (
	"errors"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var personName = regexp.MustCompile(`^[a-zA-Z\s'-]+$`)

// Error carries one message per invalid field, keyed by the JSON field name.
type Error struct {
	Fields map[string]string `json:"fields"`
}

func (e *Error) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return e.Fields[keys[0]]
}

// Field builds a single-field validation error.
func Field(name, msg string) *Error {
	return &Error{Fields: map[string]string{name: msg}}
}

// As reports whether err is a validation error and returns it.
func As(err error) (*Error, bool) {
	var verr *Error
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("personname", func(fl validator.FieldLevel) bool {
		return personName.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("strongpassword", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return hasRune(s, unicode.IsUpper) && hasRune(s, unicode.IsLower) && hasRune(s, unicode.IsDigit)
	})
	_ = v.RegisterValidation("hasupper", func(fl validator.FieldLevel) bool {
		return hasRune(fl.Field().String(), unicode.IsUpper)
	})
	_ = v.RegisterValidation("haslower", func(fl validator.FieldLevel) bool {
		return hasRune(fl.Field().String(), unicode.IsLower)
	})
	_ = v.RegisterValidation("hasdigit", func(fl validator.FieldLevel) bool {
		return hasRune(fl.Field().String(), unicode.IsDigit)
	})
	return v
}

func hasRune(s string, pred func(rune) bool) bool {
	for _, r := range s {
		if pred(r) {
			return true
		}
	}
	return false
}

// messages maps "field.tag" (or just "tag") to the text users see.
var messages = map[string]string{
	"full_name.required":           "Name must be at least 2 characters",
	"full_name.min":                "Name must be at least 2 characters",
	"full_name.max":                "Name must be less than 100 characters",
	"full_name.personname":         "Name can only contain letters, spaces, hyphens, and apostrophes",
	"email.required":               "Invalid email address",
	"email.email":                  "Invalid email address",
	"email.max":                    "Email must be less than 255 characters",
	"password.required":            "Password must be at least 8 characters",
	"password.min":                 "Password must be at least 8 characters",
	"password.strongpassword":      "Password must contain uppercase, lowercase, and a number",
	"role.required":                "Invalid role selected",
	"role.oneof":                   "Invalid role selected",
	"assigned_hostel.max":          "Hostel name must be less than 100 characters",
	"verification_code.required":   "Verification code is required",
	"current_password.required":    "Current password is required",
	"new_password.required":        "Password must be at least 8 characters",
	"new_password.min":             "Password must be at least 8 characters",
	"new_password.hasupper":        "Password must contain at least one uppercase letter",
	"new_password.haslower":        "Password must contain at least one lowercase letter",
	"new_password.hasdigit":        "Password must contain at least one number",
	"confirm_password.required":    "Passwords don't match",
	"confirm_password.eqfield":     "Passwords don't match",
	"registration_number.required": "Registration number is required",
	"student_name.required":        "Student name is required",
	"access_number.required":       "Access number is required",
	"request_type.oneof":           "Invalid request type",
	"decision.oneof":               "Decision must be approved or rejected",
	"required":                     "This field is required",
	"min":                          "Value is too short",
	"max":                          "Value is too long",
	"gte":                          "Value is too small",
	"oneof":                        "Invalid value",
	"uuid":                         "Invalid identifier",
	"email":                        "Invalid email address",
}

func message(field, tag string) string {
	if m, ok := messages[field+"."+tag]; ok {
		return m
	}
	if m, ok := messages[tag]; ok {
		return m
	}
	return "Invalid value"
}

// Struct validates v and returns *Error listing the first failure of each
// field, or nil.
func Struct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &Error{Fields: map[string]string{}}
	for _, fe := range verrs {
		name := fe.Field()
		if _, seen := out.Fields[name]; seen {
			continue
		}
		out.Fields[name] = message(name, fe.Tag())
	}
	return out
}
