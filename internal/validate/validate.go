// Package validate checks register/login payloads and reports failures as
// ordered, field-scoped errors instead of Go errors.
package validate

import (
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"userorg-backend/internal/models"
)

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New(validator.WithRequiredStructEnabled())
	// Registers the password-complexity rule used by RegisterInput.
	if err := val.RegisterValidation("password", passwordOK); err != nil {
		panic(err)
	}
	return val
}

// passwordOK enforces the fixed complexity policy: at least 8 characters
// with one lower-case letter, one upper-case letter, and one digit.
func passwordOK(fl validator.FieldLevel) bool {
	pw := fl.Field().String()
	if len(pw) < 8 {
		return false
	}
	var lower, upper, digit bool
	for _, r := range pw {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return lower && upper && digit
}

// Registration validates and normalizes a registration payload. On success
// the returned input has a trimmed, lower-cased email; uniqueness checks
// and storage both operate on that normalized form.
func Registration(in models.RegisterInput) (models.RegisterInput, []models.FieldError) {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = NormalizeEmail(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)

	if errs := run(in); len(errs) > 0 {
		return models.RegisterInput{}, errs
	}
	return in, nil
}

// Login validates and normalizes a login payload.
func Login(in models.LoginInput) (models.LoginInput, []models.FieldError) {
	in.Email = NormalizeEmail(in.Email)

	if errs := run(in); len(errs) > 0 {
		return models.LoginInput{}, errs
	}
	return in, nil
}

// Struct validates any tagged input struct and reports violations as
// field errors. Register and login payloads go through Registration and
// Login instead, which also normalize.
func Struct(in any) []models.FieldError {
	return run(in)
}

// NormalizeEmail applies the storage email policy: emails are compared and
// persisted case-insensitively, as trimmed lower-case strings.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// run maps validator violations to {field, message} pairs in struct field
// declaration order.
func run(in any) []models.FieldError {
	err := v.Struct(in)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []models.FieldError{{Field: "payload", Message: "Invalid payload"}}
	}

	out := make([]models.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, models.FieldError{
			Field:   jsonField(fe),
			Message: messageFor(fe),
		})
	}
	return out
}

func jsonField(fe validator.FieldError) string {
	// Struct fields are exported Go names; the wire contract uses the JSON
	// names, which only differ in the first rune for these payloads.
	name := fe.Field()
	return strings.ToLower(name[:1]) + name[1:]
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Required"
	case "email":
		return "Invalid email address"
	case "password":
		return "Password must be at least 8 characters long and contain an upper-case letter, a lower-case letter, and a digit"
	default:
		return "Invalid value"
	}
}
