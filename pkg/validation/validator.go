// Package validation provides struct validation with the project's custom rules
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// PasswordSpecials lists the special characters allowed in passwords
const PasswordSpecials = "!@#$%^&*"

// MinPasswordLength is the minimum password length
const MinPasswordLength = 8

var (
	once     sync.Once
	validate *validator.Validate
)

// Default returns the shared validator
func Default() *validator.Validate {
	once.Do(func() {
		validate = New()
	})
	return validate
}

// New creates a validator that reports json field names and knows the
// password rule
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return field.Name
		}
		return name
	})
	_ = v.RegisterValidation("password", validatePassword)
	return v
}

// Struct validates s and returns the message of the first failure, or nil
func Struct(s interface{}) error {
	err := Default().Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		return errors.New(Message(validationErrors[0]))
	}
	return err
}

// Message formats one field error for API responses
func Message(e validator.FieldError) string {
	field := e.Field()

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	case "min":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", field, e.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, e.Param())
	case "password":
		return fmt.Sprintf("%s must be at least %d characters and contain an uppercase letter, a lowercase letter, a digit and one of %s",
			field, MinPasswordLength, PasswordSpecials)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

func validatePassword(fl validator.FieldLevel) bool {
	return ValidPassword(fl.Field().String())
}

// ValidPassword reports whether password has at least MinPasswordLength
// characters, only letters, digits and PasswordSpecials, and at least one
// character of each class
func ValidPassword(password string) bool {
	if len(password) < MinPasswordLength {
		return false
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, char := range password {
		switch {
		case char >= 'A' && char <= 'Z':
			hasUpper = true
		case char >= 'a' && char <= 'z':
			hasLower = true
		case char >= '0' && char <= '9':
			hasDigit = true
		case strings.ContainsRune(PasswordSpecials, char):
			hasSpecial = true
		default:
			return false
		}
	}

	return hasUpper && hasLower && hasDigit && hasSpecial
}
