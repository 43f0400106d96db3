// Package validation registers custom request validators with Gin's
// binding engine.
package validation

import (
	"errors"
	"unicode"
	"unicode/utf8"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterStrongPassword installs the "strongpassword" binding tag.
// Call once at startup, before the router accepts traffic.
func RegisterStrongPassword() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("unexpected validator engine")
	}
	return v.RegisterValidation("strongpassword", strongPassword)
}

// strongPassword requires 8 to 64 characters with an upper-case letter, a
// lower-case letter, a digit and a special character.
func strongPassword(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if n := utf8.RuneCountInString(s); n < 8 || n > 64 {
		return false
	}

	var upper, lower, digit, special bool
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case !unicode.IsLetter(r):
			special = true
		}
	}
	return upper && lower && digit && special
}
