// Package validation provides input validation utilities
package validation

import (
	"fmt"
	"regexp"
	"strings"

	"xhubsell/internal/models"
)

const (
	PasswordMinLength = 8
	// PasswordMaxLength is bcrypt's input limit in bytes.
	PasswordMaxLength = 72

	// PasswordSpecialChars is the punctuation set accepted as a special character.
	PasswordSpecialChars = `!@#$%^&*(),.?":{}|<>`
)

// Password policy reasons reported in AppError.Reason.
const (
	ReasonPasswordTooShort         = "password_too_short"
	ReasonPasswordTooLong          = "password_too_long"
	ReasonPasswordMissingUppercase = "password_missing_uppercase"
	ReasonPasswordMissingLowercase = "password_missing_lowercase"
	ReasonPasswordMissingDigit     = "password_missing_digit"
	ReasonPasswordMissingSpecial   = "password_missing_special"
)

var (
	upperRe = regexp.MustCompile(`[A-Z]`)
	lowerRe = regexp.MustCompile(`[a-z]`)
	digitRe = regexp.MustCompile(`\d`)
)

// ValidatePassword checks the registration password policy and returns a
// validation error naming the first rule that fails.
func ValidatePassword(password string) error {
	switch {
	case len(password) < PasswordMinLength:
		return models.NewValidationReason(ReasonPasswordTooShort,
			fmt.Sprintf("password must be at least %d characters long", PasswordMinLength))
	case len(password) > PasswordMaxLength:
		return models.NewValidationReason(ReasonPasswordTooLong,
			fmt.Sprintf("password must not exceed %d bytes", PasswordMaxLength))
	case !upperRe.MatchString(password):
		return models.NewValidationReason(ReasonPasswordMissingUppercase,
			"password must contain at least one uppercase letter")
	case !lowerRe.MatchString(password):
		return models.NewValidationReason(ReasonPasswordMissingLowercase,
			"password must contain at least one lowercase letter")
	case !digitRe.MatchString(password):
		return models.NewValidationReason(ReasonPasswordMissingDigit,
			"password must contain at least one digit")
	case !strings.ContainsAny(password, PasswordSpecialChars):
		return models.NewValidationReason(ReasonPasswordMissingSpecial,
			"password must contain at least one special character ("+PasswordSpecialChars+")")
	}
	return nil
}
