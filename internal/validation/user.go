package validation

import (
	"regexp"

	"xhubsell/internal/models"
)

var (
	usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	emailRe    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9\-]+(\.[a-zA-Z0-9\-]+)*\.[a-zA-Z]{2,}$`)
)

// ValidateUsername checks if a username meets requirements
func ValidateUsername(username string) error {
	if len(username) < 3 {
		return models.NewValidationReason("username_too_short", "username must be at least 3 characters long")
	}
	if len(username) > 30 {
		return models.NewValidationReason("username_too_long", "username must not exceed 30 characters")
	}
	if !usernameRe.MatchString(username) {
		return models.NewValidationReason("username_invalid",
			"username can only contain letters, numbers, underscores, and hyphens")
	}
	first, last := username[0], username[len(username)-1]
	if first == '_' || first == '-' || last == '_' || last == '-' {
		return models.NewValidationReason("username_invalid",
			"username cannot start or end with underscore or hyphen")
	}
	return nil
}

// ValidateEmail checks basic email format
func ValidateEmail(email string) error {
	if len(email) > 254 {
		return models.NewValidationReason("email_too_long", "email must not exceed 254 characters")
	}
	if !emailRe.MatchString(email) {
		return models.NewValidationReason("email_invalid", "invalid email format")
	}
	return nil
}
