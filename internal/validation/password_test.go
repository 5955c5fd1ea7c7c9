package validation

import (
	"errors"
	"strings"
	"testing"

	"xhubsell/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reasonOf(t *testing.T, err error) string {
	t.Helper()
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T", err)
	assert.Equal(t, models.CodeValidation, appErr.Code)
	return appErr.Reason
}

func TestValidatePassword(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		password string
		reason   string
	}{
		{"Valid", "Password123!", ""},
		{"Exactly Min Length", "Abcdef1!", ""},
		{"Exactly Max Length", "A" + strings.Repeat("b", 69) + "1!", ""},
		{"Quote Counts As Special", `Password123"`, ""},
		{"Unicode Characters", "ÅngstromPass12!", ""},
		{"Too Short", "Pass1!", ReasonPasswordTooShort},
		{"Too Long", "A" + strings.Repeat("b", 70) + "1!", ReasonPasswordTooLong},
		{"Too Long In Bytes", "Å" + strings.Repeat("b", 69) + "1!", ReasonPasswordTooLong},
		{"No Upper", "password123!", ReasonPasswordMissingUppercase},
		{"No Lower", "PASSWORD123!", ReasonPasswordMissingLowercase},
		{"No Digit", "Password!", ReasonPasswordMissingDigit},
		{"No Special", "Password123", ReasonPasswordMissingSpecial},
		{"Underscore Is Not Special", "Password_123", ReasonPasswordMissingSpecial},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.reason == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.reason, reasonOf(t, err))
		})
	}
}

func TestValidateUsername(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{"Valid", "johnseller", false},
		{"With Digits", "johnsmith2", false},
		{"Inner Hyphen", "maria-silva", false},
		{"Too Short", "jo", true},
		{"Too Long", strings.Repeat("a", 31), true},
		{"Space", "john seller", true},
		{"Leading Underscore", "_john", true},
		{"Trailing Hyphen", "john-", true},
		{"Symbol", "john!", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.username)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	t.Parallel()
	tests := []struct {
		email   string
		wantErr bool
	}{
		{"john@example.com", false},
		{"maria.silva+work@mail.example.org", false},
		{"no-at-sign.example.com", true},
		{"john@localhost", true},
		{"@example.com", true},
		{strings.Repeat("a", 250) + "@example.com", true},
	}

	for _, tt := range tests {
		err := ValidateEmail(tt.email)
		if tt.wantErr {
			assert.Error(t, err, tt.email)
		} else {
			assert.NoError(t, err, tt.email)
		}
	}
}
