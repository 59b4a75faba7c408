package validation

import (
	"time"

	"routinestar/internal/apperr"
	"routinestar/internal/models"
)

// ParseSessionDate validates a calendar-day string and normalizes it
func ParseSessionDate(value string) (string, error) {
	t, err := time.Parse(models.SessionDateLayout, value)
	if err != nil {
		return "", apperr.Validation("invalid session date, expected YYYY-MM-DD")
	}
	return t.Format(models.SessionDateLayout), nil
}

// ParseTimestamp validates an RFC 3339 timestamp
func ParseTimestamp(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, apperr.Validation("invalid timestamp: " + value)
	}
	return t, nil
}

// ValidatePIN checks that a PIN is exactly four digits
func ValidatePIN(pin string) error {
	if len(pin) != 4 {
		return apperr.Validation("PIN must be exactly 4 digits")
	}
	for _, c := range pin {
		if c < '0' || c > '9' {
			return apperr.Validation("PIN must contain only digits")
		}
	}
	return nil
}

// ValidateName checks a display name for routines, tasks, rewards and children
func ValidateName(name string) error {
	if name == "" {
		return apperr.Validation("name is required")
	}
	if len(name) > 100 {
		return apperr.Validation("name must be 100 characters or fewer")
	}
	return nil
}
