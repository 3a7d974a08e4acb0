// Package validation holds the account credential rules shared by the
// client commands and the server handlers, so both sides reject the
// same inputs.
package validation

import (
	"errors"
	"fmt"
)

const (
	usernameMinLen = 3
	usernameMaxLen = 32

	passwordMinLen = 8
	// bcrypt hashes at most 72 bytes; anything beyond would be silently
	// ignored, so longer passwords are rejected outright.
	passwordMaxLen = 72
)

// ValidateUsername checks length and the allowed character set: latin
// letters, digits and underscores.
func ValidateUsername(username string) error {
	if len(username) < usernameMinLen || len(username) > usernameMaxLen {
		return fmt.Errorf("username must be %d to %d characters long",
			usernameMinLen, usernameMaxLen)
	}
	for _, r := range username {
		if !usernameRune(r) {
			return errors.New("username can only contain letters, digits and underscores")
		}
	}
	return nil
}

func usernameRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z',
		r >= 'A' && r <= 'Z',
		r >= '0' && r <= '9',
		r == '_':
		return true
	}
	return false
}

// ValidatePassword checks the password length bounds.
func ValidatePassword(password string) error {
	if len(password) < passwordMinLen {
		return fmt.Errorf("password must be at least %d characters long", passwordMinLen)
	}
	if len(password) > passwordMaxLen {
		return fmt.Errorf("password must not exceed %d characters", passwordMaxLen)
	}
	return nil
}
