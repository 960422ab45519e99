package auth

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

const passwordCost = 12

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), passwordCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// ValidateUsername allows 3-20 letters, digits, '_' and '-'
func ValidateUsername(username string) error {
	if len(username) < 3 || len(username) > 20 {
		return fmt.Errorf("username must be 3 to 20 characters")
	}
	for _, ch := range username {
		if !(ch < unicode.MaxASCII && (unicode.IsLetter(ch) || unicode.IsDigit(ch) || ch == '_' || ch == '-')) {
			return fmt.Errorf("username may only contain letters, digits, '_' and '-'")
		}
	}
	return nil
}

// ValidatePasswordStrength requires 8+ characters with a letter and a digit.
// bcrypt ignores everything past 72 bytes, so longer passwords are refused.
func ValidatePasswordStrength(password string) error {
	var hasLetter, hasDigit bool
	for _, ch := range password {
		switch {
		case unicode.IsLetter(ch):
			hasLetter = true
		case unicode.IsDigit(ch):
			hasDigit = true
		}
	}

	var failures []string
	if len(password) < 8 {
		failures = append(failures, "at least 8 characters")
	}
	if len(password) > 72 {
		failures = append(failures, "at most 72 bytes")
	}
	if !hasLetter {
		failures = append(failures, "a letter")
	}
	if !hasDigit {
		failures = append(failures, "a digit")
	}

	if len(failures) > 0 {
		return fmt.Errorf("password must contain %s", strings.Join(failures, ", "))
	}
	return nil
}
