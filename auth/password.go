package auth

import (
	"fmt"

	zxcvbn "github.com/nbutton23/zxcvbn-go"
	"golang.org/x/crypto/bcrypt"
)

const (
	MinPasswordLength = 8
	// MaxPasswordLength is bcrypt's input limit in bytes.
	MaxPasswordLength = 72
	// MinPasswordScore is the lowest zxcvbn score (0-4) accepted.
	MinPasswordScore = 2
)

// PasswordError describes a rejected password.
type PasswordError struct {
	Code    string
	Message string
}

func (e *PasswordError) Error() string { return e.Message }

// HashPassword returns a bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// ValidatePassword enforces the length bounds and strength. userInputs
// (name, email) are penalised when they appear in the password. The byte
// limit is checked before zxcvbn, whose cost grows steeply with length.
func ValidatePassword(password string, userInputs ...string) error {
	if len([]rune(password)) < MinPasswordLength {
		return &PasswordError{
			Code:    "min_length",
			Message: fmt.Sprintf("password must be at least %d characters long", MinPasswordLength),
		}
	}
	if len(password) > MaxPasswordLength {
		return &PasswordError{
			Code:    "max_length",
			Message: fmt.Sprintf("password must be at most %d bytes long", MaxPasswordLength),
		}
	}
	if zxcvbn.PasswordStrength(password, userInputs).Score < MinPasswordScore {
		return &PasswordError{
			Code:    "weak_password",
			Message: "password is too weak; choose a more complex value",
		}
	}
	return nil
}
