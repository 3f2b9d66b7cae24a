package password

import (
	"unicode"

	"cabbooking/internal/domain"

	"golang.org/x/crypto/bcrypt"
)

const MinLength = 8

// Validate enforces the admin password policy and returns the first violation.
func Validate(pw string) error {
	if len([]rune(pw)) < MinLength {
		return weak("Password must be at least 8 characters long")
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

	if !lower {
		return weak("Password must contain at least one lowercase letter")
	}
	if !upper {
		return weak("Password must contain at least one uppercase letter")
	}
	if !digit {
		return weak("Password must contain at least one number")
	}
	return nil
}

// ValidateConfirmation checks the confirmation first, then the policy.
func ValidateConfirmation(pw, confirmation string) error {
	if pw != confirmation {
		return domain.ValidationError{Field: "password", Msg: "Passwords do not match", Err: domain.ErrPasswordMismatch}
	}
	return Validate(pw)
}

// Hash hashes a plain password string
func Hash(pw string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Check compares a plain password with a hash
func Check(pw, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw))
}

func weak(msg string) error {
	return domain.ValidationError{Field: "password", Msg: msg, Err: domain.ErrWeakPassword}
}
