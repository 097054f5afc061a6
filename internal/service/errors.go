package service

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

var (
	ErrMissingFields         = errors.New("missing required fields")
	ErrUnknownOwner          = errors.New("owner does not exist")
	ErrInvalidCredentials    = errors.New("invalid username or password")
	ErrForbidden             = errors.New("not authorized to delete this item")
	ErrListingNotFound       = errors.New("item not found")
	ErrUsernameAlreadyExists = errors.New("username already exists")
	ErrEmailAlreadyExists    = errors.New("email already exists")
)

// IsValidation reports whether err is caused by bad caller input.
func IsValidation(err error) bool {
	return errors.Is(err, ErrMissingFields) || errors.Is(err, ErrUnknownOwner)
}

// IsConflict reports whether err is a uniqueness conflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrUsernameAlreadyExists) || errors.Is(err, ErrEmailAlreadyExists)
}

// isUniqueViolation recognises unique index violations whether or not the
// dialect translated them to gorm.ErrDuplicatedKey.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "duplicate key value")
}

// missingFields collects the names whose value is empty, in order.
func missingFields(fields [][2]string) []string {
	var missing []string
	for _, f := range fields {
		if f[1] == "" {
			missing = append(missing, f[0])
		}
	}
	return missing
}
