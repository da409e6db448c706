package services

import "errors"

var (
	ErrPhoneNotRegistered = errors.New("phone number is not registered")
	ErrInvalidCredentials = errors.New("incorrect password")
	ErrUserNotFound       = errors.New("user not found")
	ErrBillNotFound       = errors.New("bill not found")
	ErrAlreadyRequested   = errors.New("bill already requested")
)

// FieldError is a form validation failure on one field.
type FieldError struct {
	Field string
	Tag   string
}

func (e *FieldError) Error() string {
	return e.Field + " failed " + e.Tag + " validation"
}
