package core

import (
	"errors"
	"strings"
	"time"
)

const (
	StatusPaid   Status = "paid"
	StatusUnpaid Status = "unpaid"
)

type (
	// Status is the payment state of a bill. Only the exact value "paid" counts as paid.
	Status string

	// Bill is a single utility bill as fetched from the document store.
	// Bills are values; nothing in this module mutates one after it is built.
	Bill struct {
		ID       string
		Amount   float64 // whole currency units
		Status   Status
		DueDate  DueDate
		Month    string // free text, not zero padded
		Year     string
		Category Category
	}

	// User is a resident account. Phone is the session identity.
	User struct {
		ID           string
		Phone        string
		Name         string
		LastName     string
		PasswordHash string
	}

	// BillRequest is a resident asking for a copy of one of their bills.
	BillRequest struct {
		ID           string
		UserID       string
		UserName     string
		UserLastName string
		UserPhone    string
		Bill         Bill
		RequestedAt  time.Time
	}
)

var (
	ErrEmptyPhone    = errors.New("empty phone number")
	ErrEmptyPassword = errors.New("empty password")
	ErrEmptyBillID   = errors.New("empty bill id")
)

// IsPaid reports whether the status is exactly "paid".
func (s Status) IsPaid() bool {
	return s == StatusPaid
}

// DisplayName joins first and last name the way the home header shows it.
func (u User) DisplayName() string {
	return strings.TrimSpace(u.Name + " " + u.LastName)
}

func (u User) Validate() error {
	if strings.TrimSpace(u.Phone) == "" {
		return ErrEmptyPhone
	}
	if u.PasswordHash == "" {
		return ErrEmptyPassword
	}
	return nil
}

func (b Bill) Validate() error {
	if strings.TrimSpace(b.ID) == "" {
		return ErrEmptyBillID
	}
	if _, ok := b.Category.Theme(); !ok {
		return errors.New("unknown bill category: " + string(b.Category))
	}
	if b.Amount < 0 {
		return errors.New("negative bill amount")
	}
	return nil
}
