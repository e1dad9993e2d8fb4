package database

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidArgument означает неверные входные данные запроса
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrEventNotFound возвращается, когда событие не существует
	ErrEventNotFound = errors.New("event not found")

	// ErrBookingNotFound возвращается, когда бронь не существует
	ErrBookingNotFound = errors.New("booking not found")

	// ErrInsufficientCapacity места закончились; бронь записана как FAILED
	ErrInsufficientCapacity = errors.New("not enough seats available")

	// ErrInvalidState подтверждение брони не в статусе PENDING
	ErrInvalidState = errors.New("booking is not pending")
)

// InvalidStateError carries the booking's current status so callers can
// report it to the client.
type InvalidStateError struct {
	Status string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("booking is not PENDING (current: %s)", e.Status)
}

func (e *InvalidStateError) Unwrap() error {
	return ErrInvalidState
}

// IsSchemaMissing reports whether err is the sqlite error class raised when
// the schema has not been created yet. The reclaimer treats this as a
// transient condition rather than a crash.
func IsSchemaMissing(err error) bool {
	return err != nil && strings.Contains(err.Error(), "no such table")
}
