package domain

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindSeatUnavailable          ErrorKind = "SEAT_UNAVAILABLE"
	KindScheduleNotFound         ErrorKind = "SCHEDULE_INSTANCE_NOT_FOUND"
	KindInvalidDate              ErrorKind = "INVALID_DATE"
	KindCancellationWindowClosed ErrorKind = "CANCELLATION_WINDOW_CLOSED"
	KindStateConflict            ErrorKind = "STATE_CONFLICT"
	KindAlreadyAssigned          ErrorKind = "ALREADY_ASSIGNED"
	KindNotAssignedToCaller      ErrorKind = "NOT_ASSIGNED_TO_CALLER"
	KindInvalidSeat              ErrorKind = "INVALID_SEAT"
	KindInvalidRequest           ErrorKind = "INVALID_REQUEST"
	KindBookingNotFound          ErrorKind = "BOOKING_NOT_FOUND"
	KindAlreadyCancelled         ErrorKind = "ALREADY_CANCELLED"
	KindForbidden                ErrorKind = "FORBIDDEN"
	KindInternal                 ErrorKind = "INTERNAL"
)

// Error is the single error type returned by the reservation engine. Callers
// branch on Kind, either with KindOf or errors.Is against the Err* values.
type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func NewError(kind ErrorKind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

func Wrap(kind ErrorKind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrSeatUnavailable          = NewError(KindSeatUnavailable, "seat unavailable")
	ErrScheduleNotFound         = NewError(KindScheduleNotFound, "schedule instance not found")
	ErrInvalidDate              = NewError(KindInvalidDate, "invalid journey date")
	ErrCancellationWindowClosed = NewError(KindCancellationWindowClosed, "cancellation window closed")
	ErrStateConflict            = NewError(KindStateConflict, "state conflict")
	ErrAlreadyAssigned          = NewError(KindAlreadyAssigned, "schedule already assigned")
	ErrNotAssignedToCaller      = NewError(KindNotAssignedToCaller, "schedule not assigned to caller")
	ErrInvalidSeat              = NewError(KindInvalidSeat, "invalid seat")
	ErrInvalidRequest           = NewError(KindInvalidRequest, "invalid request")
	ErrBookingNotFound          = NewError(KindBookingNotFound, "booking not found")
	ErrAlreadyCancelled         = NewError(KindAlreadyCancelled, "already cancelled")
	ErrForbidden                = NewError(KindForbidden, "forbidden")
)

// KindOf returns the kind carried by err, or KindInternal for foreign errors.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Retryable reports whether the same request may succeed later unchanged.
func Retryable(err error) bool {
	return KindOf(err) == KindInternal
}
