// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// Standard sentinel errors
var (
	ErrInvalidCalendar   = errors.New("invalid meeting calendar")
	ErrInsufficientData  = errors.New("insufficient meeting data")
	ErrMissingPrice      = errors.New("missing futures price")
	ErrPriceNotFound     = errors.New("price not found")
	ErrDegenerateMonth   = errors.New("meeting on last day of contract month")
	ErrUnsupportedStep   = errors.New("unsupported step configuration")
	ErrConfigInvalid     = errors.New("invalid configuration")
	ErrDataNotFound      = errors.New("data not found")
	ErrDatabaseError     = errors.New("database error")
	ErrRateUnavailable   = errors.New("target rate unavailable")
	ErrMeetingUnresolved = errors.New("meeting rate chain unresolved")
)

// CalendarError represents a problem with the supplied FOMC calendar.
type CalendarError struct {
	Reason string
	Err    error
}

func (e *CalendarError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("calendar error: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("calendar error: %s", e.Reason)
}

func (e *CalendarError) Unwrap() error {
	return e.Err
}

// NewCalendarError creates a new CalendarError.
func NewCalendarError(reason string, err error) *CalendarError {
	return &CalendarError{Reason: reason, Err: err}
}

// DecodeError represents a failure to derive an implied rate from a
// futures price for a contract month.
type DecodeError struct {
	Month  string
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode error [%s]: %s: %v", e.Month, e.Reason, e.Err)
	}
	return fmt.Sprintf("decode error [%s]: %s", e.Month, e.Reason)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// NewDecodeError creates a new DecodeError.
func NewDecodeError(month, reason string, err error) *DecodeError {
	return &DecodeError{Month: month, Reason: reason, Err: err}
}

// PriceError represents a failure to supply a futures price for a
// contract as of a given date.
type PriceError struct {
	Symbol string
	AsOf   time.Time
	Err    error
}

func (e *PriceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("price error [%s] as of %s: %v", e.Symbol, e.AsOf.Format("2006-01-02"), e.Err)
	}
	return fmt.Sprintf("price error [%s] as of %s", e.Symbol, e.AsOf.Format("2006-01-02"))
}

func (e *PriceError) Unwrap() error {
	return e.Err
}

// NewPriceError creates a new PriceError.
func NewPriceError(symbol string, asOf time.Time, err error) *PriceError {
	return &PriceError{Symbol: symbol, AsOf: asOf, Err: err}
}

// MeetingError represents a failure while solving a specific meeting in
// the probability tree. It identifies which meeting broke the chain.
type MeetingError struct {
	Meeting time.Time
	Ordinal int
	Err     error
}

func (e *MeetingError) Error() string {
	return fmt.Sprintf("meeting %d (%s): %v", e.Ordinal, e.Meeting.Format("2006-01-02"), e.Err)
}

func (e *MeetingError) Unwrap() error {
	return e.Err
}

// NewMeetingError creates a new MeetingError.
func NewMeetingError(meeting time.Time, ordinal int, err error) *MeetingError {
	return &MeetingError{Meeting: meeting, Ordinal: ordinal, Err: err}
}

// ValidationError represents a validation error.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s (%v): %s", e.Field, e.Value, e.Message)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
