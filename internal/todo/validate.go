package todo

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// MinTextLength is the shortest accepted task text, in characters.
const MinTextLength = 3

// Field names used in validation errors.
const (
	FieldText = "text"
	FieldDate = "date"
)

// ValidationKind identifies why an input was rejected.
type ValidationKind string

const (
	KindTooShort        ValidationKind = "too_short"
	KindDuplicateActive ValidationKind = "duplicate_active"
	KindMissing         ValidationKind = "missing"
	KindPastDate        ValidationKind = "past_date"
	KindInvalid         ValidationKind = "invalid"
)

// ValidationError is a rejected field value.
type ValidationError struct {
	Field string
	Kind  ValidationKind
}

// Sentinels for errors.Is. They match any ValidationError of the same kind.
var (
	ErrTooShort        = &ValidationError{Kind: KindTooShort}
	ErrDuplicateActive = &ValidationError{Kind: KindDuplicateActive}
	ErrMissing         = &ValidationError{Kind: KindMissing}
	ErrPastDate        = &ValidationError{Kind: KindPastDate}
	ErrInvalidDate     = &ValidationError{Kind: KindInvalid}
)

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message())
	}
	return e.Message()
}

// Message returns the user-facing text for the error, without the field name.
func (e *ValidationError) Message() string {
	switch e.Kind {
	case KindTooShort:
		return fmt.Sprintf("task must be at least %d characters long", MinTextLength)
	case KindDuplicateActive:
		return "this task already exists"
	case KindMissing:
		return "please select a due date"
	case KindPastDate:
		return "due date cannot be in the past"
	case KindInvalid:
		return "due date must be a YYYY-MM-DD calendar date"
	default:
		return string(e.Kind)
	}
}

// Is matches target when it is a ValidationError of the same kind and, if
// target names a field, the same field.
func (e *ValidationError) Is(target error) bool {
	var ve *ValidationError
	if !errors.As(target, &ve) {
		return false
	}
	if ve.Kind != e.Kind {
		return false
	}
	return ve.Field == "" || ve.Field == e.Field
}

// ValidationResult is the outcome of validating one field.
//
// A result with Valid false and a nil Err is neutral: the input is empty,
// which is not submittable but is not reported as a mistake either.
type ValidationResult struct {
	Valid bool
	Err   *ValidationError
}

// Neutral reports whether the result is the "untouched" state.
func (r ValidationResult) Neutral() bool {
	return !r.Valid && r.Err == nil
}

// Message returns the error message, or "" when there is nothing to report.
func (r ValidationResult) Message() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Message()
}

func valid() ValidationResult {
	return ValidationResult{Valid: true}
}

func invalid(field string, kind ValidationKind) ValidationResult {
	return ValidationResult{Err: &ValidationError{Field: field, Kind: kind}}
}

// AddError reports a rejected Add call. Both field results are kept so the
// caller can show every message at once.
type AddError struct {
	Text ValidationResult
	Date ValidationResult
}

func (e *AddError) Error() string {
	var parts []string
	switch {
	case e.Text.Err != nil:
		parts = append(parts, e.Text.Err.Error())
	case e.Text.Neutral():
		parts = append(parts, FieldText+": task text is empty")
	}
	if e.Date.Err != nil {
		parts = append(parts, e.Date.Err.Error())
	}
	if len(parts) == 0 {
		return "invalid task"
	}
	return "invalid task: " + strings.Join(parts, "; ")
}

// Unwrap returns the field errors.
func (e *AddError) Unwrap() []error {
	var errs []error
	if e.Text.Err != nil {
		errs = append(errs, e.Text.Err)
	}
	if e.Date.Err != nil {
		errs = append(errs, e.Date.Err)
	}
	return errs
}

// validateText checks text against the length rule and the active tasks.
func validateText(text string, tasks []Task) ValidationResult {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ValidationResult{}
	}
	if utf8.RuneCountInString(trimmed) < MinTextLength {
		return invalid(FieldText, KindTooShort)
	}
	if isDuplicateActive(trimmed, tasks) {
		return invalid(FieldText, KindDuplicateActive)
	}
	return valid()
}

func isDuplicateActive(text string, tasks []Task) bool {
	for i := range tasks {
		if !tasks[i].Completed && strings.EqualFold(tasks[i].Text, text) {
			return true
		}
	}
	return false
}

// validateDate parses dateStr and checks it is not before today.
func validateDate(dateStr string, today Date) (Date, ValidationResult) {
	if strings.TrimSpace(dateStr) == "" {
		return Date{}, invalid(FieldDate, KindMissing)
	}
	due, err := ParseDate(dateStr)
	if err != nil {
		return Date{}, invalid(FieldDate, KindInvalid)
	}
	if due.Before(today) {
		return due, invalid(FieldDate, KindPastDate)
	}
	return due, valid()
}
