package domain

import (
	"errors"
	"fmt"
)

var (
	ErrMissingField = errors.New("missing field")
	ErrClassifier   = errors.New("classifier error")
	ErrNotReady     = errors.New("dependency not ready")
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrUpstream     = errors.New("upstream service failed")
)

// MissingFieldError reports a required attribute that is absent from an
// observation or a required column that is absent from a table.
type MissingFieldError struct {
	Fields []string
}

func NewMissingFieldError(fields ...string) *MissingFieldError {
	return &MissingFieldError{Fields: fields}
}

func (e *MissingFieldError) Error() string {
	if len(e.Fields) == 1 {
		return fmt.Sprintf("missing field %q", e.Fields[0])
	}
	return fmt.Sprintf("missing fields %q", e.Fields)
}

func (e *MissingFieldError) Is(target error) bool {
	return target == ErrMissingField
}

// ClassifierError wraps a failed classifier call for a single observation.
type ClassifierError struct {
	Section   string
	Component string
	Err       error
}

func (e *ClassifierError) Error() string {
	return fmt.Sprintf("classifier failed for %s/%s: %v", e.Section, e.Component, e.Err)
}

func (e *ClassifierError) Unwrap() error {
	return e.Err
}

func (e *ClassifierError) Is(target error) bool {
	return target == ErrClassifier
}
