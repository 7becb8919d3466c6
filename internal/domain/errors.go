package domain

import (
	"errors"
	"fmt"
)

// ValidationError marks bad input shape or value on a moderation
// request. The boundary maps it to a 4xx; everything else is a 5xx.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
