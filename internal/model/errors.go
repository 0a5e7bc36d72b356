package model

import (
	"errors"
	"fmt"
	"time"
)

// ErrDuplicateURL is returned by VacancyStore.CreateVacancy when another
// vacancy with the same URL already exists. Reconciliation treats this as a
// duplicate, not a failure.
var ErrDuplicateURL = errors.New("vacancy URL already exists")

// ErrDuplicateLocation is returned by VacancyStore.CreateLocation when the
// location name is already taken.
var ErrDuplicateLocation = errors.New("location name already exists")

// HTTPError wraps an HTTP status code so retry logic can inspect it.
type HTTPError struct {
	StatusCode int
	RetryAfter time.Duration // from Retry-After header, zero if absent
	Err        error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("HTTP %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}
