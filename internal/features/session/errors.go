package session

import (
	"errors"
	"fmt"
)

var (
	ErrPersistenceRead = errors.New("stored session could not be read")
	ErrStaleReference  = errors.New("stale session reference")
)

// StaleReference names a file or channel the restored session pointed at
// that no longer exists
type StaleReference struct {
	Kind string `json:"kind"`
	ID   string `json:"id"`
}

func (r StaleReference) Error() string {
	return fmt.Sprintf("%s %s no longer exists", r.Kind, r.ID)
}

func (r StaleReference) Unwrap() error { return ErrStaleReference }

// Report describes what LoadSession had to do to produce a usable session
type Report struct {
	Found       bool             `json:"found"`
	Defaulted   bool             `json:"defaulted"`
	FromVersion int              `json:"fromVersion,omitempty"`
	Migrated    bool             `json:"migrated"`
	ReadError   string           `json:"readError,omitempty"`
	Stale       []StaleReference `json:"stale,omitempty"`

	err error
}

// Err returns the read failure, if any, joined with every stale reference
func (r Report) Err() error {
	errs := []error{r.err}
	for _, s := range r.Stale {
		errs = append(errs, s)
	}
	return errors.Join(errs...)
}
