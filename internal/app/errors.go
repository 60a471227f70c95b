// Package app holds the application services and business logic.
package app

import "errors"

var (
	// ErrNameRequired indicates an entry or meal without a name.
	ErrNameRequired = errors.New("name is required")
	// ErrEntryNotFound indicates that the requested log entry does not exist.
	ErrEntryNotFound = errors.New("entry not found")
	// ErrMealNotFound indicates that no library meal has the given name.
	ErrMealNotFound = errors.New("meal not found")
	// ErrWorkoutNotFound indicates that no workout was logged for the date.
	ErrWorkoutNotFound = errors.New("workout not found")
	// ErrInvalidDate indicates a malformed day key.
	ErrInvalidDate = errors.New("date must be YYYY-MM-DD")
	// ErrBadImport indicates an import document that is not a JSON object.
	ErrBadImport = errors.New("import is not a valid JSON object")
	// ErrInvalidUnit indicates a weight unit other than kg or lb.
	ErrInvalidUnit = errors.New("unit must be \"kg\" or \"lb\"")
)
