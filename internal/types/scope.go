package types

import "errors"

// ErrUnscoped is returned when an operation is attempted without a family
// scope. Every ledger operation requires one.
var ErrUnscoped = errors.New("no family scope is set for this operation")

// Scope identifies the family (tenant) all records belong to. The zero value
// is invalid and rejected by Validate.
type Scope string

// Validate returns ErrUnscoped for the zero value.
func (s Scope) Validate() error {
	if s == "" {
		return ErrUnscoped
	}

	return nil
}

// String returns the scope as a plain string.
func (s Scope) String() string {
	return string(s)
}
