package refdata

import (
	"errors"
	"fmt"

	"github.com/roach88/refdata/value"
)

// Error represents a condition raised by the record store.
//
// Conditions include:
//   - Invalid input: a mapping is empty or lacks the primary-key column
//   - Duplicate key: a second record reuses an existing primary key
//   - Bad data file: a source file is not a non-empty sequence of mappings
//   - Read-only violation: a post-load mutation attempt
//
// Error includes structured fields for diagnostics. No condition is
// recovered locally; every one surfaces at the call that triggered it.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Collection names the affected collection.
	Collection string

	// Message is a human-readable description.
	Message string

	// err is the wrapped underlying cause, if any.
	err error
}

// ErrorCode categorizes record-store errors.
type ErrorCode string

const (
	// ErrCodeInvalidInput indicates a mapping that is empty or lacks a
	// value for the primary-key column.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"

	// ErrCodeDuplicateKey indicates a second record defined with a
	// primary key already present in the collection.
	ErrCodeDuplicateKey ErrorCode = "DUPLICATE_KEY"

	// ErrCodeBadDataFile indicates a source file that parsed to
	// something other than a non-empty sequence of mappings.
	ErrCodeBadDataFile ErrorCode = "BAD_DATA_FILE"

	// ErrCodeMissingFile indicates an absent source file path.
	ErrCodeMissingFile ErrorCode = "MISSING_FILE"

	// ErrCodeUnknownColumn indicates a mapping column outside the
	// collection's inferred schema.
	ErrCodeUnknownColumn ErrorCode = "UNKNOWN_COLUMN"

	// ErrCodeReadOnly indicates a mutation attempt against a loaded
	// collection or one of its records.
	ErrCodeReadOnly ErrorCode = "READ_ONLY_VIOLATION"

	// ErrCodeMissingRelation indicates a query against a collection
	// whose relation was never materialized.
	ErrCodeMissingRelation ErrorCode = "MISSING_RELATION"
)

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Collection != "" {
		return fmt.Sprintf("%s: %s (collection=%s)", e.Code, e.Message, e.Collection)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.err
}

func codeIs(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// IsInvalidInput reports whether err is an invalid-input condition.
func IsInvalidInput(err error) bool { return codeIs(err, ErrCodeInvalidInput) }

// IsDuplicateKey reports whether err is a duplicate-key condition.
func IsDuplicateKey(err error) bool { return codeIs(err, ErrCodeDuplicateKey) }

// IsBadDataFile reports whether err is a bad-data-file condition.
func IsBadDataFile(err error) bool { return codeIs(err, ErrCodeBadDataFile) }

// IsMissingFile reports whether err is a missing-file condition.
func IsMissingFile(err error) bool { return codeIs(err, ErrCodeMissingFile) }

// IsUnknownColumn reports whether err is an unknown-column condition.
func IsUnknownColumn(err error) bool { return codeIs(err, ErrCodeUnknownColumn) }

// IsReadOnly reports whether err is a read-only violation.
func IsReadOnly(err error) bool { return codeIs(err, ErrCodeReadOnly) }

// IsMissingRelation reports whether err is a missing-relation condition.
func IsMissingRelation(err error) bool { return codeIs(err, ErrCodeMissingRelation) }

// newInvalidInputError creates an Error for a malformed mapping.
func newInvalidInputError(collection, message string) *Error {
	return &Error{
		Code:       ErrCodeInvalidInput,
		Collection: collection,
		Message:    message,
	}
}

// newDuplicateKeyError creates an Error naming both conflicting mappings.
func newDuplicateKeyError(collection string, existing, incoming value.Mapping) *Error {
	return &Error{
		Code:       ErrCodeDuplicateKey,
		Collection: collection,
		Message: fmt.Sprintf("primary key already defined: existing %s, new %s",
			existing.Render(), incoming.Render()),
	}
}

// newReadOnlyError creates an Error for a post-load mutation attempt.
func newReadOnlyError(collection, operation string) *Error {
	return &Error{
		Code:       ErrCodeReadOnly,
		Collection: collection,
		Message:    fmt.Sprintf("%s is not permitted on a read-only collection", operation),
	}
}

// wrapError creates an Error around an underlying cause.
func wrapError(code ErrorCode, collection, message string, err error) *Error {
	return &Error{
		Code:       code,
		Collection: collection,
		Message:    message,
		err:        err,
	}
}
